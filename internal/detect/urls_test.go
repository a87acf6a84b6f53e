package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLAnalyzer_Analyze(t *testing.T) {
	analyzer := NewURLAnalyzer(NewBlocklist())

	tests := []struct {
		name        string
		url         string
		wantScore   float64
		wantFlagged bool
	}{
		{
			name:        "Blocklisted host short-circuits to maximum risk",
			url:         "http://phishing-example.net/login",
			wantScore:   1.0,
			wantFlagged: true,
		},
		{
			name:        "Raw IPv4 address",
			url:         "http://192.168.1.1/path",
			wantScore:   0.4,
			wantFlagged: false,
		},
		{
			name:        "Suspicious TLD",
			url:         "http://free-stuff.tk",
			wantScore:   0.3,
			wantFlagged: false,
		},
		{
			name:        "Shortener with credential keywords",
			url:         "http://bit.ly/secure-login",
			wantScore:   0.4,
			wantFlagged: false,
		},
		{
			name:        "Stacked signals clamp to 1.0",
			url:         "http://192.168.0.1.secure.verify.example.tk/login",
			wantScore:   1.0,
			wantFlagged: true,
		},
		{
			name:        "Clean URL",
			url:         "https://example.com/page",
			wantScore:   0.0,
			wantFlagged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, flagged := analyzer.Analyze(tt.url)
			assert.InDelta(t, tt.wantScore, score, 0.001)
			assert.Equal(t, tt.wantFlagged, flagged)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestBlocklist_AddRemove(t *testing.T) {
	bl := NewBlocklist()

	assert.False(t, bl.Contains("http://evil.example.org/index"))

	bl.Add("Evil.Example.ORG")
	assert.True(t, bl.Contains("http://EVIL.example.org/index"), "matching is case-insensitive")

	bl.Remove("evil.example.org")
	assert.False(t, bl.Contains("http://evil.example.org/index"))

	// Default seeds survive.
	assert.True(t, bl.Contains("https://suspicious-site.com/a"))
	assert.True(t, bl.Contains("https://cdn.malware-host.org/payload"))
}

func TestExtractURLs(t *testing.T) {
	text := "See http://first.example.com/a and also https://second.example.net/b for details"
	urls := ExtractURLs(text)

	assert.Equal(t, []string{"http://first.example.com/a", "https://second.example.net/b"}, urls)
	assert.Empty(t, ExtractURLs("no links here"))
}
