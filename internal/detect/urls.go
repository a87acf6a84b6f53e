package detect

import (
	"regexp"
	"strings"
	"sync"
)

// urlFlagThreshold is the risk score above which a URL is reported as risky.
const urlFlagThreshold = 0.5

var (
	urlPattern  = regexp.MustCompile(`https?://[^\s]+`)
	ipv4Pattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
)

var (
	suspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf"}
	urlShorteners  = []string{"bit.ly", "tinyurl", "t.co", "goo.gl"}
	urlKeywords    = []string{"secure", "verify", "account", "update", "confirm", "login"}
)

// Blocklist is a set of host substrings considered malicious. Membership is a
// case-insensitive substring test against the whole URL, not a hostname parse;
// an entry like "phishing-example.net" matches any URL that mentions it.
type Blocklist struct {
	mu    sync.RWMutex
	hosts map[string]struct{}
}

// NewBlocklist creates a blocklist seeded with the default malicious hosts.
func NewBlocklist() *Blocklist {
	bl := &Blocklist{hosts: make(map[string]struct{})}
	for _, host := range []string{
		"suspicious-site.com",
		"phishing-example.net",
		"malware-host.org",
	} {
		bl.hosts[host] = struct{}{}
	}
	return bl
}

// Add registers a host substring. Entries are stored lowercased to match the
// case-folded comparison in Contains.
func (b *Blocklist) Add(host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return
	}
	b.mu.Lock()
	b.hosts[host] = struct{}{}
	b.mu.Unlock()
}

// Remove deletes a host substring from the blocklist.
func (b *Blocklist) Remove(host string) {
	b.mu.Lock()
	delete(b.hosts, strings.ToLower(strings.TrimSpace(host)))
	b.mu.Unlock()
}

// Contains reports whether any blocklisted host appears in the URL.
func (b *Blocklist) Contains(url string) bool {
	lower := strings.ToLower(url)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for host := range b.hosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// URLAnalyzer scores individual URLs by structural heuristics and blocklist
// membership.
type URLAnalyzer struct {
	blocklist *Blocklist
}

// NewURLAnalyzer creates a URL analyzer backed by the given blocklist.
func NewURLAnalyzer(blocklist *Blocklist) *URLAnalyzer {
	return &URLAnalyzer{blocklist: blocklist}
}

// Analyze returns a risk score in [0,1] for the URL and whether the score
// crosses the flagging threshold. A blocklist hit short-circuits to 1.0.
func (a *URLAnalyzer) Analyze(url string) (riskScore float64, flagged bool) {
	lower := strings.ToLower(url)

	if a.blocklist.Contains(lower) {
		return 1.0, true
	}

	if ipv4Pattern.MatchString(url) {
		riskScore += 0.4
	}
	for _, tld := range suspiciousTLDs {
		if strings.Contains(lower, tld) {
			riskScore += 0.3
		}
	}
	for _, shortener := range urlShorteners {
		if strings.Contains(lower, shortener) {
			riskScore += 0.2
		}
	}
	if strings.Count(lower, ".") > 4 {
		riskScore += 0.2
	}
	for _, keyword := range urlKeywords {
		if strings.Contains(lower, keyword) {
			riskScore += 0.1
		}
	}

	riskScore = clamp(riskScore)
	return riskScore, riskScore > urlFlagThreshold
}

// ExtractURLs returns all http/https URLs found in the text.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

func clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}
