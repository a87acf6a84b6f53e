package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMalwareDetector_Detect(t *testing.T) {
	detector := NewMalwareDetector()

	tests := []struct {
		name           string
		attachments    []string
		wantConfidence float64
		wantTriggered  bool
	}{
		{
			name:           "No attachments",
			attachments:    nil,
			wantConfidence: 0.0,
			wantTriggered:  false,
		},
		{
			name:           "Plain executable",
			attachments:    []string{"setup.exe"},
			wantConfidence: 0.7,
			wantTriggered:  true,
		},
		{
			name:           "Double extension with social engineering name",
			attachments:    []string{"invoice.pdf.exe"},
			wantConfidence: 1.0,
			wantTriggered:  true,
		},
		{
			name:           "Harmless documents",
			attachments:    []string{"report.docx", "photo.jpg"},
			wantConfidence: 0.0,
			wantTriggered:  false,
		},
		{
			name:           "Multiple dangerous attachments accumulate",
			attachments:    []string{"run.bat", "macro.vbs"},
			wantConfidence: 1.0,
			wantTriggered:  true,
		},
		{
			name:           "Dangerous extension not in final position",
			attachments:    []string{"malware.exe.txt"},
			wantConfidence: 0.0,
			wantTriggered:  false,
		},
		{
			name:           "Case-insensitive extension match",
			attachments:    []string{"UPDATE.EXE"},
			wantConfidence: 1.0, // 0.7 extension plus 0.5 social engineering name, clamped
			wantTriggered:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confidence, triggered := detector.Detect(tt.attachments)
			assert.InDelta(t, tt.wantConfidence, confidence, 0.001)
			assert.Equal(t, tt.wantTriggered, triggered)
		})
	}
}
