package detect

import "strings"

// malwareThreshold is the confidence above which malware is reported.
const malwareThreshold = 0.5

var dangerousExtensions = map[string]struct{}{
	"exe": {}, "scr": {}, "bat": {}, "com": {}, "pif": {}, "cmd": {},
	"vbs": {}, "js": {}, "jar": {}, "msi": {}, "dll": {}, "sys": {},
	"drv": {}, "ocx": {}, "cpl": {}, "src": {}, "asp": {}, "php": {},
}

var doubleExtensions = []string{".pdf.exe", ".doc.exe", ".jpg.exe", ".txt.exe"}

// socialEngineeringNames are filename roots attackers pair with executables to
// make them look harmless.
var socialEngineeringNames = []string{"invoice", "receipt", "document", "photo", "image", "update"}

// MalwareDetector scores attachment file names for executable payloads and
// double-extension tricks. Only names are inspected; content scanning is the
// job of a downstream virus scanner.
type MalwareDetector struct{}

// NewMalwareDetector creates a malware detector.
func NewMalwareDetector() *MalwareDetector {
	return &MalwareDetector{}
}

// Detect returns a confidence in [0,1] and whether it crosses the malware
// threshold.
func (d *MalwareDetector) Detect(attachments []string) (confidence float64, triggered bool) {
	for _, attachment := range attachments {
		lower := strings.ToLower(attachment)

		if dot := strings.LastIndexByte(lower, '.'); dot >= 0 {
			if _, ok := dangerousExtensions[lower[dot+1:]]; ok {
				confidence += 0.7
			}
		}

		for _, ext := range doubleExtensions {
			if strings.Contains(lower, ext) {
				confidence += 0.9
			}
		}

		if strings.Contains(lower, ".exe") {
			for _, name := range socialEngineeringNames {
				if strings.Contains(lower, name) {
					confidence += 0.5
				}
			}
		}
	}

	confidence = clamp(confidence)
	return confidence, confidence > malwareThreshold
}
