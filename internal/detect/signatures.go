package detect

import (
	"strings"
	"sync"
)

// SignatureKind categorizes a threat signature so the matching detector can
// pick it up.
type SignatureKind string

const (
	SignaturePhishing   SignatureKind = "phishing"
	SignatureSuspicious SignatureKind = "suspicious"
	SignatureSpam       SignatureKind = "spam"
)

// SignatureSet holds threat signatures grouped by kind. Signatures are stored
// lowercased; every detector matches against case-folded text.
type SignatureSet struct {
	mu      sync.RWMutex
	byKind  map[SignatureKind][]string
	present map[string]SignatureKind
}

// NewSignatureSet creates a signature set seeded with the default signatures.
func NewSignatureSet() *SignatureSet {
	s := &SignatureSet{
		byKind:  make(map[SignatureKind][]string),
		present: make(map[string]SignatureKind),
	}
	for _, sig := range []string{
		"urgent.transfer",
		"nigerian.prince",
		"lottery.winner",
		"click.here.now",
		"verify.account",
		"suspended.account",
	} {
		s.add(sig, SignatureSpam)
	}
	return s
}

// Add registers a signature of the given kind. The signature is lowercased
// before storage so that matching stays case-insensitive end to end.
func (s *SignatureSet) Add(signature string, kind SignatureKind) {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" {
		return
	}
	s.mu.Lock()
	s.add(signature, kind)
	s.mu.Unlock()
}

func (s *SignatureSet) add(signature string, kind SignatureKind) {
	if _, ok := s.present[signature]; ok {
		return
	}
	s.present[signature] = kind
	s.byKind[kind] = append(s.byKind[kind], signature)
}

// Remove deletes a signature regardless of kind.
func (s *SignatureSet) Remove(signature string) {
	signature = strings.ToLower(strings.TrimSpace(signature))
	s.mu.Lock()
	defer s.mu.Unlock()
	kind, ok := s.present[signature]
	if !ok {
		return
	}
	delete(s.present, signature)
	sigs := s.byKind[kind]
	for i, sig := range sigs {
		if sig == signature {
			s.byKind[kind] = append(sigs[:i], sigs[i+1:]...)
			break
		}
	}
}

// OfKind returns a copy of the signatures registered for the given kind.
func (s *SignatureSet) OfKind(kind SignatureKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sigs := make([]string, len(s.byKind[kind]))
	copy(sigs, s.byKind[kind])
	return sigs
}
