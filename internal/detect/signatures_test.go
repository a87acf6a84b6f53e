package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureSet_Defaults(t *testing.T) {
	s := NewSignatureSet()

	assert.Len(t, s.OfKind(SignatureSpam), 6)
	assert.Empty(t, s.OfKind(SignaturePhishing))
	assert.Empty(t, s.OfKind(SignatureSuspicious))
}

func TestSignatureSet_AddRemove(t *testing.T) {
	s := NewSignatureSet()

	s.Add("  Fake.Bank.Alert  ", SignaturePhishing)
	assert.Equal(t, []string{"fake.bank.alert"}, s.OfKind(SignaturePhishing), "signatures are trimmed and lowercased")

	// Re-adding under another kind is a no-op.
	s.Add("fake.bank.alert", SignatureSuspicious)
	assert.Len(t, s.OfKind(SignaturePhishing), 1)
	assert.Empty(t, s.OfKind(SignatureSuspicious))

	s.Remove("FAKE.BANK.ALERT")
	assert.Empty(t, s.OfKind(SignaturePhishing))

	// Removing an unknown signature is harmless.
	s.Remove("never-registered")

	// Empty input is ignored.
	s.Add("   ", SignaturePhishing)
	assert.Empty(t, s.OfKind(SignaturePhishing))
}

func TestSignatureSet_OfKindReturnsCopy(t *testing.T) {
	s := NewSignatureSet()
	s.Add("one", SignaturePhishing)

	sigs := s.OfKind(SignaturePhishing)
	sigs[0] = "mutated"

	assert.Equal(t, []string{"one"}, s.OfKind(SignaturePhishing))
}
