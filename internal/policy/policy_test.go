package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
)

func TestEngine_Defaults(t *testing.T) {
	e := NewEngine()

	assert.Equal(t, []string{"attachment_size", "suspicious_keywords"}, e.ActivePolicies())

	tests := []struct {
		name          string
		msg           *core.Message
		wantViolation string
	}{
		{
			name:          "Clean message passes",
			msg:           &core.Message{Subject: "Weekly report", Body: "All systems nominal."},
			wantViolation: "",
		},
		{
			name: "Too many attachments",
			msg: &core.Message{
				Attachments: make([]string, 20),
			},
			wantViolation: "attachment_size",
		},
		{
			name: "Suspicious keyword in subject",
			msg: &core.Message{
				Subject: "LIMITED TIME OFFER just for you",
				Body:    "Hello",
			},
			wantViolation: "suspicious_keywords",
		},
		{
			name: "Suspicious keyword in body",
			msg: &core.Message{
				Subject: "Hello",
				Body:    "A Nigerian Prince needs your help",
			},
			wantViolation: "suspicious_keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantViolation, e.Violates(tt.msg))
		})
	}
}

func TestEngine_EvaluationOrder(t *testing.T) {
	e := NewEngine()
	e.Remove("attachment_size")
	e.Remove("suspicious_keywords")

	var evaluated []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		e.Add(name, func(msg *core.Message) bool {
			evaluated = append(evaluated, name)
			return name != "second"
		})
	}

	violation := e.Violates(&core.Message{})
	assert.Equal(t, "second", violation, "first violated policy wins")
	assert.Equal(t, []string{"first", "second"}, evaluated, "evaluation stops at the first violation")
}

func TestEngine_AddReplacesInPlace(t *testing.T) {
	e := NewEngine()

	e.Add("attachment_size", func(msg *core.Message) bool { return false })

	assert.Equal(t, []string{"attachment_size", "suspicious_keywords"}, e.ActivePolicies(),
		"replacing a policy keeps its position")
	assert.Equal(t, "attachment_size", e.Violates(&core.Message{}))
}

func TestEngine_Remove(t *testing.T) {
	e := NewEngine()

	e.Remove("attachment_size")
	assert.Equal(t, []string{"suspicious_keywords"}, e.ActivePolicies())

	// Removing an unknown policy is a no-op.
	e.Remove("no_such_policy")
	assert.Equal(t, []string{"suspicious_keywords"}, e.ActivePolicies())

	// Index stays consistent after removal.
	e.Add("custom", func(msg *core.Message) bool { return true })
	e.Remove("suspicious_keywords")
	assert.Equal(t, []string{"custom"}, e.ActivePolicies())
}

func TestEngine_PredicateMayCallBack(t *testing.T) {
	e := NewEngine()
	e.Add("introspective", func(msg *core.Message) bool {
		return len(e.ActivePolicies()) > 0
	})

	assert.Equal(t, "", e.Violates(&core.Message{Subject: "hi", Body: "hello"}))
}

func TestEngine_ManyPolicies(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 50; i++ {
		e.Add(fmt.Sprintf("policy_%02d", i), func(msg *core.Message) bool { return true })
	}
	assert.Len(t, e.ActivePolicies(), 52)
}
