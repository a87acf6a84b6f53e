// Package policy implements a registry of named security policies evaluated
// against inbound messages.
package policy

import (
	"strings"
	"sync"

	"github.com/chrisholloway5/hmailserver-security/internal/core"
)

// Predicate reports whether a message complies with a policy. Returning false
// marks the policy as violated.
type Predicate func(msg *core.Message) bool

type entry struct {
	name      string
	predicate Predicate
}

// Engine evaluates registered policies in registration order. The first
// violated policy wins; order is deterministic and documented, so operators
// can place stricter policies first.
type Engine struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
}

// NewEngine creates a policy engine with the default policies installed.
func NewEngine() *Engine {
	e := &Engine{index: make(map[string]int)}
	e.Add("attachment_size", func(msg *core.Message) bool {
		return len(msg.Attachments) < 20
	})
	e.Add("suspicious_keywords", func(msg *core.Message) bool {
		content := strings.ToLower(msg.Subject + " " + msg.Body)
		for _, keyword := range []string{
			"urgent transfer", "nigerian prince", "lottery winner",
			"click here now", "limited time offer", "act immediately",
		} {
			if strings.Contains(content, keyword) {
				return false
			}
		}
		return true
	})
	return e
}

// Add registers a policy. Re-adding an existing name replaces its predicate
// in place, keeping its original position.
func (e *Engine) Add(name string, predicate Predicate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i, ok := e.index[name]; ok {
		e.entries[i].predicate = predicate
		return
	}
	e.index[name] = len(e.entries)
	e.entries = append(e.entries, entry{name: name, predicate: predicate})
}

// Remove unregisters a policy by name.
func (e *Engine) Remove(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index[name]
	if !ok {
		return
	}
	e.entries = append(e.entries[:i], e.entries[i+1:]...)
	delete(e.index, name)
	for j := i; j < len(e.entries); j++ {
		e.index[e.entries[j].name] = j
	}
}

// ActivePolicies returns the registered policy names in evaluation order.
func (e *Engine) ActivePolicies() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.entries))
	for i, en := range e.entries {
		names[i] = en.name
	}
	return names
}

// Violates evaluates all policies against the message and returns the name of
// the first one violated, or "" if the message passes. Predicates run outside
// the registry lock so a predicate may safely call back into the engine.
func (e *Engine) Violates(msg *core.Message) string {
	e.mu.RLock()
	snapshot := make([]entry, len(e.entries))
	copy(snapshot, e.entries)
	e.mu.RUnlock()

	for _, en := range snapshot {
		if !en.predicate(msg) {
			return en.name
		}
	}
	return ""
}
