package security

import "sync"

// historyDepth bounds how many recent bodies are kept per sender for the
// behavioral detector.
const historyDepth = 20

// senderHistory keeps a bounded window of recent message bodies per sender.
type senderHistory struct {
	mu     sync.Mutex
	depth  int
	bodies map[string][]string
}

func newSenderHistory(depth int) *senderHistory {
	return &senderHistory{
		depth:  depth,
		bodies: make(map[string][]string),
	}
}

// record appends the body to the sender's window and returns a copy of the
// window including the new entry.
func (h *senderHistory) record(sender, body string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := append(h.bodies[sender], body)
	if len(window) > h.depth {
		window = window[len(window)-h.depth:]
	}
	h.bodies[sender] = window

	out := make([]string, len(window))
	copy(out, window)
	return out
}
