package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func verdictFor(i int) Verdict {
	return Verdict{Reason: fmt.Sprintf("event %d", i)}
}

func TestEventLog_AppendAndRecent(t *testing.T) {
	log := NewEventLog(5)

	assert.Equal(t, 0, log.Len())
	assert.Nil(t, log.Recent(3))

	for i := 0; i < 3; i++ {
		log.Append(verdictFor(i))
	}

	assert.Equal(t, 3, log.Len())

	events := log.Recent(2)
	assert.Len(t, events, 2)
	assert.Equal(t, "event 1", events[0].Verdict.Reason)
	assert.Equal(t, "event 2", events[1].Verdict.Reason)
	assert.False(t, events[0].Timestamp.IsZero())

	// Asking for more than held returns everything, oldest first.
	events = log.Recent(10)
	assert.Len(t, events, 3)
	assert.Equal(t, "event 0", events[0].Verdict.Reason)
}

func TestEventLog_EvictsOldest(t *testing.T) {
	log := NewEventLog(5)

	for i := 0; i < 12; i++ {
		log.Append(verdictFor(i))
	}

	assert.Equal(t, 5, log.Len(), "size is bounded by capacity")

	events := log.Recent(5)
	for i, event := range events {
		assert.Equal(t, fmt.Sprintf("event %d", 7+i), event.Verdict.Reason)
	}
}

func TestEventLog_InvalidSizes(t *testing.T) {
	log := NewEventLog(0)
	log.Append(verdictFor(1))
	log.Append(verdictFor(2))

	assert.Equal(t, 1, log.Len(), "non-positive capacity falls back to 1")
	assert.Nil(t, log.Recent(0))
	assert.Nil(t, log.Recent(-1))
}
