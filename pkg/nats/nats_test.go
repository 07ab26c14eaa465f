package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubjectRoundTrip(t *testing.T) {
	assert.Equal(t, "events.CRISIS_DETECTED", Subject("CRISIS_DETECTED"))
	assert.Equal(t, "CRISIS_DETECTED", EventType(Subject("CRISIS_DETECTED")))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(0))
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 2*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(4))
	assert.Equal(t, time.Minute, backoff(20))
}
