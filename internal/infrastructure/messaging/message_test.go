package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagePayload(t *testing.T) {
	payload := &CheckpointJobMessage{
		JobID:  "job-1",
		BookID: "book-1",
		Kind:   "summary",
	}
	msg, err := NewMessage("job-1", MsgTypeCheckpointGen, "book-1", "user-1", payload)
	require.NoError(t, err)

	var decoded CheckpointJobMessage
	require.NoError(t, msg.UnmarshalPayload(&decoded))
	assert.Equal(t, *payload, decoded)

	msg.SetMetadata("kind", "summary")
	assert.Equal(t, "summary", msg.GetMetadata("kind"))
	assert.Empty(t, msg.GetMetadata("missing"))
}

func TestDLQStream(t *testing.T) {
	assert.Equal(t, "dlq:stream:checkpoint:gen", StreamCheckpointGen.DLQStream())
	assert.Equal(t, "dlq:stream:book:process", StreamBookProcess.DLQStream())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{
		Initial:    time.Second,
		Max:        time.Minute,
		Multiplier: 2,
	}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	// 超过上限后封顶
	assert.Equal(t, time.Minute, cfg.CalculateBackoff(10))
}
