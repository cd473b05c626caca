package messaging

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage("items.processed", map[string]any{"count": 3})

	_, err := uuid.Parse(msg.GetID())
	assert.NoError(t, err)
	assert.Equal(t, "items.processed", msg.GetType())
	assert.False(t, msg.GetTimestamp().IsZero())
	assert.NotNil(t, msg.GetMetadata())

	other := NewMessage("items.processed", nil)
	assert.NotEqual(t, msg.GetID(), other.GetID())
}

func TestMarshalEnvelope(t *testing.T) {
	msg := NewMessage("items.processed", map[string]any{"count": 3}).SetMetadata("run_id", "r-1")

	data, err := Marshal(msg)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.True(t, msg.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, float64(3), decoded.Payload.(map[string]any)["count"])
	assert.Equal(t, "r-1", decoded.Metadata["run_id"])
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte("{"))
	assert.Error(t, err)
}
