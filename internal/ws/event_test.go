package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_CombinesTypeAndEntity(t *testing.T) {
	event := NewEvent(EventTypeCreated, EntityTypeWorkshop, map[string]string{"title": "Pottery"})

	assert.Equal(t, "workshop.created", event.Type)
	assert.Equal(t, EntityTypeWorkshop, event.Entity)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEvent_ToJSON(t *testing.T) {
	event := WorkshopUpdated(map[string]string{"title": "Chess"})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "workshop.updated", decoded["type"])
	assert.Equal(t, "workshop", decoded["entity"])

	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "Chess", payload["title"])
}

func TestEventConstructors(t *testing.T) {
	assert.Equal(t, "workshop.created", WorkshopCreated(nil).Type)
	assert.Equal(t, "workshop.updated", WorkshopUpdated(nil).Type)
	assert.Equal(t, "workshop.deleted", WorkshopDeleted(nil).Type)
	assert.Equal(t, "sync.replayed", SyncReplayed(nil).Type)
}
