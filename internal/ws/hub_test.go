package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id         string
	providerID uuid.UUID
	messages   [][]byte
	mu         sync.Mutex
	closed     bool
}

func newMockClient(id string, providerID uuid.UUID) *mockClient {
	return &mockClient{
		id:         id,
		providerID: providerID,
		messages:   make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) ProviderID() uuid.UUID {
	return m.providerID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func waitForMessages(t *testing.T, client *mockClient, want int) [][]byte {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		msgs := client.GetMessages()
		if len(msgs) >= want {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d messages, got %d", want, len(client.GetMessages()))
	return nil
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	providerA := uuid.New()
	providerB := uuid.New()

	client1 := newMockClient("client-1", providerA)
	client2 := newMockClient("client-2", providerA)
	client3 := newMockClient("client-3", providerB)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(providerA))
	assert.Equal(t, 1, hub.ClientCount(providerB))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(providerA))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_ProviderIsolation(t *testing.T) {
	hub := NewHub()

	providerA := uuid.New()
	providerB := uuid.New()

	clientA := newMockClient("client-a", providerA)
	clientB := newMockClient("client-b", providerB)
	hub.Register(clientA)
	hub.Register(clientB)

	hub.Broadcast(providerA, WorkshopCreated(map[string]string{"title": "Pottery"}))

	msgs := waitForMessages(t, clientA, 1)

	var event Event
	require.NoError(t, json.Unmarshal(msgs[0], &event))
	assert.Equal(t, "workshop.created", event.Type)

	// The other provider's client saw nothing
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, clientB.GetMessages())
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()

	// Must not panic or block
	hub.Broadcast(uuid.New(), WorkshopDeleted(nil))
}

func TestHub_Broadcast_AllProviderClientsReceive(t *testing.T) {
	hub := NewHub()

	provider := uuid.New()
	client1 := newMockClient("client-1", provider)
	client2 := newMockClient("client-2", provider)
	hub.Register(client1)
	hub.Register(client2)

	hub.Broadcast(provider, WorkshopUpdated(map[string]string{"title": "Chess"}))

	waitForMessages(t, client1, 1)
	waitForMessages(t, client2, 1)
}
