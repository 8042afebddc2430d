package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFor(userID uuid.UUID) *models.Report {
	return &models.Report{ID: uuid.New(), UserID: userID, IncidentType: models.IncidentFire}
}

func TestHub_BroadcastToAll(t *testing.T) {
	hub := NewHub(4, nil)
	a := hub.Subscribe(nil)
	b := hub.Subscribe(nil)
	defer a.Close()
	defer b.Close()

	e := NewEvent(EventInsert, reportFor(uuid.New()))
	assert.Equal(t, 2, hub.Broadcast(e))

	assert.Equal(t, e, <-a.Events())
	assert.Equal(t, e, <-b.Events())
}

func TestHub_UserFilter(t *testing.T) {
	hub := NewHub(4, nil)
	owner := uuid.New()
	own := hub.Subscribe(&owner)
	defer own.Close()

	assert.Equal(t, 0, hub.Broadcast(NewEvent(EventUpdate, reportFor(uuid.New()))))
	assert.Equal(t, 0, hub.Broadcast(NewEvent(EventUpdate, nil)))

	mine := NewEvent(EventUpdate, reportFor(owner))
	assert.Equal(t, 1, hub.Broadcast(mine))
	assert.Equal(t, mine, <-own.Events())
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(1, nil)
	slow := hub.Subscribe(nil)
	defer slow.Close()

	assert.Equal(t, 1, hub.Broadcast(NewEvent(EventInsert, reportFor(uuid.New()))))
	assert.Equal(t, 0, hub.Broadcast(NewEvent(EventInsert, reportFor(uuid.New()))))
	assert.Len(t, slow.Events(), 1)
}

func TestHub_CloseSubscription(t *testing.T) {
	var counts []int
	hub := NewHub(1, func(n int) { counts = append(counts, n) })
	sub := hub.Subscribe(nil)
	assert.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, []int{1, 0}, counts)
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub(1, nil)
	sub := hub.Subscribe(nil)
	hub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub(1, nil)
	sub := hub.Subscribe(nil)
	defer sub.Close()

	require.NoError(t, hub.Publish(context.Background(), NewEvent(EventDelete, reportFor(uuid.New()))))
	e := <-sub.Events()
	assert.Equal(t, EventDelete, e.Type)
}

func TestRedisBridge_Relay(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	hub := NewHub(2, nil)
	sub := hub.Subscribe(nil)
	defer sub.Close()

	bridge := NewRedisBridge(nil, hub, logger)

	e := NewEvent(EventUpdate, reportFor(uuid.New()))
	payload, err := json.Marshal(e)
	require.NoError(t, err)

	bridge.relay("not json")
	bridge.relay(string(payload))

	got := <-sub.Events()
	assert.Equal(t, e.Type, got.Type)
	assert.Equal(t, e.Report.ID, got.Report.ID)
	assert.True(t, e.OccurredAt.Equal(got.OccurredAt))
}
