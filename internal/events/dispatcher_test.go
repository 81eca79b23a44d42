package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventRequestApproved, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.EntityID)
		return boom
	})
	d.Subscribe(EventRequestApproved, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.EntityID)
		return nil
	})
	d.Subscribe(EventRequestRejected, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventRequestApproved, "req-1", "admin-1", nil))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:req-1", "second:req-1"}, calls)
}

func TestEventType_TouchesInventory(t *testing.T) {
	assert.True(t, EventAppointmentCompleted.TouchesInventory())
	assert.True(t, EventRequestApproved.TouchesInventory())
	assert.True(t, EventInventoryAdjusted.TouchesInventory())
	assert.False(t, EventAppointmentBooked.TouchesInventory())
	assert.False(t, EventRequestRejected.TouchesInventory())
}
