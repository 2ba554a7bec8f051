package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/supportmesh/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublisher_Publish(t *testing.T) {
	pub := NewInMemoryPublisher()

	err := pub.Publish(context.Background(), &ticket.Ticket{
		ID:            "T-1",
		Status:        ticket.StatusPendingReview,
		RequiresHuman: true,
	})
	require.NoError(t, err)

	published := pub.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "T-1", published[0].ID)
	assert.True(t, published[0].RequiresHuman)
}

func TestInMemoryPublisher_RecordsSnapshot(t *testing.T) {
	pub := NewInMemoryPublisher()
	tk := &ticket.Ticket{ID: "T-1", Status: ticket.StatusPendingReview}
	require.NoError(t, pub.Publish(context.Background(), tk))

	tk.Status = ticket.StatusResolved

	published := pub.Published()
	require.Len(t, published, 1)
	assert.Equal(t, ticket.StatusPendingReview, published[0].Status)
}

func TestInMemoryPublisher_Fail(t *testing.T) {
	pub := NewInMemoryPublisher()
	pub.Fail(errors.New("broker down"))

	err := pub.Publish(context.Background(), &ticket.Ticket{ID: "T-1"})
	assert.EqualError(t, err, "broker down")
	assert.Empty(t, pub.Published())
}
