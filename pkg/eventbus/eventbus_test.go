package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/pkg/eventbus"
)

type createdEvent struct {
	ID string
}

func TestPublish_MatchingSubscriber(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	var received []createdEvent
	bus.Subscribe(func(ev createdEvent) {
		received = append(received, ev)
	})

	bus.Publish(createdEvent{ID: "SF-OAK-001"})

	require.Len(t, received, 1)
	assert.Equal(t, "SF-OAK-001", received[0].ID)
}

func TestPublish_NonMatchingSubscriberIgnored(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	called := false
	bus.Subscribe(func(n int) {
		called = true
	})

	bus.Publish(createdEvent{ID: "SF-OAK-002"})
	assert.False(t, called)
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()
	bus := eventbus.NewEventPublisher(logrus.New())

	count := 0
	handler := func(ev createdEvent) { count++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(createdEvent{})
	bus.Unsubscribe(handler)
	bus.Publish(createdEvent{})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature_InterfaceParam(t *testing.T) {
	t.Parallel()
	handler := func(err error) {}
	assert.True(t, eventbus.MatchSignature(handler, []interface{}{assert.AnError}))
	assert.False(t, eventbus.MatchSignature(handler, []interface{}{42}))
}
