package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	closed    bool
	published []amqp.Publishing
	keys      []string
	fail      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.fail != nil {
		return f.fail
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }
func (f *fakeChannel) Close() error   { f.closed = true; return nil }

func newTestPublisher(chans ...*fakeChannel) (*AMQP, *int) {
	dials := 0
	p := &AMQP{exchange: "tiffin.orders"}
	p.dial = func() (*amqp.Connection, channel, error) {
		if dials >= len(chans) {
			return nil, nil, errors.New("broker down")
		}
		ch := chans[dials]
		dials++
		return nil, ch, nil
	}
	return p, &dials
}

func TestPublishWritesPersistentJSONEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := newTestPublisher(ch)
	require.NoError(t, p.connect())

	require.NoError(t, p.Publish(context.Background(), "order.created", map[string]any{"order_id": "7"}))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "order.created", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)

	var body Message
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "order.created", body.Event)
	assert.Equal(t, map[string]any{"order_id": "7"}, body.Data)
}

func TestPublishRedialsClosedChannel(t *testing.T) {
	first, second := &fakeChannel{}, &fakeChannel{}
	p, dials := newTestPublisher(first, second)
	require.NoError(t, p.connect())

	first.closed = true
	require.NoError(t, p.Publish(context.Background(), "order.status_changed", nil))
	assert.Equal(t, 2, *dials)
	assert.Empty(t, first.published)
	assert.Len(t, second.published, 1)
}

func TestPublishAfterCloseFails(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := newTestPublisher(ch)
	require.NoError(t, p.connect())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.Error(t, p.Publish(context.Background(), "order.created", nil))
}

func TestPublishSurfacesChannelErrors(t *testing.T) {
	ch := &fakeChannel{fail: errors.New("channel/connection is not open")}
	p, _ := newTestPublisher(ch)
	require.NoError(t, p.connect())

	err := p.Publish(context.Background(), "order.auto_cancelled", nil)
	assert.ErrorContains(t, err, "order.auto_cancelled")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), "x", nil))
	assert.NoError(t, p.Close())
}
