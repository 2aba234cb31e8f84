package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nazeru/retail-mock-api/pkg/contracts"
	"github.com/nazeru/retail-mock-api/pkg/logging"
	"github.com/nazeru/retail-mock-api/pkg/metrics"
)

// scriptedReader replays msgs, then cancels the consumer.
type scriptedReader struct {
	msgs   []kafkago.Message
	cancel context.CancelFunc
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

type memInbox struct {
	ids map[string]bool
	err error
}

func (i *memInbox) Remember(_ context.Context, eventID, _ string) (bool, error) {
	if i.err != nil {
		return false, i.err
	}
	if i.ids[eventID] {
		return false, nil
	}
	i.ids[eventID] = true
	return true, nil
}

func message(t *testing.T, ev contracts.Event) kafkago.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(ev.Subject), Value: b}
}

func setup(t *testing.T, msgs ...kafkago.Message) (context.Context, *scriptedReader, *logging.Logger, *observer.ObservedLogs, *metrics.ConsumerMetrics) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	core, logs := observer.New(zapcore.InfoLevel)
	return ctx, &scriptedReader{msgs: msgs, cancel: cancel},
		logging.Wrap(zap.New(core), service), logs,
		metrics.NewConsumerMetrics(prometheus.NewRegistry())
}

func TestConsume_LogsEveryEvent(t *testing.T) {
	placed := contracts.NewEvent(contracts.EventOrderPlaced, "ORD-2026-001", nil)
	advanced := contracts.NewEvent(contracts.EventOrderAdvanced, "ORD-2026-001", nil)
	ctx, r, log, logs, m := setup(t, message(t, placed), message(t, advanced))

	consume(ctx, r, nil, log, m)

	entries := logs.FilterField(zap.String("status", "received")).All()
	require.Len(t, entries, 2)
	assert.Equal(t, placed.EventID, entries[0].ContextMap()["event_id"])
	assert.Equal(t, "ORD-2026-001", entries[1].Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues(contracts.EventOrderAdvanced, "received")))
}

func TestConsume_SkipsDuplicatesWithInbox(t *testing.T) {
	ev := contracts.NewEvent(contracts.EventCustomerCreated, "customer-6", nil)
	ctx, r, log, logs, m := setup(t, message(t, ev), message(t, ev))

	consume(ctx, r, &memInbox{ids: map[string]bool{}}, log, m)

	assert.Len(t, logs.FilterField(zap.String("status", "received")).All(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues(contracts.EventCustomerCreated, "duplicate")))
}

func TestConsume_InboxFailureStillLogs(t *testing.T) {
	ev := contracts.NewEvent(contracts.EventProductCreated, "P011", nil)
	ctx, r, log, logs, m := setup(t, message(t, ev))

	consume(ctx, r, &memInbox{err: errors.New("db down")}, log, m)

	assert.Len(t, logs.FilterMessage("inbox write failed").All(), 1)
	assert.Len(t, logs.FilterField(zap.String("status", "received")).All(), 1)
}

func TestConsume_SkipsInvalidMessages(t *testing.T) {
	ctx, r, log, logs, m := setup(t,
		kafkago.Message{Value: []byte("not json")},
		kafkago.Message{Value: []byte(`{"type":"order.placed"}`)},
	)

	consume(ctx, r, nil, log, m)

	assert.Len(t, logs.FilterMessage("event skipped").All(), 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("unknown", "invalid")))
}
