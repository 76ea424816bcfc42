package trace_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/limn/internal/devtool"
	"github.com/roach88/limn/internal/trace"
)

// The log must be usable as a connection recorder without adapters.
var _ devtool.Recorder = (*trace.Log)(nil)

func openTestLog(t *testing.T) *trace.Log {
	t.Helper()
	log, err := trace.Open(filepath.Join(t.TempDir(), "trace.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestLog_RecordAndReadBack(t *testing.T) {
	log := openTestLog(t)

	log.RecordSend("s1", 1, "Runtime.evaluate", []byte(`{"expression":"1"}`))
	log.RecordResult("s1", 1, []byte(`{"result":{"value":2}}`), "")

	exchanges, err := log.Exchanges(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)

	e := exchanges[0]
	assert.Equal(t, "s1", e.Session)
	assert.Equal(t, uint64(1), e.ReqID)
	assert.Equal(t, "Runtime.evaluate", e.Method)
	assert.Equal(t, `{"expression":"1"}`, e.Params)
	assert.Equal(t, `{"result":{"value":2}}`, e.Result)
	assert.Empty(t, e.Fault)
	assert.False(t, e.SentAt.IsZero())
	assert.False(t, e.DoneAt.IsZero())
}

func TestLog_PendingExchangeHasNoOutcome(t *testing.T) {
	log := openTestLog(t)

	log.RecordSend("s1", 1, "Runtime.evaluate", nil)

	exchanges, err := log.Exchanges(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.True(t, exchanges[0].DoneAt.IsZero())
}

func TestLog_FaultRecorded(t *testing.T) {
	log := openTestLog(t)

	log.RecordSend("s1", 1, "Runtime.evaluate", nil)
	log.RecordResult("s1", 1, nil, "REQUEST_TIMEOUT: no reply within 30s")

	exchanges, err := log.Exchanges(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "REQUEST_TIMEOUT: no reply within 30s", exchanges[0].Fault)
}

func TestLog_DuplicateSendIsIdempotent(t *testing.T) {
	log := openTestLog(t)

	log.RecordSend("s1", 1, "Runtime.evaluate", []byte(`{"expression":"first"}`))
	log.RecordSend("s1", 1, "Runtime.evaluate", []byte(`{"expression":"second"}`))

	exchanges, err := log.Exchanges(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, `{"expression":"first"}`, exchanges[0].Params)
}

func TestLog_ExchangesOrderedByRequestID(t *testing.T) {
	log := openTestLog(t)

	log.RecordSend("s1", 2, "Runtime.evaluate", nil)
	log.RecordSend("s1", 1, "Runtime.evaluate", nil)
	log.RecordSend("s1", 3, "Runtime.evaluate", nil)

	exchanges, err := log.Exchanges(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 3)
	for i, e := range exchanges {
		assert.Equal(t, uint64(i+1), e.ReqID)
	}
}

func TestLog_SessionsAggregate(t *testing.T) {
	log := openTestLog(t)

	log.RecordSend("s1", 1, "Runtime.evaluate", nil)
	log.RecordResult("s1", 1, []byte(`{}`), "")
	log.RecordSend("s1", 2, "Runtime.evaluate", nil)
	log.RecordResult("s1", 2, nil, "CONNECTION_CLOSED: debug socket closed")
	log.RecordSend("s2", 1, "Runtime.evaluate", nil)

	summaries, err := log.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := map[string]trace.SessionSummary{}
	for _, s := range summaries {
		byName[s.Session] = s
	}
	assert.Equal(t, 2, byName["s1"].Exchanges)
	assert.Equal(t, 1, byName["s1"].Faults)
	assert.Equal(t, 1, byName["s2"].Exchanges)
	assert.Equal(t, 0, byName["s2"].Faults)
}

func TestLog_ReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.db")

	log, err := trace.Open(path, nil)
	require.NoError(t, err)
	log.RecordSend("s1", 1, "Runtime.evaluate", nil)
	require.NoError(t, log.Close())

	reopened, err := trace.Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	exchanges, err := reopened.Exchanges(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, exchanges, 1)
}

func TestLog_UnknownSessionIsEmpty(t *testing.T) {
	log := openTestLog(t)

	exchanges, err := log.Exchanges(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, exchanges)
}
