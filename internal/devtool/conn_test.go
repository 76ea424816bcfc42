package devtool_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/limn/internal/devtool"
	"github.com/roach88/limn/internal/testutil"
)

func newTestConn(t *testing.T, opts ...devtool.Option) (*devtool.Conn, *testutil.FakeHost) {
	t.Helper()
	host := testutil.NewFakeHost()
	conn := devtool.NewConn(host, opts...)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, host
}

type evalResult struct {
	value json.RawMessage
	err   error
}

func evalAsync(conn *devtool.Conn, expr string) <-chan evalResult {
	ch := make(chan evalResult, 1)
	go func() {
		v, err := conn.Evaluate(context.Background(), expr)
		ch <- evalResult{value: v, err: err}
	}()
	return ch
}

// Replies are matched by id, never by arrival order. Eight concurrent
// callers each get their own answer even when the host responds in reverse.
func TestConn_OutOfOrderReplies(t *testing.T) {
	conn, host := newTestConn(t)
	const n = 8

	results := make([]evalResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := conn.Evaluate(context.Background(), fmt.Sprintf("%d", i))
			results[i] = evalResult{value: v, err: err}
		}(i)
	}

	reqs := host.WaitForRequests(n)
	require.Len(t, reqs, n)

	// Echo each request's expression back, last arrival answered first.
	for i := len(reqs) - 1; i >= 0; i-- {
		var params struct {
			Expression string `json:"expression"`
		}
		require.NoError(t, json.Unmarshal(reqs[i].Params, &params))
		host.ReplyValue(reqs[i].ID, "echo:"+params.Expression)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, results[i].err)
		var got string
		require.NoError(t, json.Unmarshal(results[i].value, &got))
		assert.Equal(t, fmt.Sprintf("echo:%d", i), got, "caller %d received a reply routed to someone else", i)
	}
}

func TestConn_RequestIDsStrictlyIncrease(t *testing.T) {
	conn, host := newTestConn(t)
	host.AutoReply("ok")

	for i := 0; i < 3; i++ {
		_, err := conn.Evaluate(context.Background(), "1")
		require.NoError(t, err)
	}

	reqs := host.Requests()
	require.Len(t, reqs, 3)
	for i, req := range reqs {
		assert.Equal(t, uint64(i+1), req.ID)
		assert.Equal(t, "Runtime.evaluate", req.Method)
	}
}

func TestConn_EvaluateParams(t *testing.T) {
	conn, host := newTestConn(t)
	host.AutoReply("ok")

	_, err := conn.Evaluate(context.Background(), "1 + 1")
	require.NoError(t, err)

	reqs := host.Requests()
	require.Len(t, reqs, 1)

	var params struct {
		Expression    string `json:"expression"`
		ReturnByValue bool   `json:"returnByValue"`
		AwaitPromise  bool   `json:"awaitPromise"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Params, &params))
	assert.Equal(t, "1 + 1", params.Expression)
	assert.True(t, params.ReturnByValue, "values must come back serialized, not as object references")
	assert.True(t, params.AwaitPromise, "async scripts must settle before the host replies")
}

func TestConn_RemoteFaultExtraction(t *testing.T) {
	cases := []struct {
		name    string
		details string
		want    string
	}{
		{
			name:    "thrown string value",
			details: `{"text":"Uncaught","exception":{"value":"boom"}}`,
			want:    "boom",
		},
		{
			name:    "description only",
			details: `{"text":"Uncaught","exception":{"description":"boom2"}}`,
			want:    "boom2",
		},
		{
			name:    "bare details",
			details: `{}`,
			want:    "Evaluation error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn, host := newTestConn(t)
			done := evalAsync(conn, "throw it")

			reqs := host.WaitForRequests(1)
			require.Len(t, reqs, 1)
			host.Deliver(fmt.Sprintf(
				`{"id":%d,"result":{"result":{"type":"undefined"},"exceptionDetails":%s}}`,
				reqs[0].ID, tc.details))

			res := <-done
			var rf *devtool.RemoteFault
			require.ErrorAs(t, res.err, &rf)
			assert.Equal(t, tc.want, rf.Message)
			assert.True(t, devtool.IsRemoteFault(res.err))
		})
	}
}

// A fault inside the host must not poison the connection.
func TestConn_UsableAfterRemoteFault(t *testing.T) {
	conn, host := newTestConn(t)

	done := evalAsync(conn, "throw it")
	reqs := host.WaitForRequests(1)
	require.Len(t, reqs, 1)
	host.ReplyException(reqs[0].ID, "boom")
	require.Error(t, (<-done).err)

	host.AutoReply("still here")
	value, err := conn.Evaluate(context.Background(), "1")
	require.NoError(t, err)

	var got string
	require.NoError(t, json.Unmarshal(value, &got))
	assert.Equal(t, "still here", got)
}

func TestConn_CloseFailsPendingExchanges(t *testing.T) {
	conn, host := newTestConn(t)

	done := evalAsync(conn, "1")
	reqs := host.WaitForRequests(1)
	require.Len(t, reqs, 1)

	require.NoError(t, conn.Close())

	res := <-done
	assert.True(t, devtool.HasCode(res.err, devtool.ErrCodeConnectionClosed))

	// Idempotent.
	require.NoError(t, conn.Close())
}

func TestConn_SendAfterClose(t *testing.T) {
	conn, _ := newTestConn(t)
	require.NoError(t, conn.Close())

	_, err := conn.Evaluate(context.Background(), "1")
	assert.True(t, devtool.HasCode(err, devtool.ErrCodeNotConnected))
}

func TestConn_PeerDisconnectFailsPendingExchanges(t *testing.T) {
	conn, host := newTestConn(t)

	done := evalAsync(conn, "1")
	reqs := host.WaitForRequests(1)
	require.Len(t, reqs, 1)

	require.NoError(t, host.Close())

	res := <-done
	assert.True(t, devtool.HasCode(res.err, devtool.ErrCodeConnectionClosed))
}

// Unmatched replies and id-less protocol events are dropped without
// disturbing live exchanges.
func TestConn_IgnoresUnmatchedAndEventMessages(t *testing.T) {
	conn, host := newTestConn(t)
	host.Deliver(`{"id":99,"result":{"result":{"type":"object","value":"stale"}}}`)
	host.Deliver(`{"method":"Page.frameNavigated","params":{}}`)

	done := evalAsync(conn, "1")
	reqs := host.WaitForRequests(1)
	require.Len(t, reqs, 1)
	host.ReplyValue(reqs[0].ID, "ok")

	res := <-done
	require.NoError(t, res.err)

	var got string
	require.NoError(t, json.Unmarshal(res.value, &got))
	assert.Equal(t, "ok", got)
}

func TestConn_RequestTimeout(t *testing.T) {
	conn, _ := newTestConn(t, devtool.WithRequestTimeout(30*time.Millisecond))

	_, err := conn.Evaluate(context.Background(), "1")
	assert.True(t, devtool.HasCode(err, devtool.ErrCodeRequestTimeout))
	assert.True(t, devtool.IsTimeout(err))
}

func TestConn_ContextCancelUnblocksSend(t *testing.T) {
	conn, host := newTestConn(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() {
		_, err := conn.Evaluate(ctx, "1")
		ch <- err
	}()

	reqs := host.WaitForRequests(1)
	require.Len(t, reqs, 1)
	cancel()

	err := <-ch
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConn_SessionToken(t *testing.T) {
	a, _ := newTestConn(t)
	b, _ := newTestConn(t)

	_, err := uuid.Parse(a.Session())
	require.NoError(t, err)
	assert.NotEqual(t, a.Session(), b.Session())
}

type capturingRecorder struct {
	mu      sync.Mutex
	sends   []string
	results []string
	faults  []string
}

func (r *capturingRecorder) RecordSend(session string, id uint64, method string, params []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, method)
}

func (r *capturingRecorder) RecordResult(session string, id uint64, result []byte, fault string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, string(result))
	r.faults = append(r.faults, fault)
}

func TestConn_RecorderSeesExchanges(t *testing.T) {
	rec := &capturingRecorder{}
	conn, host := newTestConn(t, devtool.WithRecorder(rec))
	host.AutoReply("ok")

	_, err := conn.Evaluate(context.Background(), "1")
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.sends, 1)
	assert.Equal(t, "Runtime.evaluate", rec.sends[0])
	require.Len(t, rec.results, 1)
	assert.Contains(t, rec.results[0], `"ok"`)
	assert.Empty(t, rec.faults[0])
}
