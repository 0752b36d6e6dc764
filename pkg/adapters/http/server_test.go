package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/taskflow"
	"github.com/aretw0/taskflow/internal/dto"
	"github.com/aretw0/taskflow/internal/logging"
	"github.com/aretw0/taskflow/pkg/domain"
	"github.com/aretw0/taskflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *StreamManager) {
	t.Helper()
	b := dsl.New("approval").Initial("A")
	b.Task("A").Then("B", "C")
	b.Task("B").Service()
	b.Task("C").Policy(domain.Deny())

	streams := NewStreamManager()
	eng, err := taskflow.New("",
		taskflow.WithBlueprint(b.MustBuild()),
		taskflow.WithLifecycleHooks(streams.Hooks()),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(eng, WithStreams(streams)))
	t.Cleanup(srv.Close)
	return srv, streams
}

func do(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_Lifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/processes/s1"

	resp, body := do(t, http.MethodPost, base+"/start", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []any{"A"}, body["active"])

	resp, body = do(t, http.MethodGet, base+"/tasks/A", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["can_complete"])

	resp, body = do(t, http.MethodPost, base+"/tasks/A/complete", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["outcome"])
	assert.Equal(t, []any{"B", "C"}, body["activated"])

	resp, body = do(t, http.MethodPost, base+"/tasks/C/complete", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "TASK_CONSTRAINT_FAILED", body["code"])

	resp, body = do(t, http.MethodPost, base+"/tasks/A/complete", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TASK_NOT_ACTIVE", body["code"])

	resp, body = do(t, http.MethodPost, base+"/tasks/C/resolve", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["resolved"])

	resp, body = do(t, http.MethodPost, base+"/tasks/B/resolve", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["resolved"])

	resp, body = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"C"}, body["active"])
	assert.Equal(t, []any{"A", "B"}, body["completed"])

	resp, body = do(t, http.MethodGet, srv.URL+"/processes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"s1"}, body["sessions"])

	resp, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "session not found")
}

func TestServer_Restore(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/processes/r1", `{"active":["B"],"completed":["A"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r1", body["session_id"])

	resp, _ = do(t, http.MethodPut, srv.URL+"/processes/r1", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Definitions(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/definitions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc dto.ProcessDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "approval", doc.Name)
	assert.Equal(t, []string{"A"}, doc.Initial)
	require.Len(t, doc.Tasks, 3)
	assert.Equal(t, []string{"B", "C"}, doc.Tasks[0].Next)
	assert.True(t, doc.Tasks[2].Custom)
}

func TestServer_HealthAndCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, body = do(t, http.MethodGet, srv.URL+"/info", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approval", body["process"])
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv, streams := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/processes/sess-1/events?watch=completed", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	assert.Equal(t, "connected", readData())

	// The subscription is registered before the ping is flushed.
	streams.mu.RLock()
	assert.Len(t, streams.subscribers["sess-1"], 1)
	streams.mu.RUnlock()

	do(t, http.MethodPost, srv.URL+"/processes/sess-1/start", "")
	do(t, http.MethodPost, srv.URL+"/processes/sess-1/tasks/A/complete", "")

	var diff domain.SnapshotDiff
	require.NoError(t, json.Unmarshal([]byte(readData()), &diff))
	assert.True(t, diff.Reset, "start resets the completion log")

	require.NoError(t, json.Unmarshal([]byte(readData()), &diff))
	assert.Equal(t, "sess-1", diff.SessionID)
	assert.Equal(t, []string{"B", "C"}, diff.Activated)
	assert.Equal(t, []string{"A"}, diff.Completed)
}

func TestSubscribeEvents_Restore(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	do(t, http.MethodPost, srv.URL+"/processes/r2/start", "")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/processes/r2/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	assert.Equal(t, "connected", readData())

	restored, _ := do(t, http.MethodPut, srv.URL+"/processes/r2", `{"active":["B"],"completed":["A"]}`)
	require.Equal(t, http.StatusOK, restored.StatusCode)

	var diff domain.SnapshotDiff
	require.NoError(t, json.Unmarshal([]byte(readData()), &diff))
	assert.Equal(t, "r2", diff.SessionID)
	assert.True(t, diff.Reset, "restore rewrites the completion log")
	assert.Equal(t, []string{"B"}, diff.Activated)
	assert.Equal(t, []string{"A"}, diff.Deactivated)
	assert.Equal(t, []string{"A"}, diff.Completed)
}

func TestStreamManager_LogsDroppedMessages(t *testing.T) {
	var buf bytes.Buffer
	streams := NewStreamManager(WithStreamLogger(logging.NewWithWriter(&buf, slog.LevelWarn)))

	ch, cancel := streams.Subscribe("slow")
	defer cancel()
	for i := 0; i < cap(ch)+1; i++ {
		streams.Broadcast("slow", "msg")
	}

	assert.Len(t, ch, cap(ch))
	assert.Contains(t, buf.String(), "dropping message")
	assert.Contains(t, buf.String(), "session_id=slow")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(domain.ErrSessionNotFound))
	assert.Equal(t, http.StatusNotFound, statusOf(domain.ErrDefinitionNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusOf(domain.ErrPolicyFailed))

	p := domain.NewProcess(nil, nil)
	assert.Equal(t, http.StatusConflict, statusOf(p.Complete("ghost")))
}
