package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldextract/internal/config"
	"fieldextract/internal/domain"
	"fieldextract/internal/port"
	"fieldextract/internal/remote/openai"
	"fieldextract/internal/transport"
	"fieldextract/mocks"
)

func newTestClient(t *testing.T, mux *http.ServeMux) (*openai.Client, *mocks.FakeClock) {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clk := mocks.NewFakeClock(time.Unix(0, 0))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr := transport.New(transport.DefaultConfig(), clk, logger)
	cfg := &config.OpenAIConfig{
		APIKey:      "test-openai-key",
		BaseURL:     server.URL + "/v1",
		Model:       "gpt-4o-mini",
		TimeoutSecs: 5,
	}
	return openai.NewClient(cfg, tr), clk
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Upload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "assistants=v2", r.Header.Get("OpenAI-Beta"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "assistants", r.FormValue("purpose"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "invoice.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4 data", string(body))
		writeJSON(w, http.StatusOK, map[string]any{"id": "file-123"})
	})
	client, _ := newTestClient(t, mux)

	id, err := client.Upload(context.Background(), port.UploadInput{Name: "invoice.pdf", Payload: []byte("%PDF-1.4 data")})
	require.NoError(t, err)
	assert.Equal(t, "file-123", id)
}

func TestClient_Upload_RateLimitedThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/files", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "4")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "Rate limit reached"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "file-9"})
	})
	client, clk := newTestClient(t, mux)

	id, err := client.Upload(context.Background(), port.UploadInput{Name: "a.pdf", Payload: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "file-9", id)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []time.Duration{4 * time.Second}, clk.Sleeps())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "Incorrect API key provided"}})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CreateContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Equal(t, int32(1), calls.Load())

	var se *transport.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestClient_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "thread-1"})
	})
	client, clk := newTestClient(t, mux)

	id, err := client.CreateContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread-1", id)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clk.Sleeps())
}

func TestClient_SubmitJob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/threads/thread-1/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user", body["role"])
		assert.Contains(t, body["content"], "Extract data from: invoice.pdf")
		assert.Contains(t, body["content"], `"Total"`)
		atts, _ := body["attachments"].([]any)
		if assert.Len(t, atts, 1) {
			assert.Equal(t, "file-1", atts[0].(map[string]any)["file_id"])
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "msg-1"})
	})
	mux.HandleFunc("POST /v1/threads/thread-1/runs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "asst-1", body["assistant_id"])
		writeJSON(w, http.StatusOK, map[string]any{"id": "run-1", "status": "queued"})
	})
	client, _ := newTestClient(t, mux)

	handle, err := client.SubmitJob(context.Background(), port.SubmitInput{
		ContextID:    "thread-1",
		FileID:       "file-1",
		TemplateID:   "asst-1",
		DocumentName: "invoice.pdf",
		FieldNames:   []string{"Total"},
	})
	require.NoError(t, err)
	assert.Equal(t, port.JobHandle{ID: "run-1", ContextID: "thread-1"}, handle)
}

func TestClient_PollStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/threads/thread-1/runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":         "run-1",
			"status":     "failed",
			"last_error": map[string]any{"code": "server_error", "message": "file could not be parsed"},
		})
	})
	client, _ := newTestClient(t, mux)

	state, err := client.PollStatus(context.Background(), port.JobHandle{ID: "run-1", ContextID: "thread-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, state.Status)
	assert.Equal(t, "file could not be parsed", state.Reason)
}

func TestClient_FetchOutput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/threads/thread-1/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{
				map[string]any{"role": "assistant", "content": []any{
					map[string]any{"type": "text", "text": map[string]any{"value": "  [{\"a\":1}]\n"}},
				}},
				map[string]any{"role": "user", "content": []any{
					map[string]any{"type": "text", "text": map[string]any{"value": "Extract data from: a.pdf"}},
				}},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	text, err := client.FetchOutput(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1}]`, text)
}

func TestClient_FetchOutput_NoAssistantMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/threads/thread-1/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})
	client, _ := newTestClient(t, mux)

	text, err := client.FetchOutput(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestClient_Release(t *testing.T) {
	var deleted []string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, "file:"+r.PathValue("id"))
		if r.PathValue("id") == "gone" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"message": "No such File object"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "deleted": true})
	})
	mux.HandleFunc("DELETE /v1/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, "thread:"+r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "deleted": true})
	})
	client, _ := newTestClient(t, mux)

	ctx := context.Background()
	require.NoError(t, client.Release(ctx, port.Resource{Kind: port.ResourceFile, ID: "file-1"}))
	require.NoError(t, client.Release(ctx, port.Resource{Kind: port.ResourceContext, ID: "thread-1"}))
	require.NoError(t, client.Release(ctx, port.Resource{Kind: port.ResourceFile, ID: "gone"}))
	assert.Error(t, client.Release(ctx, port.Resource{Kind: "bogus", ID: "x"}))

	assert.Equal(t, []string{"file:file-1", "thread:thread-1", "file:gone"}, deleted)
}

func TestClient_CreateTemplate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/assistants", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, "Batch Invoice Extractor", body["name"])
		assert.Contains(t, body["instructions"], `"Document Number"`)
		tools := body["tools"].([]any)
		assert.Equal(t, "file_search", tools[0].(map[string]any)["type"])
		writeJSON(w, http.StatusOK, map[string]any{"id": "asst-42"})
	})
	client, _ := newTestClient(t, mux)

	tmpl, err := client.CreateTemplate(context.Background(), []string{"Document Number"})
	require.NoError(t, err)
	assert.Equal(t, "asst-42", tmpl.ID)
}

func TestClient_MalformedResponseNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/assistants", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json</html>"))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CreateTemplate(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMapRunStatus(t *testing.T) {
	tests := map[string]domain.JobStatus{
		"queued":          domain.JobStatusPending,
		"in_progress":     domain.JobStatusRunning,
		"requires_action": domain.JobStatusRunning,
		"cancelling":      domain.JobStatusRunning,
		"completed":       domain.JobStatusCompleted,
		"failed":          domain.JobStatusFailed,
		"incomplete":      domain.JobStatusFailed,
		"cancelled":       domain.JobStatusCancelled,
		"expired":         domain.JobStatusExpired,
		"something_new":   domain.JobStatusUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, openai.MapRunStatus(in), in)
	}
}
