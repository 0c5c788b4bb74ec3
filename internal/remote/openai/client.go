package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldextract/internal/config"
	"fieldextract/internal/domain"
	"fieldextract/internal/parser"
	"fieldextract/internal/port"
	"fieldextract/internal/transport"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultName    = "Batch Invoice Extractor"
)

// Client implements port.RemoteExtractor on the OpenAI Assistants v2 API.
// Files are uploads, threads are job contexts, runs are jobs and the
// assistant is the shared template.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	assistantName string
	http          *http.Client
	transport     *transport.Transport
}

// NewClient creates an Assistants API client whose calls go through tr.
func NewClient(cfg *config.OpenAIConfig, tr *transport.Transport) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	name := cfg.AssistantName
	if name == "" {
		name = defaultName
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       baseURL,
		model:         model,
		assistantName: name,
		http:          &http.Client{Timeout: timeout},
		transport:     tr,
	}
}

var _ port.RemoteExtractor = (*Client)(nil)

func (c *Client) Upload(ctx context.Context, input port.UploadInput) (string, error) {
	var out objectRef
	err := c.transport.Do(ctx, "upload", func(ctx context.Context) error {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		if err := mw.WriteField("purpose", "assistants"); err != nil {
			return transport.Permanent(fmt.Errorf("writing multipart field: %w", err))
		}
		fw, err := mw.CreateFormFile("file", input.Name)
		if err != nil {
			return transport.Permanent(fmt.Errorf("creating multipart file: %w", err))
		}
		if _, err := fw.Write(input.Payload); err != nil {
			return transport.Permanent(fmt.Errorf("writing multipart file: %w", err))
		}
		if err := mw.Close(); err != nil {
			return transport.Permanent(fmt.Errorf("closing multipart writer: %w", err))
		}

		req, err := c.newRequest(ctx, http.MethodPost, "/files", &body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return c.send(req, "upload", &out)
	})
	if err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}
	return out.ID, nil
}

func (c *Client) CreateContext(ctx context.Context) (string, error) {
	var out objectRef
	if err := c.doJSON(ctx, "create_context", http.MethodPost, "/threads", map[string]any{}, &out); err != nil {
		return "", fmt.Errorf("thread creation failed: %w", err)
	}
	return out.ID, nil
}

func (c *Client) SubmitJob(ctx context.Context, input port.SubmitInput) (port.JobHandle, error) {
	msg := messageRequest{
		Role:    "user",
		Content: parser.BuildJobMessage(input.DocumentName, input.FieldNames, input.AreaHint),
		Attachments: []attachment{{
			FileID: input.FileID,
			Tools:  []tool{{Type: "file_search"}},
		}},
	}
	threadPath := "/threads/" + url.PathEscape(input.ContextID)
	if err := c.doJSON(ctx, "add_message", http.MethodPost, threadPath+"/messages", msg, nil); err != nil {
		return port.JobHandle{}, fmt.Errorf("message creation failed: %w", err)
	}

	var run runObject
	if err := c.doJSON(ctx, "create_run", http.MethodPost, threadPath+"/runs", runRequest{AssistantID: input.TemplateID}, &run); err != nil {
		return port.JobHandle{}, fmt.Errorf("run creation failed: %w", err)
	}
	return port.JobHandle{ID: run.ID, ContextID: input.ContextID}, nil
}

func (c *Client) PollStatus(ctx context.Context, handle port.JobHandle) (port.JobState, error) {
	var run runObject
	path := "/threads/" + url.PathEscape(handle.ContextID) + "/runs/" + url.PathEscape(handle.ID)
	if err := c.doJSON(ctx, "poll_status", http.MethodGet, path, nil, &run); err != nil {
		return port.JobState{}, fmt.Errorf("run status check failed: %w", err)
	}
	state := port.JobState{Status: MapRunStatus(run.Status)}
	if run.LastError != nil {
		state.Reason = run.LastError.Message
	}
	return state, nil
}

func (c *Client) FetchOutput(ctx context.Context, contextID string) (string, error) {
	var list messageList
	path := "/threads/" + url.PathEscape(contextID) + "/messages?order=desc&limit=20"
	if err := c.doJSON(ctx, "fetch_output", http.MethodGet, path, nil, &list); err != nil {
		return "", fmt.Errorf("message retrieval failed: %w", err)
	}
	for _, m := range list.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, part := range m.Content {
			if part.Type == "text" && part.Text != nil {
				return strings.TrimSpace(part.Text.Value), nil
			}
		}
		return "", nil
	}
	return "", nil
}

func (c *Client) Release(ctx context.Context, res port.Resource) error {
	var path string
	switch res.Kind {
	case port.ResourceFile:
		path = "/files/" + url.PathEscape(res.ID)
	case port.ResourceContext:
		path = "/threads/" + url.PathEscape(res.ID)
	default:
		return fmt.Errorf("unknown resource kind %q", res.Kind)
	}
	err := c.doJSON(ctx, "release_"+string(res.Kind), http.MethodDelete, path, nil, nil)
	if se, ok := asStatusError(err); ok && se.StatusCode == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s cleanup failed: %w", res.Kind, err)
	}
	return nil
}

func (c *Client) CreateTemplate(ctx context.Context, fieldNames []string) (port.Template, error) {
	req := assistantRequest{
		Name:         c.assistantName,
		Instructions: parser.BuildInstructions(fieldNames),
		Model:        c.model,
		Tools:        []tool{{Type: "file_search"}},
	}
	var out objectRef
	if err := c.doJSON(ctx, "create_template", http.MethodPost, "/assistants", req, &out); err != nil {
		return port.Template{}, fmt.Errorf("assistant creation failed: %w", err)
	}
	return port.Template{ID: out.ID}, nil
}

// MapRunStatus converts an Assistants run status to a JobStatus.
func MapRunStatus(s string) domain.JobStatus {
	switch s {
	case "queued":
		return domain.JobStatusPending
	case "in_progress", "requires_action", "cancelling":
		return domain.JobStatusRunning
	case "completed":
		return domain.JobStatusCompleted
	case "failed", "incomplete":
		return domain.JobStatusFailed
	case "cancelled":
		return domain.JobStatusCancelled
	case "expired":
		return domain.JobStatusExpired
	default:
		return domain.JobStatusUnknown
	}
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		payload = b
	}
	return c.transport.Do(ctx, op, func(ctx context.Context) error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return c.send(req, op, out)
	})
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, transport.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	return req, nil
}

func (c *Client) send(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, errorMessage(respBody))
		retryAfter := transport.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return transport.NewRateLimitError(op, baseErr, retryAfter)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &transport.StatusError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return transport.Permanent(fmt.Errorf("unmarshaling %s response: %w", op, err))
	}
	return nil
}

// errorMessage pulls error.message out of an API error body, falling back to the raw body.
func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 500 {
		s = s[:500] + "..."
	}
	return s
}
