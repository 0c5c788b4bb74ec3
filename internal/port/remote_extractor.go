package port

import (
	"context"
	"encoding/json"

	"fieldextract/internal/domain"
)

// ResourceKind identifies a releasable remote resource.
type ResourceKind string

const (
	ResourceFile    ResourceKind = "file"
	ResourceContext ResourceKind = "context"
)

// Resource is a handle to remote state that must be released after a job.
type Resource struct {
	Kind ResourceKind
	ID   string
}

// UploadInput carries one document payload to the remote service.
type UploadInput struct {
	Name    string
	Payload []byte
}

// SubmitInput starts an extraction job inside an existing context.
type SubmitInput struct {
	ContextID    string
	FileID       string
	TemplateID   string
	DocumentName string
	FieldNames   []string
	AreaHint     json.RawMessage
}

// JobHandle identifies a submitted job.
type JobHandle struct {
	ID        string
	ContextID string
}

// JobState is one observation of a job's status.
type JobState struct {
	Status domain.JobStatus
	Reason string
}

// Template is a reusable remote extraction profile.
type Template struct {
	ID string
}

// RemoteExtractor is the remote extraction service. Every method may return a
// rate-limit or transient error which callers are expected to retry.
type RemoteExtractor interface {
	Upload(ctx context.Context, input UploadInput) (string, error)
	CreateContext(ctx context.Context) (string, error)
	SubmitJob(ctx context.Context, input SubmitInput) (JobHandle, error)
	PollStatus(ctx context.Context, handle JobHandle) (JobState, error)
	FetchOutput(ctx context.Context, contextID string) (string, error)
	Release(ctx context.Context, res Resource) error
	CreateTemplate(ctx context.Context, fieldNames []string) (Template, error)
}
