package domain

// JobStatus is the remote job state reported while polling.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusExpired   JobStatus = "expired"
	JobStatusUnknown   JobStatus = "unknown"
)

// IsTerminal reports whether polling should stop at this status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled, JobStatusExpired:
		return true
	default:
		return false
	}
}

// JobStage names a step of the per-document job lifecycle.
type JobStage string

const (
	StageCreated    JobStage = "created"
	StageUploading  JobStage = "uploading"
	StageSubmitting JobStage = "submitting"
	StagePolling    JobStage = "polling"
	StageFetching   JobStage = "fetching"
	StageCleanup    JobStage = "cleanup"
	StageSucceeded  JobStage = "succeeded"
	StageFailed     JobStage = "failed"
)

// ExportFormat is a tabular rendering of batch results.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// AllowedExportFormats maps format names to their MIME content type.
var AllowedExportFormats = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}
