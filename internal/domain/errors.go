package domain

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrEmptyBatch          = errors.New("document array is empty")
	ErrTooManyDocuments    = errors.New("too many documents in request")
	ErrNoPayload           = errors.New("no document data provided for this file")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file format")
	ErrInvalidFileFormat   = errors.New("invalid file format")
	ErrProcessingTimeout   = errors.New("processing timeout exceeded")
	ErrRemoteJobFailed     = errors.New("remote job failed")
	ErrEmptyOutput         = errors.New("assistant returned empty response")
	ErrInvalidOutput       = errors.New("invalid JSON response")
)
