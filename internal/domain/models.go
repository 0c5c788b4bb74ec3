package domain

import "encoding/json"

// Document is one input file. A nil or empty Payload means no data was supplied.
// InputErr is set when data was supplied but could not be read.
type Document struct {
	Name     string
	Payload  []byte
	InputErr error
}

// HasPayload reports whether the document carries any bytes to extract from.
func (d Document) HasPayload() bool {
	return len(d.Payload) > 0
}

// FieldRequest is the set of fields requested for every document in a batch.
// An empty Names slice asks for every field the service can discover.
type FieldRequest struct {
	Names    []string
	AreaHint json.RawMessage
}

// ExtractionRequest is the normalized batch input.
type ExtractionRequest struct {
	Documents []Document
	Fields    FieldRequest
}

// LineItemRecord is one extracted line item, named after its source document.
type LineItemRecord struct {
	Filename string         `json:"filename"`
	Data     map[string]any `json:"data"`
}

// DocumentResult is the outcome for a single input document. ExtractedFields
// holds []LineItemRecord for real extractions and map[string]any for placeholders.
type DocumentResult struct {
	Name            string `json:"name"`
	Success         bool   `json:"success"`
	ExtractedFields any    `json:"extractedFields"`
	Error           string `json:"error,omitempty"`
	IsUsingMockData bool   `json:"isUsingMockData"`
}

// NoPayloadResult is the result for a document that arrived without data.
func NoPayloadResult(name string) DocumentResult {
	return DocumentResult{
		Name:            name,
		Success:         false,
		Error:           "No PDF data provided for this file",
		ExtractedFields: map[string]any{},
		IsUsingMockData: true,
	}
}

// BatchInfo describes how a batch was partitioned.
type BatchInfo struct {
	BatchSize    int `json:"batchSize"`
	TotalBatches int `json:"totalBatches"`
}

// BatchResponse is the full response for one extraction request.
type BatchResponse struct {
	Results         []DocumentResult `json:"results"`
	TotalProcessed  int              `json:"totalProcessed"`
	SuccessCount    int              `json:"successCount"`
	IsUsingMockData bool             `json:"isUsingMockData"`
	BatchInfo       BatchInfo        `json:"batchInfo"`
}

// NewBatchResponse aggregates per-document results into a response.
func NewBatchResponse(results []DocumentResult, batchSize int) *BatchResponse {
	resp := &BatchResponse{
		Results:        results,
		TotalProcessed: len(results),
		BatchInfo: BatchInfo{
			BatchSize:    batchSize,
			TotalBatches: GroupCount(len(results), batchSize),
		},
	}
	for i := range results {
		if results[i].Success {
			resp.SuccessCount++
		}
		if results[i].IsUsingMockData {
			resp.IsUsingMockData = true
		}
	}
	return resp
}

// GroupCount returns how many consecutive groups of size n cover total items.
func GroupCount(total, n int) int {
	if total <= 0 || n <= 0 {
		return 0
	}
	return (total + n - 1) / n
}
