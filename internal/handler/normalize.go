package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fieldextract/internal/domain"
	"fieldextract/internal/port"
)

var (
	documentKeys = []string{"pdfs", "pdfsBase64", "pdfBase64"}
	fieldKeys    = []string{"fieldNames", "fields"}
	areaKeys     = []string{"selectedArea", "area"}
)

// Normalizer turns the loosely shaped request body into a domain.ExtractionRequest.
// Problems with the body as a whole are fatal; a single unusable entry becomes
// a document without payload so the rest of the batch still runs.
type Normalizer struct {
	storage       port.ObjectStorage
	defaultBucket string
	maxDocuments  int
	logger        *slog.Logger
}

// NewNormalizer creates a Normalizer. storage may be nil, in which case S3
// references are rejected.
func NewNormalizer(storage port.ObjectStorage, defaultBucket string, maxDocuments int, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		storage:       storage,
		defaultBucket: defaultBucket,
		maxDocuments:  maxDocuments,
		logger:        logger.With("component", "normalizer"),
	}
}

// Normalize parses body.
func (n *Normalizer) Normalize(ctx context.Context, body []byte) (*domain.ExtractionRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: Invalid JSON in request body: %v", domain.ErrInvalidRequest, err)
	}

	var entries []json.RawMessage
	if v := firstPresent(raw, documentKeys); v != nil {
		if err := json.Unmarshal(v, &entries); err != nil {
			return nil, fmt.Errorf("%w: document data is not an array", domain.ErrInvalidRequest)
		}
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if n.maxDocuments > 0 && len(entries) > n.maxDocuments {
		return nil, fmt.Errorf("%w: maximum %d documents allowed per request, got %d",
			domain.ErrTooManyDocuments, n.maxDocuments, len(entries))
	}

	req := &domain.ExtractionRequest{Documents: make([]domain.Document, len(entries))}
	for i, entry := range entries {
		doc, err := n.document(ctx, i, entry)
		if err != nil {
			return nil, err
		}
		req.Documents[i] = doc
	}

	if v := firstPresent(raw, fieldKeys); v != nil {
		if err := json.Unmarshal(v, &req.Fields.Names); err != nil {
			return nil, fmt.Errorf("%w: field names must be an array of strings", domain.ErrInvalidRequest)
		}
	}
	if v := firstPresent(raw, areaKeys); v != nil {
		req.Fields.AreaHint = v
	}
	return req, nil
}

func (n *Normalizer) document(ctx context.Context, index int, entry json.RawMessage) (domain.Document, error) {
	doc := domain.Document{Name: fmt.Sprintf("document-%d.pdf", index+1)}

	switch firstByte(entry) {
	case '"':
		var encoded string
		if err := json.Unmarshal(entry, &encoded); err != nil {
			return doc, fmt.Errorf("%w: document %d: %v", domain.ErrInvalidRequest, index+1, err)
		}
		doc.Payload, doc.InputErr = n.decode(doc.Name, encoded)
	case '{':
		var in DocumentInput
		if err := json.Unmarshal(entry, &in); err != nil {
			return doc, fmt.Errorf("%w: document %d: %v", domain.ErrInvalidRequest, index+1, err)
		}
		if name := in.displayName(); name != "" {
			doc.Name = name
		}
		if ref := in.objectRef(); ref != nil {
			payload, err := n.download(ctx, doc.Name, ref)
			if err != nil {
				return doc, err
			}
			doc.Payload = payload
			break
		}
		doc.Payload, doc.InputErr = n.decode(doc.Name, in.encodedPayload())
	}
	return doc, nil
}

// decode accepts standard or unpadded base64, optionally as a data URI.
// An empty payload is missing; an undecodable one is an invalid file format.
func (n *Normalizer) decode(name, encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	if encoded == "" {
		return nil, nil
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if payload, err := enc.DecodeString(encoded); err == nil {
			return payload, nil
		}
	}
	n.logger.Warn("undecodable document payload", "document", name)
	return nil, fmt.Errorf("%w: %s is not valid base64", domain.ErrInvalidFileFormat, name)
}

// download fetches an S3-referenced document. A failed download leaves the
// document without payload; a missing storage backend is a request error.
func (n *Normalizer) download(ctx context.Context, name string, ref *S3ObjectRef) ([]byte, error) {
	if n.storage == nil {
		return nil, fmt.Errorf("%w: S3 document references are not enabled", domain.ErrInvalidRequest)
	}
	bucket := ref.Bucket
	if bucket == "" {
		bucket = n.defaultBucket
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: no bucket for S3 key %q", domain.ErrInvalidRequest, ref.Key)
	}

	payload, err := n.storage.Download(ctx, bucket, ref.Key)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		n.logger.Warn("s3 download failed", "document", name, "bucket", bucket, "key", ref.Key, "error", err)
		return nil, nil
	}
	return payload, nil
}

// firstPresent returns the first value under keys that is neither null nor "".
func firstPresent(raw map[string]json.RawMessage, keys []string) json.RawMessage {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		t := bytes.TrimSpace(v)
		if len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte(`""`)) {
			continue
		}
		return t
	}
	return nil
}

func firstByte(v json.RawMessage) byte {
	t := bytes.TrimSpace(v)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}
