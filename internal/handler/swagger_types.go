package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation; DocumentInput
// is also the decoding target for object-shaped document entries.

// ExtractRequest represents the extraction request body. Alternate key names
// (pdfsBase64, pdfBase64, fields, area) are accepted for the same values.
type ExtractRequest struct {
	PDFs         []DocumentInput `json:"pdfs"`
	FieldNames   []string       `json:"fieldNames" example:"Document Number,Document Date"`
	SelectedArea map[string]any  `json:"selectedArea,omitempty"`
}

// DocumentInput is one object-shaped document entry. A plain base64 string or
// data URI is also accepted in place of the object.
type DocumentInput struct {
	Name      string       `json:"name,omitempty" example:"challan-0042.pdf"`
	Filename  string       `json:"filename,omitempty"`
	PDFBase64 string       `json:"pdfBase64,omitempty" example:"JVBERi0xLjQK..."`
	Base64    string       `json:"base64,omitempty"`
	Data      string       `json:"data,omitempty"`
	S3        *S3ObjectRef `json:"s3,omitempty"`
	S3Key     string       `json:"s3Key,omitempty" example:"uploads/challan-0042.pdf"`
}

// S3ObjectRef points at a document stored in S3. An empty bucket means the
// configured default bucket.
type S3ObjectRef struct {
	Bucket string `json:"bucket,omitempty" example:"challans"`
	Key    string `json:"key" example:"uploads/challan-0042.pdf"`
}

func (d *DocumentInput) displayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Filename
}

func (d *DocumentInput) encodedPayload() string {
	switch {
	case d.PDFBase64 != "":
		return d.PDFBase64
	case d.Base64 != "":
		return d.Base64
	default:
		return d.Data
	}
}

func (d *DocumentInput) objectRef() *S3ObjectRef {
	if d.S3 != nil && d.S3.Key != "" {
		return d.S3
	}
	if d.S3Key != "" {
		return &S3ObjectRef{Key: d.S3Key}
	}
	return nil
}
