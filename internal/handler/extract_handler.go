package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldextract/internal/csvexport"
	"fieldextract/internal/domain"
	"fieldextract/internal/port"
	"fieldextract/internal/service"
)

// ExtractHandler handles batch extraction endpoints.
type ExtractHandler struct {
	service    service.ExtractionService
	normalizer *Normalizer
	clock      port.Clock
	maxBody    int64
	logger     *slog.Logger
}

// NewExtractHandler creates a new ExtractHandler. maxBody <= 0 disables the
// request body limit.
func NewExtractHandler(svc service.ExtractionService, normalizer *Normalizer, clk port.Clock, maxBody int64, logger *slog.Logger) *ExtractHandler {
	return &ExtractHandler{
		service:    svc,
		normalizer: normalizer,
		clock:      clk,
		maxBody:    maxBody,
		logger:     logger.With("component", "extract_handler"),
	}
}

// Extract handles POST /api/v1/extract
// @Summary Extract fields from a batch of documents
// @Description Runs every document through the remote extraction service in groups of five.
// @Description Documents that cannot be extracted are answered with placeholder data and isUsingMockData=true.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractRequest true "Documents and requested fields"
// @Success 200 {object} domain.BatchResponse "One result per document, in input order"
// @Failure 400 {object} ErrorResponse "Malformed, empty or oversized batch"
// @Failure 413 {object} ErrorResponse "Referenced document too large"
// @Failure 500 {object} ErrorResponse "Unexpected failure"
// @Router /extract [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	_, resp, ok := h.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles POST /api/v1/extract/export
// @Summary Extract fields and download them as a spreadsheet
// @Description Same input as /extract. Each line item becomes one row; placeholder results occupy one row each.
// @Tags extraction
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format: csv or xlsx" default(csv)
// @Param name query string false "Base name of the downloaded file" default(extraction)
// @Param request body ExtractRequest true "Documents and requested fields"
// @Success 200 {file} file "Spreadsheet download"
// @Failure 400 {object} ErrorResponse "Malformed request or unsupported format"
// @Failure 500 {object} ErrorResponse "Unexpected failure"
// @Router /extract/export [post]
func (h *ExtractHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportFormatCSV)))
	contentType, ok := domain.AllowedExportFormats[format]
	if !ok {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx")
		return
	}

	req, resp, ok := h.run(c)
	if !ok {
		return
	}
	table := csvexport.BuildTable(resp.Results, req.Fields.Names)

	var buf bytes.Buffer
	var err error
	switch format {
	case domain.ExportFormatXLSX:
		err = csvexport.WriteXLSX(&buf, table)
	default:
		err = csvexport.WriteCSV(&buf, table)
	}
	if err != nil {
		HandleError(c, h.logger, fmt.Errorf("rendering %s export: %w", format, err))
		return
	}

	filename := csvexport.BuildFilename(c.DefaultQuery("name", "extraction"), h.clock.Now(), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// run reads, normalizes and executes the request. On failure the error
// response has been written and ok is false.
func (h *ExtractHandler) run(c *gin.Context) (*domain.ExtractionRequest, *domain.BatchResponse, bool) {
	body, err := h.readBody(c)
	if err != nil {
		HandleError(c, h.logger, err)
		return nil, nil, false
	}

	req, err := h.normalizer.Normalize(c.Request.Context(), body)
	if err != nil {
		HandleError(c, h.logger, err)
		return nil, nil, false
	}

	resp, err := h.service.ExtractBatch(c.Request.Context(), req)
	if err != nil {
		HandleError(c, h.logger, err)
		return nil, nil, false
	}
	return req, resp, true
}

func (h *ExtractHandler) readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, fmt.Errorf("%w: empty request body", domain.ErrInvalidRequest)
	}
	r := io.Reader(c.Request.Body)
	if h.maxBody > 0 {
		r = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrFileTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: reading request body: %v", domain.ErrInvalidRequest, err)
	}
	return body, nil
}
