package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fieldextract/internal/app"
	"fieldextract/internal/clock"
	"fieldextract/internal/config"
	"fieldextract/internal/csvexport"
	"fieldextract/internal/domain"
	"fieldextract/internal/logging"
	"fieldextract/internal/service"
)

var (
	fieldList string
	areaHint  string
	outPath   string
)

var runCmd = &cobra.Command{
	Use:   "run [pdf files...]",
	Short: "Extract fields from one or more PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	runCmd.Flags().StringVar(&fieldList, "fields", "", "comma-separated field names (empty extracts every field)")
	runCmd.Flags().StringVar(&areaHint, "area", "", "selected-area hint as JSON")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (.json, .csv or .xlsx); stdout JSON when empty")
	rootCmd.AddCommand(runCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if isDebug {
		cfg.Log.Level = "debug"
	}
	logger := logging.New(cfg.Log, cmd.ErrOrStderr())

	req, err := buildRequest(args, fieldList, areaHint)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := app.NewExtractionService(cfg, clock.New(), logger)
	return extractTo(ctx, svc, req, outPath, cmd.OutOrStdout())
}

// buildRequest reads every file into a document named after its base name.
func buildRequest(paths []string, fields, area string) (*domain.ExtractionRequest, error) {
	req := &domain.ExtractionRequest{Documents: make([]domain.Document, 0, len(paths))}
	for _, p := range paths {
		payload, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		req.Documents = append(req.Documents, domain.Document{Name: filepath.Base(p), Payload: payload})
	}
	for _, f := range strings.Split(fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			req.Fields.Names = append(req.Fields.Names, f)
		}
	}
	if area != "" {
		if !json.Valid([]byte(area)) {
			return nil, fmt.Errorf("--area is not valid JSON")
		}
		req.Fields.AreaHint = json.RawMessage(area)
	}
	return req, nil
}

// extractTo runs the batch and writes the result to path, choosing the format
// by extension, or to stdout as JSON when path is empty.
func extractTo(ctx context.Context, svc service.ExtractionService, req *domain.ExtractionRequest, path string, stdout io.Writer) error {
	resp, err := svc.ExtractBatch(ctx, req)
	if err != nil {
		return err
	}

	if path == "" {
		return writeJSON(stdout, resp)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = csvexport.WriteCSV(f, csvexport.BuildTable(resp.Results, req.Fields.Names))
	case ".xlsx":
		err = csvexport.WriteXLSX(f, csvexport.BuildTable(resp.Results, req.Fields.Names))
	default:
		err = writeJSON(f, resp)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stdout, "%d/%d documents extracted, mock data: %t, wrote %s\n",
		resp.SuccessCount, resp.TotalProcessed, resp.IsUsingMockData, path)
	return f.Close()
}

func writeJSON(w io.Writer, resp *domain.BatchResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
