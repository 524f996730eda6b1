package out

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stint/internal/modules/session/domain"
	apperrors "stint/internal/platform/errors"
)

// FileExporter renders sessions to CSV or JSON files on local disk.
type FileExporter struct{}

func NewFileExporter() FileExporter {
	return FileExporter{}
}

func (FileExporter) Write(_ context.Context, path, format string, sessions []domain.Session, now time.Time) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}
	switch format {
	case "csv":
		return writeCSV(path, sessions, now)
	case "json":
		return writeJSON(path, sessions, now)
	default:
		return 0, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrInvalidInput, format)
	}
}

func writeCSV(path string, sessions []domain.Session, now time.Time) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"id", "description", "tags", "project", "state", "started_at", "stopped_at", "duration_seconds", "pause_seconds"}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}
	for _, s := range sessions {
		stopped := ""
		if s.StoppedAt != nil {
			stopped = s.StoppedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			s.ID,
			s.Description,
			strings.Join(s.Tags, ","),
			s.Project,
			string(s.State),
			s.StartedAt.UTC().Format(time.RFC3339),
			stopped,
			strconv.FormatInt(int64(s.DurationAt(now)/time.Second), 10),
			strconv.FormatInt(int64(s.PausedFor(now)/time.Second), 10),
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("write export record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}
	return len(sessions), nil
}

type exportRecord struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	Project         string   `json:"project,omitempty"`
	State           string   `json:"state"`
	StartedAt       string   `json:"started_at"`
	StoppedAt       string   `json:"stopped_at,omitempty"`
	DurationSeconds int64    `json:"duration_seconds"`
	PauseSeconds    int64    `json:"pause_seconds"`
}

func writeJSON(path string, sessions []domain.Session, now time.Time) (int, error) {
	records := make([]exportRecord, 0, len(sessions))
	for _, s := range sessions {
		rec := exportRecord{
			ID:              s.ID,
			Description:     s.Description,
			Tags:            s.Tags,
			Project:         s.Project,
			State:           string(s.State),
			StartedAt:       s.StartedAt.UTC().Format(time.RFC3339),
			DurationSeconds: int64(s.DurationAt(now) / time.Second),
			PauseSeconds:    int64(s.PausedFor(now) / time.Second),
		}
		if s.StoppedAt != nil {
			rec.StoppedAt = s.StoppedAt.UTC().Format(time.RFC3339)
		}
		records = append(records, rec)
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return 0, fmt.Errorf("write export file: %w", err)
	}
	return len(records), nil
}
