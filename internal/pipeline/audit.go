package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

var auditColumns = []string{
	"docket",
	"extracted_name",
	"extracted_address",
	"status",
	"matched_party_name",
	"previous_address",
	"stored_address",
}

// AuditWriter appends reconciliation outcomes to a CSV file. The header is
// written once, when the file is new or empty.
type AuditWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewAuditWriter opens (or creates) the audit file at path for appending.
func NewAuditWriter(path string) (*AuditWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	w := &AuditWriter{file: file, writer: csv.NewWriter(file)}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat audit file: %w", err)
	}
	if info.Size() == 0 {
		if err := w.writer.Write(auditColumns); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write audit header: %w", err)
		}
		w.writer.Flush()
	}

	return w, nil
}

// WriteOutcomes appends one row per outcome for the docket.
func (w *AuditWriter) WriteOutcomes(docket string, outcomes []Outcome) error {
	for _, o := range outcomes {
		record := []string{
			docket,
			o.Name,
			o.Address,
			o.Status,
			o.MatchedPartyName,
			o.PreviousAddress,
			o.StoredAddress,
		}
		if err := w.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write audit row: %w", err)
		}
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes and closes the underlying file.
func (w *AuditWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
