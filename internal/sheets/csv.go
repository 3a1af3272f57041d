package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/claude-usage/internal/stats"
)

// CSVStore keeps summary rows in a local CSV file, the same flat shape
// the rows take in an external spreadsheet.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Append(ctx context.Context, row stats.DailySummary) error {
	rows, err := s.readAll()
	if err != nil {
		return err
	}
	for _, existing := range rows {
		if len(existing) > 0 && existing[0] == row.Date {
			log.Printf("date %s already exists in %s, skipping", row.Date, filepath.Base(s.path))
			return nil
		}
	}

	_, statErr := os.Stat(s.path)
	create := errors.Is(statErr, os.ErrNotExist)
	if create {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create sheet dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if create {
		if err := w.Write(Headers); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(MarshalRow(row)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) ReadMonth(ctx context.Context, year, month int) (map[string]stats.DailySummary, error) {
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	prefix := monthPrefix(year, month)
	out := make(map[string]stats.DailySummary)
	for _, row := range rows {
		if len(row) == 0 || !strings.HasPrefix(row[0], prefix) {
			continue
		}
		summary, err := UnmarshalRow(row)
		if err != nil {
			log.Printf("skipping malformed row for %s: %v", row[0], err)
			continue
		}
		out[summary.Date] = summary
	}
	return out, nil
}

// readAll returns every data row (header excluded). A missing file is an
// empty store.
func (s *CSVStore) readAll() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(all) > 0 && len(all[0]) > 0 && all[0][0] == Headers[0] {
		all = all[1:]
	}
	return all, nil
}
