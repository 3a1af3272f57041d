// Package store reads and appends the per-day JSONL event logs.
//
// One file per calendar day, named by ISO date (2025-06-01.jsonl). The
// receiver owns appends; aggregation only reads. Files may be appended to
// concurrently, so a trailing line without a newline is treated as
// not-yet-flushed and skipped.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/event"
)

// DayFormat is the ISO date layout used for file names and summary dates.
const DayFormat = "2006-01-02"

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(day time.Time) string {
	return filepath.Join(s.dir, day.Format(DayFormat)+".jsonl")
}

// Load returns the day's records in file order. A missing file is not an
// error: it yields an empty slice. A malformed interior line fails the
// whole call.
func (s *Store) Load(day time.Time) ([]event.Record, error) {
	path := s.path(day)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("no data file for %s", day.Format(DayFormat))
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []event.Record
	r := bufio.NewReaderSize(f, 1024*1024)
	for {
		line, err := r.ReadBytes('\n')
		complete := err == nil
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if trimmed := strings.TrimSpace(string(line)); trimmed != "" {
			var rec event.Record
			if uerr := json.Unmarshal([]byte(trimmed), &rec); uerr != nil {
				if !complete {
					// Partial trailing line from a concurrent append.
					break
				}
				return nil, fmt.Errorf("parse %s: %w", path, uerr)
			}
			records = append(records, rec)
		}
		if !complete {
			break
		}
	}
	log.Printf("loaded %d records from %s", len(records), filepath.Base(path))
	return records, nil
}

// LoadRange concatenates Load for every calendar day in [start, end].
func (s *Store) LoadRange(start, end time.Time) ([]event.Record, error) {
	var all []event.Record
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		records, err := s.Load(d)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Append writes records as JSON lines to the current day's file. Each
// record is one complete line, written in a single call.
func (s *Store) Append(records []event.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	path := s.path(time.Now().UTC())
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if _, err := f.WriteString(buf.String()); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	log.Printf("wrote %d records to %s", len(records), filepath.Base(path))
	return nil
}

// Dates lists the days that have a data file, sorted ascending. File
// names that are not valid dates are skipped.
func (s *Store) Dates() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		stem := strings.TrimSuffix(name, ".jsonl")
		if _, err := time.Parse(DayFormat, stem); err != nil {
			continue
		}
		dates = append(dates, stem)
	}
	sort.Strings(dates)
	return dates, nil
}
