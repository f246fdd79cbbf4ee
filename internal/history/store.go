// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists benchmark measurements as one append-only text
// log per benchmark and reconciles those logs against the commit timeline.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bartekus/benchtrack/internal/results"
)

// FileExt is the extension of history log files.
const FileExt = ".txt"

// ErrCorruptHistory is returned when a stored line cannot be decoded.
var ErrCorruptHistory = errors.New("corrupt history")

// Record is one stored measurement of a benchmark at a commit.
type Record struct {
	Commit string  `json:"commit"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

// WriteError reports a failed append for a single benchmark.
type WriteError struct {
	Benchmark string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("recording %s: %v", e.Benchmark, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store reads and appends benchmark histories under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first append.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the log file path for a benchmark name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, Stem(name)+FileExt)
}

// Append adds one record to the end of the named benchmark's log, creating
// the log if needed. The line is written with a single write and synced
// before close so earlier lines are never at risk.
func (s *Store) Append(name string, rec Record) (err error) {
	if err := validateRecord(rec); err != nil {
		return &WriteError{Benchmark: name, Err: err}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &WriteError{Benchmark: name, Err: fmt.Errorf("creating history directory: %w", err)}
	}

	f, err := os.OpenFile(s.Path(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &WriteError{Benchmark: name, Err: err}
	}
	defer func() {
		cerr := f.Close()
		if err == nil && cerr != nil {
			err = &WriteError{Benchmark: name, Err: cerr}
		}
	}()

	if _, err := f.Write([]byte(encodeLine(rec))); err != nil {
		return &WriteError{Benchmark: name, Err: err}
	}
	if err := f.Sync(); err != nil {
		return &WriteError{Benchmark: name, Err: err}
	}
	return nil
}

// AppendAll records every measurement against commit. A failure for one
// benchmark does not stop the others; all failures are returned.
func (s *Store) AppendAll(commit string, ms []results.Measurement) []*WriteError {
	var failed []*WriteError
	for _, m := range ms {
		err := s.Append(m.Name, Record{Commit: commit, Value: m.Value, Unit: m.Unit})
		if err == nil {
			continue
		}
		var we *WriteError
		if !errors.As(err, &we) {
			we = &WriteError{Benchmark: m.Name, Err: err}
		}
		failed = append(failed, we)
	}
	return failed
}

// ReadAll returns every record stored for name in append order. Duplicates
// are returned as stored.
func (s *Store) ReadAll(name string) ([]Record, error) {
	path := s.Path(name)
	f, err := os.Open(path) //nolint:gosec // path derived from escaped benchmark name
	if err != nil {
		return nil, fmt.Errorf("opening history for %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var out []Record
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := decodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrCorruptHistory, path, lineNo, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", name, err)
	}
	return out, nil
}

// ListKnownBenchmarks returns the sorted names of every benchmark with a
// history file, whether or not it ran in the current build. A missing
// directory yields an empty list.
func (s *Store) ListKnownBenchmarks() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing history directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || strings.HasPrefix(fname, ".") || !strings.HasSuffix(fname, FileExt) {
			continue
		}
		name, err := NameFromStem(strings.TrimSuffix(fname, FileExt))
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func encodeLine(rec Record) string {
	return rec.Commit + " " + strconv.FormatFloat(rec.Value, 'f', -1, 64) + " " + rec.Unit + "\n"
}

func decodeLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Record{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad value %q", fields[1])
	}
	return Record{Commit: fields[0], Value: v, Unit: fields[2]}, nil
}

func validateRecord(rec Record) error {
	switch {
	case rec.Commit == "" || strings.ContainsAny(rec.Commit, " \t\r\n"):
		return fmt.Errorf("invalid commit id %q", rec.Commit)
	case rec.Unit == "" || strings.ContainsAny(rec.Unit, " \t\r\n"):
		return fmt.Errorf("invalid unit %q", rec.Unit)
	case math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0):
		return fmt.Errorf("value %v is not finite", rec.Value)
	}
	return nil
}
