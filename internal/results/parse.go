// SPDX-License-Identifier: AGPL-3.0-or-later

// Package results turns raw benchmark executable output into named measurements.
package results

import (
	"bufio"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultPrefix is the name prefix google-benchmark style suites use.
const DefaultPrefix = "BM_"

// Measurement is a single parsed benchmark result.
type Measurement struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// SkippedLine describes a line that looked like a result but could not be parsed.
type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}

func (s SkippedLine) String() string {
	return fmt.Sprintf("line %d: %s: %q", s.Line, s.Reason, s.Text)
}

// Result is the outcome of parsing one run's output.
type Result struct {
	// ByName maps benchmark name to its measurement. When a name repeats,
	// the last occurrence wins.
	ByName map[string]Measurement

	// Skipped lists recognised lines that were malformed. They never
	// contribute a value.
	Skipped []SkippedLine

	// Duplicates lists names seen more than once, in the order the
	// repeat was observed.
	Duplicates []string
}

// Measurements returns the parsed measurements sorted by name.
func (r *Result) Measurements() []Measurement {
	names := make([]string, 0, len(r.ByName))
	for name := range r.ByName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Measurement, 0, len(names))
	for _, name := range names {
		out = append(out, r.ByName[name])
	}
	return out
}

// Parse scans raw output and extracts one measurement per line whose first
// whitespace-delimited token starts with prefix. The second and third tokens
// are the value and its unit; anything after them is ignored.
func Parse(raw string, prefix string) (*Result, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	res := &Result{ByName: make(map[string]Measurement)}

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || !strings.HasPrefix(fields[0], prefix) {
			continue
		}

		if len(fields) < 3 {
			res.Skipped = append(res.Skipped, SkippedLine{
				Line:   lineNo,
				Text:   sc.Text(),
				Reason: "missing value or unit",
			})
			continue
		}

		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			res.Skipped = append(res.Skipped, SkippedLine{
				Line:   lineNo,
				Text:   sc.Text(),
				Reason: "value is not a finite number",
			})
			continue
		}

		name := fields[0]
		if _, seen := res.ByName[name]; seen {
			res.Duplicates = append(res.Duplicates, name)
		}
		res.ByName[name] = Measurement{Name: name, Value: value, Unit: fields[2]}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning benchmark output: %w", err)
	}

	return res, nil
}
