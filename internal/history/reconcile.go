// SPDX-License-Identifier: AGPL-3.0-or-later

package history

// Point is one commit position in a reconciled series. Value and Unit are
// meaningful only when Present is true.
type Point struct {
	Commit  string  `json:"commit"`
	Value   float64 `json:"value,omitempty"`
	Unit    string  `json:"unit,omitempty"`
	Present bool    `json:"present"`
}

// Series is a benchmark's history aligned to the full commit timeline.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`

	// Orphans counts stored records whose commit is not in the timeline.
	Orphans int `json:"orphans"`
}

// Present returns the points that carry a measurement, oldest first.
func (s *Series) Present() []Point {
	out := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Present {
			out = append(out, p)
		}
	}
	return out
}

// Reconcile aligns records with commits, which must be ordered oldest to
// newest. Every commit gets exactly one point; commits without a record are
// absent rather than zero. When a commit has several records the last
// appended one is used.
func Reconcile(name string, records []Record, commits []string) *Series {
	inTimeline := make(map[string]struct{}, len(commits))
	for _, c := range commits {
		inTimeline[c] = struct{}{}
	}

	s := &Series{Name: name, Points: make([]Point, len(commits))}
	latest := make(map[string]Record, len(records))
	for _, r := range records {
		if _, ok := inTimeline[r.Commit]; !ok {
			s.Orphans++
			continue
		}
		latest[r.Commit] = r
	}

	for i, c := range commits {
		r, ok := latest[c]
		if !ok {
			s.Points[i] = Point{Commit: c}
			continue
		}
		s.Points[i] = Point{Commit: c, Value: r.Value, Unit: r.Unit, Present: true}
	}
	return s
}
