// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile_Gaps(t *testing.T) {
	records := []Record{
		{Commit: "c1", Value: 10, Unit: "ns"},
		{Commit: "c3", Value: 30, Unit: "ns"},
	}

	s := Reconcile("BM_Foo", records, []string{"c1", "c2", "c3"})

	assert.Equal(t, []Point{
		{Commit: "c1", Value: 10, Unit: "ns", Present: true},
		{Commit: "c2"},
		{Commit: "c3", Value: 30, Unit: "ns", Present: true},
	}, s.Points)
	assert.False(t, s.Points[1].Present)
	assert.Zero(t, s.Orphans)
}

func TestReconcile_LastAppendedWins(t *testing.T) {
	records := []Record{
		{Commit: "c1", Value: 10, Unit: "ns"},
		{Commit: "c2", Value: 20, Unit: "ns"},
		{Commit: "c1", Value: 11, Unit: "ns"},
	}

	s := Reconcile("BM_Foo", records, []string{"c1", "c2"})

	assert.Equal(t, 11.0, s.Points[0].Value)
	assert.Equal(t, 20.0, s.Points[1].Value)
}

func TestReconcile_LengthMatchesTimeline(t *testing.T) {
	commits := []string{"c1", "c2", "c3", "c4", "c5"}

	s := Reconcile("BM_Foo", nil, commits)

	assert.Len(t, s.Points, len(commits))
	assert.Empty(t, s.Present())
}

func TestReconcile_Orphans(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    int
	}{
		{
			name:    "none",
			records: []Record{{Commit: "c1", Value: 1, Unit: "ns"}, {Commit: "c1", Value: 2, Unit: "ns"}},
			want:    0,
		},
		{
			name:    "single",
			records: []Record{{Commit: "gone", Value: 1, Unit: "ns"}, {Commit: "c2", Value: 2, Unit: "ns"}},
			want:    1,
		},
		{
			name: "every stored record counted",
			records: []Record{
				{Commit: "gone", Value: 1, Unit: "ns"},
				{Commit: "gone", Value: 2, Unit: "ns"},
				{Commit: "c2", Value: 2, Unit: "ns"},
				{Commit: "lost", Value: 3, Unit: "ns"},
			},
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Reconcile("BM_Foo", tt.records, []string{"c1", "c2"})
			assert.Equal(t, tt.want, s.Orphans)
			assert.Len(t, s.Points, 2)
			for _, p := range s.Present() {
				assert.NotEqual(t, "gone", p.Commit)
				assert.NotEqual(t, "lost", p.Commit)
			}
		})
	}
}
