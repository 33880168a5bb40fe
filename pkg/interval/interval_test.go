package interval

import (
	"testing"
)

func TestInterval_Overlap(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Interval
		want    Interval
		overlap bool
	}{
		{
			name:    "plain overlap",
			a:       New(0, 10),
			b:       New(5, 15),
			want:    Interval{Low: 5, High: 10},
			overlap: true,
		},
		{
			name:    "containment",
			a:       New(0, 20),
			b:       New(5, 10),
			want:    Interval{Low: 5, High: 10},
			overlap: true,
		},
		{
			name:    "boundary touch is not overlap",
			a:       New(0, 10),
			b:       New(10, 20),
			overlap: false,
		},
		{
			name:    "disjoint",
			a:       New(0, 5),
			b:       New(7, 9),
			overlap: false,
		},
		{
			name:    "zero width never overlaps",
			a:       New(5, 5),
			b:       New(0, 10),
			overlap: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Overlap(tt.b)
			if ok != tt.overlap {
				t.Fatalf("overlap=%v, want %v", ok, tt.overlap)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInterval_CoverOf(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want Cover
	}{
		{"strict", New(0, 10), New(2, 8), CoverStrict},
		{"identical", New(0, 10), New(0, 10), CoverIdentical},
		{"same low", New(0, 10), New(0, 5), CoverSameLow},
		{"same high", New(0, 10), New(5, 10), CoverSameHigh},
		{"not covered", New(0, 10), New(5, 15), CoverNone},
		{"disjoint", New(0, 10), New(20, 30), CoverNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CoverOf(tt.b); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterval_CrossOf(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want Crossing
	}{
		{"straddles low", New(10, 20), New(5, 15), CrossLow},
		{"straddles high", New(10, 20), New(15, 25), CrossHigh},
		{"straddles both", New(10, 20), New(5, 25), CrossBoth},
		{"inside", New(10, 20), New(12, 18), CrossNone},
		{"disjoint", New(10, 20), New(0, 5), CrossNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CrossOf(tt.b); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterval_Merge(t *testing.T) {
	got := New(0, 5).Merge(New(10, 20))
	want := Interval{Low: 0, High: 20}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSet_Remove(t *testing.T) {
	tests := []struct {
		name   string
		start  []Interval
		remove []Interval
		want   []Interval
	}{
		{
			name:   "split in the middle",
			start:  []Interval{New(0, 100)},
			remove: []Interval{New(40, 60)},
			want:   []Interval{{0, 40}, {60, 100}},
		},
		{
			name:   "truncate low side",
			start:  []Interval{New(0, 100)},
			remove: []Interval{New(0, 30)},
			want:   []Interval{{30, 100}},
		},
		{
			name:   "truncate high side",
			start:  []Interval{New(0, 100)},
			remove: []Interval{New(70, 100)},
			want:   []Interval{{0, 70}},
		},
		{
			name:   "delete whole member",
			start:  []Interval{New(0, 50), New(60, 100)},
			remove: []Interval{New(0, 50)},
			want:   []Interval{{60, 100}},
		},
		{
			name:   "straddling removal truncates",
			start:  []Interval{New(0, 50)},
			remove: []Interval{New(40, 80)},
			want:   []Interval{{0, 40}},
		},
		{
			name:   "boundary touch does not split",
			start:  []Interval{New(0, 50)},
			remove: []Interval{New(50, 80)},
			want:   []Interval{{0, 50}},
		},
		{
			name:   "zero width removal is a no-op",
			start:  []Interval{New(0, 50)},
			remove: []Interval{New(25, 25)},
			want:   []Interval{{0, 50}},
		},
		{
			name:   "successive removals leave gaps",
			start:  []Interval{New(0, 100)},
			remove: []Interval{New(10, 20), New(30, 40), New(50, 60)},
			want:   []Interval{{0, 10}, {20, 30}, {40, 50}, {60, 100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet(tt.start...)
			for _, r := range tt.remove {
				s.Remove(r)
			}
			got := s.Items()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d intervals %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Removal invariant: remaining intervals never overlap each other.
func TestSet_RemoveDisjointInvariant(t *testing.T) {
	s := NewSet(New(0, 1000))
	removals := []Interval{New(100, 200), New(150, 250), New(400, 500), New(0, 50), New(950, 1000)}
	for _, r := range removals {
		s.Remove(r)
	}
	items := s.Items()
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if _, ok := items[i].Overlap(items[j]); ok {
				t.Fatalf("items %v and %v overlap", items[i], items[j])
			}
		}
	}
}
