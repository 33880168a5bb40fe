package segment

import (
	"math"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/interval"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Separator scoring constants. The acceptance threshold is the base plus
// the two smallest individual awards.
const (
	scoreBase = 100

	sizeAwardCap    = 120.0
	sizeAwardPixels = 30.0

	awardClassDiff  = 10
	awardCountDiff  = 50
	awardScrollDiff = 80

	awardBackgroundBoth  = 500
	awardBackgroundClass = 200
	awardBackgroundColor = 250

	awardTextAsymmetry        = 250
	awardInformativeAsymmetry = 50

	acceptThreshold = scoreBase + awardClassDiff + awardCountDiff
)

// pool runs the rule cascade over the segment's roots and returns the
// views pooled as indivisible units.
func (t *Tree) pool(id ID, screen core.Bounds) ([]*ui.View, error) {
	seg := t.Get(id)
	rc := &ruleContext{seg: seg, screen: screen}

	var pooled []*ui.View
	var walk func(v *ui.View, rc *ruleContext) (bool, error)
	walk = func(v *ui.View, rc *ruleContext) (bool, error) {
		d, err := decide(rc, v)
		if err != nil {
			return false, err
		}
		switch d {
		case DecideSkip:
			return false, nil
		case DecideStop:
			pooled = append(pooled, v)
			return false, nil
		case DecideDivide:
			childCtx := &ruleContext{seg: seg, screen: screen}
			for _, c := range v.Children {
				divided, err := walk(c, childCtx)
				if err != nil {
					return false, err
				}
				if divided {
					childCtx.earlierSiblingDivided = true
				}
			}
			return true, nil
		}
		return false, core.ErrRuleUndecided
	}

	for _, r := range seg.Roots {
		if _, err := walk(r, rc); err != nil {
			return nil, err
		}
	}
	return pooled, nil
}

// discover finds every candidate separator of the segment given its pool.
// Elevated separators come from drawing-level overlap; horizontal and
// vertical separators are the interior gaps left after removing all pooled
// view projections from the segment's span.
func (t *Tree) discover(id ID, pooled []*ui.View) (elevated, splits []*Separator, err error) {
	seg := t.Get(id)
	if len(pooled) == 0 {
		return nil, nil, nil
	}

	// The segment's own rectangle goes in as a sentinel so queries always
	// see the enclosing region.
	xy := interval.NewXYTree[*ui.View]()
	xy.Insert(seg.Bounds, nil)
	for _, v := range pooled {
		xy.Insert(v.Bounds, v)
	}

	elevated = discoverElevated(xy, pooled)

	splits, err = t.discoverGaps(seg, pooled)
	if err != nil {
		return nil, nil, err
	}
	return elevated, splits, nil
}

// discoverElevated groups the pool by drawing level and emits one
// separator per level whose views overlap views of other levels.
func discoverElevated(xy *interval.XYTree[*ui.View], pooled []*ui.View) []*Separator {
	levels := map[int][]*ui.View{}
	var order []int
	for _, v := range pooled {
		l := v.DrawingLevel()
		if _, ok := levels[l]; !ok {
			order = append(order, l)
		}
		levels[l] = append(levels[l], v)
	}
	if len(levels) < 2 {
		return nil
	}

	base := order[0]
	for _, l := range order[1:] {
		if l < base {
			base = l
		}
	}

	var out []*Separator
	for _, l := range order {
		if l == base {
			continue
		}
		var side []*ui.View
		for _, v := range levels[l] {
			for _, hit := range xy.Query(v.Bounds) {
				if hit != nil && hit != v && hit.DrawingLevel() != l {
					side = append(side, v)
					break
				}
			}
		}
		if len(side) == 0 {
			continue
		}
		inSide := map[*ui.View]bool{}
		for _, v := range side {
			inSide[v] = true
		}
		var rest []*ui.View
		for _, v := range pooled {
			if !inSide[v] {
				rest = append(rest, v)
			}
		}
		if len(rest) == 0 {
			continue
		}
		sep := &Separator{
			Kind:      KindSplit,
			Direction: DirE,
			SideA:     side,
			SideB:     rest,
		}
		sep.Score = scoreElevated(len(side), len(rest))
		out = append(out, sep)
	}
	return out
}

// scoreElevated scores an elevated separator from the side cardinalities.
func scoreElevated(a, b int) int {
	s := float64(scoreBase)
	s += math.Min(float64(a+b)/15.0, 1.0) * 100
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	s += math.Min(float64(diff)/5.0, 1.0) * 100
	return int(math.Round(s))
}

// discoverGaps removes every pooled view's projection from the segment
// span on each axis; the interior leftovers are separator candidates.
// Horizontal separators (y-axis gaps) come first, then vertical ones.
func (t *Tree) discoverGaps(seg *Segment, pooled []*ui.View) ([]*Separator, error) {
	xSpan := interval.Interval{Low: seg.Bounds.X, High: seg.Bounds.Right()}
	ySpan := interval.Interval{Low: seg.Bounds.Y, High: seg.Bounds.Bottom()}

	xRest := interval.NewSet(xSpan)
	yRest := interval.NewSet(ySpan)
	for _, v := range pooled {
		xRest.Remove(interval.Interval{Low: v.Bounds.X, High: v.Bounds.Right()})
		yRest.Remove(interval.Interval{Low: v.Bounds.Y, High: v.Bounds.Bottom()})
	}

	var out []*Separator
	for _, gap := range yRest.Items() {
		if gap.Low == ySpan.Low || gap.High == ySpan.High {
			continue // boundary-touching gap, not a divider
		}
		sep, err := buildSplit(seg, pooled, gap, DirH)
		if err != nil {
			return nil, err
		}
		if sep != nil {
			out = append(out, sep)
		}
	}
	for _, gap := range xRest.Items() {
		if gap.Low == xSpan.Low || gap.High == xSpan.High {
			continue
		}
		sep, err := buildSplit(seg, pooled, gap, DirV)
		if err != nil {
			return nil, err
		}
		if sep != nil {
			out = append(out, sep)
		}
	}
	return out, nil
}

// buildSplit partitions the pool around a gap and scores the separator.
// Every pooled view must land on one side; a straddler would contradict
// the gap having come from the projection complement.
func buildSplit(seg *Segment, pooled []*ui.View, gap interval.Interval, dir Direction) (*Separator, error) {
	var sideA, sideB []*ui.View
	for _, v := range pooled {
		var low, high int
		if dir == DirH {
			low, high = v.Bounds.Y, v.Bounds.Bottom()
		} else {
			low, high = v.Bounds.X, v.Bounds.Right()
		}
		switch {
		case high <= gap.Low:
			sideA = append(sideA, v)
		case low >= gap.High:
			sideB = append(sideB, v)
		default:
			return nil, core.ErrSeparatorNeighbors.WithDetails(map[string]interface{}{
				"direction": dir.String(),
				"gap":       gap,
				"class":     v.Class,
			})
		}
	}
	if len(sideA) == 0 || len(sideB) == 0 {
		return nil, nil
	}

	sep := &Separator{
		Kind:      KindSplit,
		Direction: dir,
		SideA:     sideA,
		SideB:     sideB,
	}
	if dir == DirH {
		sep.XSpan = interval.Interval{Low: seg.Bounds.X, High: seg.Bounds.Right()}
		sep.YSpan = gap
	} else {
		sep.XSpan = gap
		sep.YSpan = interval.Interval{Low: seg.Bounds.Y, High: seg.Bounds.Bottom()}
	}
	sep.Score = scoreSplit(gap, sideA, sideB)
	return sep, nil
}

// scoreSplit scores a horizontal or vertical separator: a size award plus
// a count-asymmetry award plus pairwise diversity awards across the gap.
func scoreSplit(gap interval.Interval, sideA, sideB []*ui.View) int {
	s := float64(scoreBase)
	s += math.Min(float64(gap.Width())/sizeAwardPixels*100, sizeAwardCap)
	if len(sideA) != len(sideB) {
		s += awardCountDiff
	}
	for _, a := range sideA {
		for _, b := range sideB {
			s += float64(pairAward(a, b))
		}
	}
	return int(math.Round(s))
}

// pairAward sums the diversity awards for one cross-side view pair.
func pairAward(a, b *ui.View) int {
	award := 0
	if a.Class != b.Class {
		award += awardClassDiff
	}
	if a.ScrollableAncestor(true) != b.ScrollableAncestor(true) {
		award += awardScrollDiff
	}
	if a.ScrollableAncestor(false) != b.ScrollableAncestor(false) {
		award += awardScrollDiff
	}

	classDiff := a.Background.Class != b.Background.Class
	colorDiff := a.Background.Color != b.Background.Color
	switch {
	case classDiff && colorDiff:
		award += awardBackgroundBoth
	case classDiff:
		award += awardBackgroundClass
	case colorDiff:
		award += awardBackgroundColor
	}

	textDiff := a.Textual() != b.Textual()
	infoDiff := a.Informative() != b.Informative()
	switch {
	case textDiff && infoDiff:
		award += awardTextAsymmetry
	case infoDiff:
		award += awardInformativeAsymmetry
	}
	return award
}
