package segment

import (
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Decision is the outcome of the rule cascade for one view.
type Decision int

const (
	// DecideNone means the rule was not decisive.
	DecideNone Decision = iota
	// DecideDivide recurses into the view's children.
	DecideDivide
	// DecideStop pools the view as an indivisible unit.
	DecideStop
	// DecideSkip discards the view and its subtree silently.
	DecideSkip
)

const (
	// screenAreaFraction is the view-to-screen area ratio below which a
	// view is too small to divide further.
	screenAreaFraction = 0.05
	// segmentAreaFraction is the view-to-segment area ratio used by the
	// relative smallness rules.
	segmentAreaFraction = 0.3
	// homogeneousMinCount is the child count from which a homogeneous
	// layout stops division.
	homogeneousMinCount = 4
	// homogeneousMaxOutliers is how many children may deviate from the
	// dominant signature.
	homogeneousMaxOutliers = 2
)

// ruleContext carries the per-segment state a rule may consult.
type ruleContext struct {
	seg    *Segment
	screen core.Bounds
	// earlierSiblingDivided is true when a previously visited sibling of
	// the current view was itself divided.
	earlierSiblingDivided bool
}

type rule struct {
	name string
	eval func(rc *ruleContext, v *ui.View) Decision
}

// rules is the ordered cascade. Priority is list order; the first
// decisive rule wins. The trailing default guarantees totality.
var rules = []rule{
	{"skip-system-bars", ruleSkipSystemBars},
	{"skip-invisible-degenerate", ruleSkipInvisibleDegenerate},
	{"skip-uninformative-leaf", ruleSkipUninformativeLeaf},
	{"stop-highly-informative-leaf", ruleStopHighlyInformativeLeaf},
	{"stop-important-or-text-leaf", ruleStopImportantOrTextLeaf},
	{"skip-leaf", ruleSkipLeaf},
	{"skip-no-valid-child", ruleSkipNoValidChild},
	{"divide-sole-valid-child", ruleDivideSoleValidChild},
	{"stop-homogeneous-children", ruleStopHomogeneousChildren},
	{"divide-sole-root", ruleDivideSoleRoot},
	{"stop-small-on-screen", ruleStopSmallOnScreen},
	{"divide-children-overflow", ruleDivideChildrenOverflow},
	{"divide-child-background", ruleDivideChildBackground},
	{"stop-small-with-text-child", ruleStopSmallWithTextChild},
	{"stop-largest-child-small", ruleStopLargestChildSmall},
	{"stop-no-divided-sibling", ruleStopNoDividedSibling},
	{"stop-default", ruleStopDefault},
}

// decide runs the cascade. The cascade is total; DecideNone here is an
// unreachable-state defect.
func decide(rc *ruleContext, v *ui.View) (Decision, error) {
	for _, r := range rules {
		if d := r.eval(rc, v); d != DecideNone {
			return d, nil
		}
	}
	return DecideNone, core.ErrRuleUndecided.WithDetails(map[string]interface{}{
		"class": v.Class,
		"text":  v.Text,
	})
}

func ruleSkipSystemBars(_ *ruleContext, v *ui.View) Decision {
	entry := v.ResourceEntry()
	if entry == "statusBarBackground" || entry == "navigationBarBackground" {
		return DecideSkip
	}
	if strings.Contains(v.Class, "StatusBar") || strings.Contains(v.Class, "NavigationBar") {
		return DecideSkip
	}
	return DecideNone
}

func ruleSkipInvisibleDegenerate(_ *ruleContext, v *ui.View) Decision {
	if !v.Visible || v.Degenerate() {
		return DecideSkip
	}
	return DecideNone
}

func ruleSkipUninformativeLeaf(_ *ruleContext, v *ui.View) Decision {
	if v.IsLeaf() && !v.Informative() {
		return DecideSkip
	}
	return DecideNone
}

func ruleStopHighlyInformativeLeaf(_ *ruleContext, v *ui.View) Decision {
	if v.IsLeaf() && v.HighlyInformative() {
		return DecideStop
	}
	return DecideNone
}

func ruleStopImportantOrTextLeaf(_ *ruleContext, v *ui.View) Decision {
	if v.IsLeaf() && (v.AccessibilityImportant || v.Textual()) {
		return DecideStop
	}
	return DecideNone
}

func ruleSkipLeaf(_ *ruleContext, v *ui.View) Decision {
	if v.IsLeaf() {
		return DecideSkip
	}
	return DecideNone
}

// validChild filters children worth considering for structure decisions.
func validChildren(v *ui.View) []*ui.View {
	var out []*ui.View
	for _, c := range v.Children {
		if c.Visible && !c.Degenerate() {
			out = append(out, c)
		}
	}
	return out
}

func ruleSkipNoValidChild(_ *ruleContext, v *ui.View) Decision {
	if !v.Textual() && len(validChildren(v)) == 0 {
		return DecideSkip
	}
	return DecideNone
}

func ruleDivideSoleValidChild(_ *ruleContext, v *ui.View) Decision {
	vc := validChildren(v)
	if len(vc) == 1 && !vc[0].Textual() {
		return DecideDivide
	}
	return DecideNone
}

// signature summarizes a view's class and informativeness down to the
// given depth, for layout homogeneity comparison.
func signature(v *ui.View, depth int) string {
	var b strings.Builder
	b.WriteString(v.Class)
	if v.Informative() {
		b.WriteByte('+')
	} else {
		b.WriteByte('-')
	}
	if depth > 0 {
		b.WriteByte('(')
		for _, c := range v.Children {
			b.WriteString(signature(c, depth-1))
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
	return b.String()
}

func ruleStopHomogeneousChildren(_ *ruleContext, v *ui.View) Decision {
	vc := validChildren(v)
	if len(vc) < homogeneousMinCount {
		return DecideNone
	}
	counts := map[string]int{}
	for _, c := range vc {
		counts[signature(c, 2)]++
	}
	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}
	if best >= homogeneousMinCount && len(vc)-best <= homogeneousMaxOutliers {
		return DecideStop
	}
	return DecideNone
}

func ruleDivideSoleRoot(rc *ruleContext, v *ui.View) Decision {
	if len(rc.seg.Roots) == 1 && rc.seg.Roots[0] == v {
		return DecideDivide
	}
	return DecideNone
}

func ruleStopSmallOnScreen(rc *ruleContext, v *ui.View) Decision {
	screenArea := rc.screen.Area()
	if screenArea > 0 && float64(v.Bounds.Area()) < float64(screenArea)*screenAreaFraction {
		return DecideStop
	}
	return DecideNone
}

func ruleDivideChildrenOverflow(_ *ruleContext, v *ui.View) Decision {
	sum := 0
	for _, c := range validChildren(v) {
		sum += c.Bounds.Area()
	}
	if sum > v.Bounds.Area() {
		return DecideDivide
	}
	return DecideNone
}

func ruleDivideChildBackground(_ *ruleContext, v *ui.View) Decision {
	for _, c := range validChildren(v) {
		if c.Background.Inherited() {
			continue
		}
		if c.Background != v.Background {
			return DecideDivide
		}
	}
	return DecideNone
}

func ruleStopSmallWithTextChild(rc *ruleContext, v *ui.View) Decision {
	segArea := rc.seg.Bounds.Area()
	if segArea == 0 || float64(v.Bounds.Area()) >= float64(segArea)*segmentAreaFraction {
		return DecideNone
	}
	for _, c := range validChildren(v) {
		if c.Textual() {
			return DecideStop
		}
	}
	return DecideNone
}

func ruleStopLargestChildSmall(rc *ruleContext, v *ui.View) Decision {
	segArea := rc.seg.Bounds.Area()
	if segArea == 0 {
		return DecideNone
	}
	largest := 0
	for _, c := range validChildren(v) {
		if a := c.Bounds.Area(); a > largest {
			largest = a
		}
	}
	if float64(largest) < float64(segArea)*segmentAreaFraction {
		return DecideStop
	}
	return DecideNone
}

func ruleStopNoDividedSibling(rc *ruleContext, _ *ui.View) Decision {
	if !rc.earlierSiblingDivided {
		return DecideStop
	}
	return DecideNone
}

func ruleStopDefault(_ *ruleContext, _ *ui.View) Decision {
	return DecideStop
}
