// Package selector finds, on the playee device, the view that best
// corresponds to a recordee view. Strategies cascade in strict priority;
// the first success wins and a total miss is a soft nil, not an error.
package selector

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/logger"
	"github.com/devicelab-dev/replaykit/pkg/textvec"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Query carries the identity fields of the view being looked up.
type Query struct {
	Text        string
	Description string
	ResourceID  string
}

// FromView derives a query from a recordee view.
func FromView(v *ui.View) Query {
	return Query{Text: v.Text, Description: v.Description, ResourceID: v.ResourceID}
}

// ResourceEntry returns the entry part of the query's resource id.
func (q Query) ResourceEntry() string {
	if i := strings.LastIndexByte(q.ResourceID, '/'); i >= 0 {
		return q.ResourceID[i+1:]
	}
	return q.ResourceID
}

// Empty reports whether the query has no identity at all.
func (q Query) Empty() bool {
	return q.Text == "" && q.Description == "" && q.ResourceID == ""
}

// Selector resolves queries against a device.
type Selector struct {
	dev core.Device
}

// New creates a Selector over the given device transport.
func New(dev core.Device) *Selector {
	return &Selector{dev: dev}
}

type strategy struct {
	name string
	run  func(ctx context.Context, s *Selector, q Query, visibleOnly bool) (*core.Descriptor, error)
}

// strategies is the fixed priority order of the cascade.
var strategies = []strategy{
	{"text-and-property", selectByTextAndProperty},
	{"text-only", selectByText},
	{"description-strict", selectByDescriptionStrict},
	{"resource-entry", selectByResourceEntry},
	{"description-loose", selectByDescriptionLoose},
}

// Select runs the cascade. A view without any identity is a contract
// violation; finding nothing is a soft miss returning (nil, nil).
func (s *Selector) Select(ctx context.Context, q Query, visibleOnly bool) (*core.Descriptor, error) {
	if q.Empty() {
		return nil, core.ErrViewWithoutIdentity
	}
	for _, st := range strategies {
		d, err := st.run(ctx, s, q, visibleOnly)
		if err != nil {
			return nil, err
		}
		if d != nil {
			logger.Debug("selector: %q resolved by %s", q.Text+q.Description+q.ResourceID, st.name)
			return d, nil
		}
	}
	return nil, nil
}

func textEqual(a, b string) bool {
	return a == b || strings.EqualFold(a, b)
}

// selectByTextAndProperty combines the text with another identity field,
// accepting an exact or case-insensitive text match.
func selectByTextAndProperty(ctx context.Context, s *Selector, q Query, visibleOnly bool) (*core.Descriptor, error) {
	if q.Text == "" || (q.ResourceID == "" && q.Description == "") {
		return nil, nil
	}
	cands, err := s.dev.Select(ctx, core.Criteria{
		Text:        q.Text,
		ResourceID:  q.ResourceID,
		Description: q.Description,
		VisibleOnly: visibleOnly,
	})
	if err != nil {
		return nil, err
	}
	for i := range cands {
		if textEqual(cands[i].Text, q.Text) {
			return &cands[i], nil
		}
	}
	return nil, nil
}

// selectByText queries on text alone, disambiguating multiple hits by
// bag-of-words similarity over text plus resource entry.
func selectByText(ctx context.Context, s *Selector, q Query, visibleOnly bool) (*core.Descriptor, error) {
	if q.Text == "" {
		return nil, nil
	}
	cands, err := s.dev.Select(ctx, core.Criteria{Text: q.Text, VisibleOnly: visibleOnly})
	if err != nil {
		return nil, err
	}
	var exact []*core.Descriptor
	for i := range cands {
		if textEqual(cands[i].Text, q.Text) {
			exact = append(exact, &cands[i])
		}
	}
	switch len(exact) {
	case 0:
		return nil, nil
	case 1:
		return exact[0], nil
	}
	want := q.Text + " " + q.ResourceEntry()
	var top *core.Descriptor
	topSim := -1.0
	for _, d := range exact {
		sim := textvec.Similarity(want, d.Text+" "+d.ResourceEntry())
		if sim > topSim {
			top, topSim = d, sim
		}
	}
	return top, nil
}

// selectByDescriptionStrict accepts only an exact description match.
func selectByDescriptionStrict(ctx context.Context, s *Selector, q Query, visibleOnly bool) (*core.Descriptor, error) {
	if q.Description == "" {
		return nil, nil
	}
	cands, err := s.dev.Select(ctx, core.Criteria{Description: q.Description, Exact: true, VisibleOnly: visibleOnly})
	if err != nil {
		return nil, err
	}
	for i := range cands {
		if cands[i].Description == q.Description {
			return &cands[i], nil
		}
	}
	return nil, nil
}

// selectByResourceEntry queries on the resource entry, preferring in
// order: same entry, same description, description containment, and
// bag-of-words similarity on the description.
func selectByResourceEntry(ctx context.Context, s *Selector, q Query, visibleOnly bool) (*core.Descriptor, error) {
	entry := q.ResourceEntry()
	if entry == "" {
		return nil, nil
	}
	cands, err := s.dev.Select(ctx, core.Criteria{ResourceID: entry, VisibleOnly: visibleOnly})
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	var sameEntry []*core.Descriptor
	for i := range cands {
		if cands[i].ResourceEntry() == entry {
			sameEntry = append(sameEntry, &cands[i])
		}
	}
	if len(sameEntry) == 1 {
		return sameEntry[0], nil
	}
	if len(sameEntry) == 0 {
		sameEntry = make([]*core.Descriptor, 0, len(cands))
		for i := range cands {
			sameEntry = append(sameEntry, &cands[i])
		}
	}
	if q.Description != "" {
		for _, d := range sameEntry {
			if d.Description == q.Description {
				return d, nil
			}
		}
		for _, d := range sameEntry {
			if strings.Contains(d.Description, q.Description) {
				return d, nil
			}
		}
		var top *core.Descriptor
		topSim := 0.0
		for _, d := range sameEntry {
			sim := textvec.Similarity(q.Description, d.Description)
			if sim > topSim {
				top, topSim = d, sim
			}
		}
		if top != nil {
			return top, nil
		}
	}
	return sameEntry[0], nil
}

// selectByDescriptionLoose scores a non-strict description query: a
// single-word query prefers a candidate whose description contains it as
// a whole word, otherwise the shortest matching description wins.
func selectByDescriptionLoose(ctx context.Context, s *Selector, q Query, visibleOnly bool) (*core.Descriptor, error) {
	if q.Description == "" {
		return nil, nil
	}
	cands, err := s.dev.Select(ctx, core.Criteria{Description: q.Description, VisibleOnly: visibleOnly})
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	if !strings.ContainsRune(strings.TrimSpace(q.Description), ' ') {
		for i := range cands {
			for _, word := range strings.Fields(cands[i].Description) {
				if textEqual(word, q.Description) {
					return &cands[i], nil
				}
			}
		}
	}

	var top *core.Descriptor
	for i := range cands {
		if !strings.Contains(strings.ToLower(cands[i].Description), strings.ToLower(q.Description)) {
			continue
		}
		if top == nil || len(cands[i].Description) < len(top.Description) {
			top = &cands[i]
		}
	}
	return top, nil
}
