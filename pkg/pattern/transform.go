package pattern

import (
	"context"
	"strings"
)

// backSynonyms are the descriptions toolkits put on the up/back affordance.
var backSynonyms = []string{
	"Back",
	"Navigate up",
	"Navigate back",
	"Go back",
	"Up",
}

// NavigationUp translates a tap on the software back/up affordance into
// a hardware back press, which works regardless of where the playee
// renders the affordance.
type NavigationUp struct {
	base
}

func (p *NavigationUp) Name() string { return "NavigationUp" }

func (p *NavigationUp) Match(ctx context.Context, c *Context) (bool, error) {
	desc := strings.TrimSpace(c.View.Description)
	for _, syn := range backSynonyms {
		if strings.EqualFold(desc, syn) {
			p.ok()
			return true, nil
		}
	}
	return false, nil
}

func (p *NavigationUp) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	if err := c.Playee.Device.PressBack(ctx); err != nil {
		return NotConsumed, err
	}
	return Consumed, nil
}
