// Package replay drives a recording against a playee device: each
// recorded event is resolved directly when possible and otherwise run
// through pattern synthesis.
package replay

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/event"
	"github.com/devicelab-dev/replaykit/pkg/logger"
	"github.com/devicelab-dev/replaykit/pkg/pattern"
	"github.com/devicelab-dev/replaykit/pkg/script"
	"github.com/devicelab-dev/replaykit/pkg/selector"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Options tune a replay run.
type Options struct {
	// OnError decides what an untranslatable event does: "skip" drops it
	// and continues, "abort" ends the run.
	OnError string

	// LookaheadDepth caps how many queued events lookahead scans.
	LookaheadDepth int

	// Hook optionally filters events before translation.
	Hook *script.Engine
}

// Result summarizes a finished run.
type Result struct {
	Total       int
	Direct      int // resolved by the selector alone
	Synthesized int // handled by a pattern
	Fallback    int // replayed at translated raw coordinates
	Skipped     int
}

// Replayer replays recordings on one playee device.
type Replayer struct {
	dev  core.Device
	sel  *selector.Selector
	opts Options
}

// New creates a replayer for the device.
func New(dev core.Device, opts Options) *Replayer {
	if opts.OnError == "" {
		opts.OnError = "skip"
	}
	return &Replayer{dev: dev, sel: selector.New(dev), opts: opts}
}

// Run replays the recording event by event. Contract and invariant
// errors abort the run immediately; unsupported events follow the
// configured policy; transport errors always abort.
func (r *Replayer) Run(ctx context.Context, rec *event.Recording) (*Result, error) {
	playeeInfo, err := r.dev.Info(ctx)
	if err != nil {
		return nil, err
	}
	recordeeInfo := &core.DeviceInfo{
		Serial:       rec.Device.Serial,
		Model:        rec.Device.Model,
		ScreenWidth:  rec.Device.ScreenWidth,
		ScreenHeight: rec.Device.ScreenHeight,
	}

	queue := event.NewQueue(rec.Events)
	res := &Result{}

	for queue.Len() > 0 {
		ev := queue.Pop()
		res.Total++

		if r.opts.Hook != nil {
			action, err := r.opts.Hook.OnEvent(ev)
			if err != nil {
				return res, err
			}
			if action == script.ActionSkip {
				logger.Info("event %d: skipped by hook", res.Total)
				res.Skipped++
				continue
			}
		}

		err := r.replayOne(ctx, ev, queue, recordeeInfo, playeeInfo, res)
		if err == nil {
			continue
		}

		switch core.CategoryOf(err) {
		case core.ErrCategoryUnsupported:
			logger.Warn("event %d (%s %s): not translatable: %v",
				res.Total, ev.Kind, describeTarget(ev), err)
			if r.opts.OnError == "abort" {
				return res, err
			}
			res.Skipped++
		default:
			// Contract violations, invariant failures, and transport
			// errors end the run with full event context.
			logger.Error("event %d (%s %s): %v", res.Total, ev.Kind, describeTarget(ev), err)
			return res, err
		}
	}

	logger.Info("replay finished: %d events, %d direct, %d synthesized, %d fallback, %d skipped",
		res.Total, res.Direct, res.Synthesized, res.Fallback, res.Skipped)
	return res, nil
}

// replayOne translates and executes a single event.
func (r *Replayer) replayOne(ctx context.Context, ev *event.Event, queue *event.Queue,
	recordeeInfo, playeeInfo *core.DeviceInfo, res *Result) error {

	// Events carrying no UI context replay as translated raw gestures.
	if ev.Kind == event.KindKey {
		if err := r.pressKey(ctx, ev); err != nil {
			return err
		}
		res.Fallback++
		return nil
	}
	if ev.Source == "" {
		if err := r.performRaw(ctx, ev, recordeeInfo, playeeInfo); err != nil {
			return err
		}
		res.Fallback++
		return nil
	}

	recordeeUI, err := ui.Parse(ev.Source)
	if err != nil {
		return core.ErrTransport.WithMessage("recorded page source unparsable").WithCause(err)
	}
	view := findRecordedView(recordeeUI, ev)
	if view == nil {
		if err := r.performRaw(ctx, ev, recordeeInfo, playeeInfo); err != nil {
			return err
		}
		res.Fallback++
		return nil
	}

	// Direct attempt first: most events resolve without any pattern.
	if view.HasIdentity() {
		d, err := r.sel.Select(ctx, selector.FromView(view), true)
		if err != nil {
			return err
		}
		if d != nil {
			if err := r.performAt(ctx, ev, d.Bounds, recordeeInfo, playeeInfo); err != nil {
				return err
			}
			res.Direct++
			return nil
		}
	}

	playeeSource, err := r.dev.PageSource(ctx)
	if err != nil {
		return err
	}
	playeeUI, err := ui.Parse(playeeSource)
	if err != nil {
		return core.ErrTransport.WithMessage("playee page source unparsable").WithCause(err)
	}

	pctx := &pattern.Context{
		Event:          ev,
		View:           view,
		Queue:          queue,
		Recordee:       pattern.Side{UI: recordeeUI, Info: recordeeInfo},
		Playee:         pattern.Side{Device: r.dev, Info: playeeInfo, UI: playeeUI},
		Sel:            r.sel,
		LookaheadDepth: r.opts.LookaheadDepth,
	}

	patterns, err := pattern.Synthesize(ctx, pctx)
	if err != nil {
		return err
	}

	for _, p := range patterns {
		outcome, err := p.Apply(ctx, pctx)
		if err != nil {
			return err
		}
		logger.Debug("pattern %s applied: %s", p.Name(), outcome)
		if outcome == pattern.Consumed {
			res.Synthesized++
			return nil
		}
	}

	// Nothing consumed the event: corrective patterns may have changed
	// the playee state, so retry the direct resolution once.
	if view.HasIdentity() {
		d, err := r.sel.Select(ctx, selector.FromView(view), true)
		if err != nil {
			return err
		}
		if d != nil {
			if err := r.performAt(ctx, ev, d.Bounds, recordeeInfo, playeeInfo); err != nil {
				return err
			}
			res.Synthesized++
			return nil
		}
	}
	if err := r.performRaw(ctx, ev, recordeeInfo, playeeInfo); err != nil {
		return err
	}
	res.Fallback++
	return nil
}

// findRecordedView locates the event's view in the recordee hierarchy,
// by identity first, then by gesture coordinates.
func findRecordedView(t *ui.Tree, ev *event.Event) *ui.View {
	if !ev.Target.Empty() {
		v := t.Root.FindFirst(func(v *ui.View) bool {
			if ev.Target.Text != "" && !strings.EqualFold(v.Text, ev.Target.Text) {
				return false
			}
			if ev.Target.Description != "" && v.Description != ev.Target.Description {
				return false
			}
			if ev.Target.ResourceID != "" && v.ResourceID != ev.Target.ResourceID {
				return false
			}
			if ev.Target.Class != "" && v.Class != ev.Target.Class {
				return false
			}
			return true
		})
		if v != nil {
			return v
		}
	}
	if ev.X != 0 || ev.Y != 0 {
		return t.ViewAt(ev.X, ev.Y)
	}
	return nil
}

// scale maps a recordee coordinate into playee pixels per axis.
func scale(v, from, to int) int {
	if from == 0 {
		return v
	}
	return v * to / from
}

// performRaw replays the gesture at screen-ratio translated coordinates.
func (r *Replayer) performRaw(ctx context.Context, ev *event.Event, rec, play *core.DeviceInfo) error {
	x := scale(ev.X, rec.ScreenWidth, play.ScreenWidth)
	y := scale(ev.Y, rec.ScreenHeight, play.ScreenHeight)
	switch ev.Kind {
	case event.KindDoubleTap:
		return r.dev.DoubleTap(ctx, x, y)
	case event.KindLongTap:
		return r.dev.LongTap(ctx, x, y)
	case event.KindSwipe:
		dx := scale(ev.DX, rec.ScreenWidth, play.ScreenWidth)
		dy := scale(ev.DY, rec.ScreenHeight, play.ScreenHeight)
		return r.dev.Swipe(ctx, x, y, dx, dy, ev.DurationMs)
	case event.KindText:
		if x != 0 || y != 0 {
			if err := r.dev.Tap(ctx, x, y); err != nil {
				return err
			}
		}
		return r.dev.InputText(ctx, ev.Input)
	default:
		return r.dev.Tap(ctx, x, y)
	}
}

// performAt replays the gesture against resolved playee bounds.
func (r *Replayer) performAt(ctx context.Context, ev *event.Event, b core.Bounds, rec, play *core.DeviceInfo) error {
	x, y := b.Center()
	switch ev.Kind {
	case event.KindDoubleTap:
		return r.dev.DoubleTap(ctx, x, y)
	case event.KindLongTap:
		return r.dev.LongTap(ctx, x, y)
	case event.KindSwipe:
		dx := scale(ev.DX, rec.ScreenWidth, play.ScreenWidth)
		dy := scale(ev.DY, rec.ScreenHeight, play.ScreenHeight)
		return r.dev.Swipe(ctx, x, y, dx, dy, ev.DurationMs)
	case event.KindText:
		if err := r.dev.Tap(ctx, x, y); err != nil {
			return err
		}
		return r.dev.InputText(ctx, ev.Input)
	default:
		return r.dev.Tap(ctx, x, y)
	}
}

// androidKeycodeBack is the only key event with a portable translation.
const androidKeycodeBack = 4

func (r *Replayer) pressKey(ctx context.Context, ev *event.Event) error {
	if ev.KeyCode == androidKeycodeBack {
		return r.dev.PressBack(ctx)
	}
	return core.NewReplayError(core.ErrCategoryUnsupported, "key_not_translatable",
		"key event has no portable translation").WithDetails(map[string]interface{}{
		"keyCode": ev.KeyCode,
	})
}

func describeTarget(ev *event.Event) string {
	switch {
	case ev.Target.Text != "":
		return "text=" + ev.Target.Text
	case ev.Target.Description != "":
		return "desc=" + ev.Target.Description
	case ev.Target.ResourceID != "":
		return "id=" + ev.Target.ResourceID
	default:
		return "raw"
	}
}
