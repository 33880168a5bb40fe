// Package event models recorded input events and the replay queue, and
// parses recording files.
package event

// Kind names a recorded gesture.
type Kind string

// Recorded gesture kinds.
const (
	KindTap       Kind = "tap"
	KindDoubleTap Kind = "doubleTap"
	KindLongTap   Kind = "longTap"
	KindSwipe     Kind = "swipe"
	KindText      Kind = "text"
	KindKey       Kind = "key"
)

// Target carries the identity of the view the event was recorded against.
// Identity never includes tree position; layouts differ across devices.
type Target struct {
	Text        string `yaml:"text,omitempty"`
	Description string `yaml:"description,omitempty"`
	ResourceID  string `yaml:"resourceId,omitempty"`
	Class       string `yaml:"class,omitempty"`
}

// Empty reports whether no identity field is set.
func (t Target) Empty() bool {
	return t.Text == "" && t.Description == "" && t.ResourceID == ""
}

// Event is one recorded interaction.
type Event struct {
	Kind Kind `yaml:"kind"`

	// Gesture geometry in recordee screen pixels.
	X          int `yaml:"x,omitempty"`
	Y          int `yaml:"y,omitempty"`
	DX         int `yaml:"dx,omitempty"`
	DY         int `yaml:"dy,omitempty"`
	DurationMs int `yaml:"durationMs,omitempty"`

	// Payload for text and key events.
	Input   string `yaml:"input,omitempty"`
	KeyCode int    `yaml:"keyCode,omitempty"`

	// Identity of the targeted view, captured at record time.
	Target Target `yaml:"target,omitempty"`

	// UI hierarchy of the recordee at the moment of the event, either
	// inline or as a file reference resolved at parse time.
	Source     string `yaml:"source,omitempty"`
	SourceFile string `yaml:"sourceFile,omitempty"`
}

// Queue is the mutable sequence of pending events shared between the
// replay loop and lookahead. Popping is the only mutation and must happen
// inside the synthesis call that decided to pop.
type Queue struct {
	events []*Event
}

// NewQueue returns a queue over the given events, first event first.
func NewQueue(events []*Event) *Queue {
	return &Queue{events: events}
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.events) }

// Peek returns the i-th pending event without removing it, or nil when
// out of range.
func (q *Queue) Peek(i int) *Event {
	if i < 0 || i >= len(q.events) {
		return nil
	}
	return q.events[i]
}

// Pop removes and returns the next event, or nil when empty.
func (q *Queue) Pop() *Event {
	if len(q.events) == 0 {
		return nil
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e
}

// PopN drops the next n events. It drops fewer when the queue is shorter.
func (q *Queue) PopN(n int) {
	if n > len(q.events) {
		n = len(q.events)
	}
	if n > 0 {
		q.events = q.events[n:]
	}
}
