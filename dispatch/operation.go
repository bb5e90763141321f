package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
)

// State is the lifecycle position of an operation.
type State int

const (
	Created State = iota
	Running
	Completed
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the lifecycle.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// EventType distinguishes streamed items from terminal signals.
type EventType int

const (
	Item EventType = iota
	Done
	Error
	Cancel
)

func (t EventType) String() string {
	switch t {
	case Item:
		return "item"
	case Done:
		return "completed"
	case Error:
		return "failed"
	case Cancel:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is delivered to an operation's callback on the event loop.
type Event struct {
	Type      EventType
	Operation *Operation

	// Item is the streamed item, or the result of a single-shot operation.
	Item *media.Media

	// Remaining is the number of items still expected after this one, or
	// source.RemainingUnknown.
	Remaining int

	// Err is set on Error events.
	Err error
}

// Terminal reports whether e is the last event of its operation.
func (e Event) Terminal() bool {
	return e.Type != Item
}

// Callback receives events of one operation.
type Callback func(Event)

// Operation is one in-flight invocation of a source capability.
type Operation struct {
	ID     string
	Kind   caps.Op
	Entry  *registry.Entry
	Params Params

	d        *Dispatcher
	callback Callback
	ctx      context.Context
	cancel   context.CancelFunc
	started  time.Time

	mu        sync.Mutex
	state     State
	delivered int
	skipped   int
}

// Source returns the identifier of the target source.
func (o *Operation) Source() string {
	return o.Entry.ID()
}

// State returns the current lifecycle state.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cancel stops a running operation. Exactly one Cancel event follows, and no
// further items are delivered. It returns false, doing nothing, when the
// operation is not running.
func (o *Operation) Cancel() bool {
	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		return false
	}
	o.state = Cancelled
	o.mu.Unlock()

	o.cancel()
	o.d.finished(o, Cancelled, nil)
	o.post(Event{Type: Cancel})
	return true
}

func (o *Operation) cancelled() bool {
	return o.State() == Cancelled
}

// post delivers ev on the loop. Items are dropped there if the operation was
// cancelled in the meantime.
func (o *Operation) post(ev Event) {
	ev.Operation = o
	o.d.loop.Post(func() {
		if ev.Type == Item && o.cancelled() {
			return
		}
		o.callback(ev)
	})
}

// finish moves a running operation to its terminal state. Signals arriving
// after cancellation or a previous terminal state are ignored.
func (o *Operation) finish(result *media.Media, err error) {
	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		return
	}
	state := Completed
	if err != nil {
		state = Failed
	}
	o.state = state
	o.mu.Unlock()

	o.cancel()
	o.d.finished(o, state, err)

	if err != nil {
		o.post(Event{Type: Error, Err: err})
		return
	}
	o.post(Event{Type: Done, Item: result})
}

// emit is handed to streaming providers. It applies skip and count, clamps
// a known remaining count to the limit and stops the provider once the limit is
// reached or the operation ended.
func (o *Operation) emit(item *media.Media, remaining int) bool {
	if o.ctx.Err() != nil {
		return false
	}

	opts := o.Params.Options

	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		return false
	}
	if opts.Limited() && o.delivered >= opts.Count {
		o.mu.Unlock()
		return false
	}
	if o.skipped < opts.Skip {
		o.skipped++
		o.mu.Unlock()
		return true
	}
	o.delivered++
	delivered := o.delivered
	o.mu.Unlock()

	if item == nil {
		item = media.New(o.Source(), "")
	}
	if item.Source == "" {
		item.Source = o.Source()
	}

	switch {
	case opts.Limited() && delivered == opts.Count:
		remaining = 0
	case remaining < 0:
		remaining = source.RemainingUnknown
	case opts.Limited():
		remaining = min(remaining, opts.Count-delivered)
	}

	o.d.itemDelivered(o)
	o.post(Event{Type: Item, Item: item, Remaining: remaining})

	return !opts.Limited() || delivered < opts.Count
}
