// Package dispatch invokes source operations asynchronously and delivers
// their results on the event loop.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/loop"
	"github.com/medley-cli/medley/media"
	"github.com/medley-cli/medley/metrics"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/source"
	"github.com/oklog/ulid/v2"
)

// Params carries the inputs of an operation. Each kind reads only the
// fields it needs.
type Params struct {
	// Text is the search text or query expression.
	Text string

	// Container is the container to browse. Nil browses the root.
	Container *media.Media

	// Media is the item to resolve, store or remove.
	Media *media.Media

	// Parent is the container an item is stored in.
	Parent *media.Media

	// ID identifies the item whose metadata is fetched.
	ID string

	// Options tune the operation. The zero value has a Count of 0, which
	// completes a stream without items; start from source.DefaultOptions to
	// request every item.
	Options source.Options
}

// Dispatcher turns capability invocations into operations.
type Dispatcher struct {
	loop     *loop.Loop
	registry *registry.Registry
	base     context.Context
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry lets full resolution consult the other sources of r.
func WithRegistry(r *registry.Registry) Option {
	return func(d *Dispatcher) { d.registry = r }
}

// WithContext sets the parent context of every operation.
func WithContext(ctx context.Context) Option {
	return func(d *Dispatcher) { d.base = ctx }
}

// New returns a dispatcher delivering events on l.
func New(l *loop.Loop, opts ...Option) *Dispatcher {
	d := &Dispatcher{loop: l, base: context.Background()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke validates and starts an operation of the given kind on entry.
// Validation failures are returned synchronously and the provider is never
// contacted. Otherwise every outcome arrives through callback on the loop.
func (d *Dispatcher) Invoke(entry *registry.Entry, kind caps.Op, params Params, callback Callback) (*Operation, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: no source", source.ErrInvalidParams)
	}
	if callback == nil {
		return nil, fmt.Errorf("%w: no callback", source.ErrInvalidParams)
	}
	if !kind.Single() || !entry.Supports(kind) {
		return nil, source.Unsupported(entry.ID(), kind)
	}
	if err := validate(kind, &params); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(d.base)
	op := &Operation{
		ID:       ulid.Make().String(),
		Kind:     kind,
		Entry:    entry,
		Params:   params,
		d:        d,
		callback: callback,
		ctx:      ctx,
		cancel:   cancel,
		state:    Created,
	}

	d.start(op)
	return op, nil
}

func validate(kind caps.Op, p *Params) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", source.ErrInvalidParams, kind, fmt.Sprintf(format, args...))
	}

	opts := p.Options
	if opts.Count < source.CountInfinity {
		return invalid("count must be %d or greater", source.CountInfinity)
	}
	if opts.Skip < 0 {
		return invalid("skip must not be negative")
	}

	switch kind {
	case caps.Query:
		if p.Text == "" {
			return invalid("query expression is empty")
		}
	case caps.Browse:
		if p.Container != nil && !p.Container.Container {
			return invalid("%s is not a container", p.Container.ID)
		}
	case caps.Resolve, caps.Store, caps.Remove:
		if p.Media == nil {
			return invalid("no media")
		}
	case caps.StoreParent:
		if p.Media == nil {
			return invalid("no media")
		}
		if p.Parent == nil || !p.Parent.Container {
			return invalid("parent is not a container")
		}
	case caps.Metadata:
		if p.ID == "" && p.Media != nil {
			p.ID = p.Media.ID
		}
		if p.ID == "" {
			return invalid("no media id")
		}
	}
	return nil
}

func (d *Dispatcher) logger(op *Operation) *log.Entry {
	return log.WithFields(log.Fields{
		"operation_id": op.ID,
		"source":       op.Source(),
		"op":           op.Kind.String(),
	})
}

func (d *Dispatcher) start(op *Operation) {
	op.mu.Lock()
	op.state = Running
	op.started = time.Now()
	op.mu.Unlock()

	metrics.IncOperationStarted(op.Kind.String(), op.Source())
	d.logger(op).Debug("operation started")

	go d.run(op)
}

func (d *Dispatcher) run(op *Operation) {
	var (
		result *media.Media
		err    error
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
		op.finish(result, wrap(op, err))
	}()

	if op.Params.Options.Limited() && op.Params.Options.Count == 0 && op.Kind.Streaming() {
		return
	}

	result, err = d.call(op)
}

func wrap(op *Operation, err error) error {
	if err == nil {
		return nil
	}
	var provider *source.ProviderError
	if errors.As(err, &provider) {
		return err
	}
	return &source.ProviderError{Source: op.Source(), Op: op.Kind, Err: err}
}

func (d *Dispatcher) call(op *Operation) (*media.Media, error) {
	src := op.Entry.Source
	p := op.Params
	ctx := op.ctx

	switch op.Kind {
	case caps.Search:
		return nil, src.(source.Searcher).Search(ctx, p.Text, p.Options, op.emit)
	case caps.Browse:
		return nil, src.(source.Browser).Browse(ctx, p.Container, p.Options, op.emit)
	case caps.Query:
		return nil, src.(source.Querier).Query(ctx, p.Text, p.Options, op.emit)
	case caps.Resolve:
		return d.resolve(op)
	case caps.Metadata:
		return src.(source.MetadataFetcher).Metadata(ctx, p.ID, p.Options)
	case caps.Store:
		return src.(source.Storer).Store(ctx, p.Media)
	case caps.StoreParent:
		return src.(source.ParentStorer).StoreIn(ctx, p.Parent, p.Media)
	case caps.Remove:
		return p.Media, src.(source.Remover).Remove(ctx, p.Media)
	default:
		return nil, source.Unsupported(op.Source(), op.Kind)
	}
}

func (d *Dispatcher) finished(op *Operation, state State, err error) {
	kind, id := op.Kind.String(), op.Source()
	metrics.ObserveOperationDuration(kind, time.Since(op.started))

	logger := d.logger(op).WithField("state", state.String())
	switch state {
	case Completed:
		metrics.IncOperationCompleted(kind, id)
		logger.Debug("operation finished")
	case Failed:
		metrics.IncOperationFailed(kind, id)
		logger.WithError(err).Warn("operation failed")
	case Cancelled:
		metrics.IncOperationCancelled(kind, id)
		logger.Debug("operation cancelled")
	}
}

func (d *Dispatcher) itemDelivered(op *Operation) {
	metrics.IncItemsDelivered(op.Source())
}
