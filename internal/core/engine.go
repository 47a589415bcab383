// Package core assembles the comparison form: the event loop, slot manager,
// progress simulator, submission orchestrator and document sink. Front ends
// (the upload command and the interactive form) drive an Engine and render
// what it reports through their surfaces and the event bus.
package core

import (
	"context"
	"fmt"

	"github.com/kyaw-zaya123/checking/internal/archive"
	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/document"
	"github.com/kyaw-zaya123/checking/internal/eventloop"
	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/form"
	inthttp "github.com/kyaw-zaya123/checking/internal/http"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/notify"
	"github.com/kyaw-zaya123/checking/internal/progress"
	"github.com/kyaw-zaya123/checking/internal/submit"
)

// Options carries the presentation pieces a front end plugs into the engine.
// Every field is optional.
type Options struct {
	Surface   form.Surface
	Display   progress.Display
	Notifier  notify.Notifier
	Announcer document.Announcer
	Logger    *logging.Logger

	// Submitter replaces the HTTP client. Tests use it to avoid the network.
	Submitter submit.Submitter
	// Scheduler replaces the real event loop. When set, Run is a no-op and
	// the caller is responsible for driving callbacks.
	Scheduler eventloop.Scheduler
	// Archive overrides the store built from the config.
	Archive archive.Store
}

// Engine owns one form session.
type Engine struct {
	config   *config.Config
	loop     *eventloop.Loop
	sched    eventloop.Scheduler
	eventBus *events.EventBus
	form     *form.Manager
	sim      *progress.Simulator
	orch     *submit.Orchestrator
	sink     *document.Sink
	logger   *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine validates cfg and wires a session. A nil cfg uses the defaults.
func NewEngine(ctx context.Context, cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(ctx)
	e := &Engine{
		config:   cfg,
		eventBus: events.NewEventBus(0),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	submitter := opts.Submitter
	if submitter == nil {
		client, err := inthttp.NewClient(cfg, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create upload client: %w", err)
		}
		submitter = client
	}

	store := opts.Archive
	if store == nil {
		httpClient, err := inthttp.ConfigureHTTPClient(cfg, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create archive client: %w", err)
		}
		store, err = archive.New(ctx, cfg, httpClient, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create archive store: %w", err)
		}
	}

	e.sched = opts.Scheduler
	if e.sched == nil {
		e.loop = eventloop.New()
		e.sched = e.loop
	}

	notifier := notify.Multi{notify.NewBus(e.eventBus)}
	if opts.Notifier != nil {
		notifier = append(notifier, opts.Notifier)
	}
	display := progress.Multi{progress.NewBusDisplay(e.eventBus)}
	if opts.Display != nil {
		display = append(display, opts.Display)
	}

	surface := form.MultiSurface{form.NewBusSurface(e.eventBus)}
	if opts.Surface != nil {
		surface = append(surface, opts.Surface)
	}

	e.form = form.NewManager(surface, notifier, logger)
	e.sim = progress.NewSimulator(e.sched, display, logger)
	e.sink = document.NewSink(document.Options{
		Path:          cfg.Output.DocumentPath,
		Archive:       store,
		ArchivePrefix: cfg.Output.S3Prefix,
		Bus:           e.eventBus,
		Announcer:     opts.Announcer,
		Logger:        logger,
	})
	e.orch = submit.New(submit.Options{
		Scheduler: e.sched,
		Form:      e.form,
		Tracker:   e.sim,
		Submitter: submitter,
		Sink:      e.sink,
		Notifier:  notifier,
		Bus:       e.eventBus,
		Logger:    logger,
		FieldName: cfg.Upload.FieldName,
		Context:   ctx,
	})

	if store != nil {
		logger.Debug().Str("archive", store.Name()).Msg("archive enabled")
	}
	return e, nil
}

// Run processes loop callbacks until ctx is cancelled or Close is called.
func (e *Engine) Run(ctx context.Context) error {
	if e.loop == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return e.loop.Run(ctx)
}

// Do runs fn on the loop and waits for it. With an injected scheduler fn
// runs on the calling goroutine.
func (e *Engine) Do(fn func()) error {
	if e.loop == nil {
		fn()
		return nil
	}
	return e.loop.Do(fn)
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.config
}

// EventBus returns the bus carrying progress, alert, document and
// submission events.
func (e *Engine) EventBus() *events.EventBus {
	return e.eventBus
}

// AddSlot appends an empty slot.
func (e *Engine) AddSlot() (added bool, err error) {
	err = e.Do(func() { added = e.form.AddSlot() })
	return added, err
}

// RemoveSlot removes the last slot.
func (e *Engine) RemoveSlot() (removed bool, err error) {
	err = e.Do(func() { removed = e.form.RemoveSlot() })
	return removed, err
}

// SelectPath describes a local file and selects it for a slot. Validation
// messages are returned; a non-nil error means the selection could not be
// attempted at all.
func (e *Engine) SelectPath(index int, path string) ([]string, error) {
	fd, err := models.DescribeFile(path)
	if err != nil {
		return nil, err
	}
	return e.SelectFile(index, fd)
}

// SelectFile selects a described file for a slot. A nil file clears it.
func (e *Engine) SelectFile(index int, fd *models.FileDescriptor) (msgs []string, err error) {
	doErr := e.Do(func() { msgs, err = e.form.SelectFile(index, fd) })
	if doErr != nil {
		return nil, doErr
	}
	return msgs, err
}

// Controls returns the current control flags.
func (e *Engine) Controls() (c form.Controls, err error) {
	err = e.Do(func() { c = e.form.Controls() })
	return c, err
}

// Slots returns a snapshot of the slots.
func (e *Engine) Slots() (slots []models.Slot, err error) {
	err = e.Do(func() { slots = e.form.Slots() })
	return slots, err
}

// Submit starts an attempt. See submit.Orchestrator.Submit for the errors.
func (e *Engine) Submit() (err error) {
	if doErr := e.Do(func() { err = e.orch.Submit() }); doErr != nil {
		return doErr
	}
	return err
}

// Wait blocks until the latest attempt settled.
func (e *Engine) Wait(ctx context.Context) error {
	return e.orch.Wait(ctx)
}

// Phase returns the progress simulator phase.
func (e *Engine) Phase() (p progress.Phase, err error) {
	err = e.Do(func() { p = e.sim.Phase() })
	return p, err
}

// Document returns the last document written, or nil.
func (e *Engine) Document() *document.Document {
	return e.sink.Last()
}

// Close cancels requests in flight and stops the loop.
func (e *Engine) Close() {
	e.orch.Close()
	e.cancel()
	if e.loop != nil {
		e.loop.Close()
	}
	e.eventBus.Close()
}
