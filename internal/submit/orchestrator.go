// Package submit runs one submission attempt end to end: validity check,
// simulated progress, payload capture, the network call and its outcome.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/eventloop"
	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/form"
	inthttp "github.com/kyaw-zaya123/checking/internal/http"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/notify"
	"github.com/kyaw-zaya123/checking/internal/progress"
)

// Submitter performs the POST to the comparison endpoint.
type Submitter interface {
	Submit(ctx context.Context, payload *models.Payload) (*models.Response, error)
}

// DocumentSink replaces the current document with a response.
type DocumentSink interface {
	Replace(ctx context.Context, attemptID string, resp *models.Response) error
}

// Options wires an Orchestrator.
type Options struct {
	Scheduler eventloop.Scheduler
	Form      *form.Manager
	Tracker   progress.Tracker
	Submitter Submitter
	Sink      DocumentSink
	Notifier  notify.Notifier
	Bus       *events.EventBus
	Logger    *logging.Logger

	// FieldName is the multipart field every file is sent under.
	FieldName string
	// Context bounds every network call. Defaults to context.Background.
	Context context.Context
}

// Orchestrator drives submission attempts. Submit and the completion
// callbacks run on the scheduler's goroutine; Wait may be called from any
// goroutine.
type Orchestrator struct {
	sched     eventloop.Scheduler
	form      *form.Manager
	tracker   progress.Tracker
	submitter Submitter
	sink      DocumentSink
	notifier  notify.Notifier
	bus       *events.EventBus
	logger    *logging.Logger
	fieldName string

	ctx    context.Context
	cancel context.CancelFunc

	inFlight bool

	mu      sync.Mutex
	current *Attempt
}

// Attempt is one submission. Done is closed once it settled.
type Attempt struct {
	ID   string
	done chan struct{}
	err  error
}

// Done is closed when the attempt succeeded or failed.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Err returns the outcome. It is only meaningful after Done is closed.
func (a *Attempt) Err() error {
	return a.err
}

func (a *Attempt) settle(err error) {
	a.err = err
	close(a.done)
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.FieldName == "" {
		opts.FieldName = constants.FileFieldName
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	return &Orchestrator{
		sched:     opts.Scheduler,
		form:      opts.Form,
		tracker:   opts.Tracker,
		submitter: opts.Submitter,
		sink:      opts.Sink,
		notifier:  opts.Notifier,
		bus:       opts.Bus,
		logger:    opts.Logger,
		fieldName: opts.FieldName,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// InFlight reports whether an attempt has started and not settled yet.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight
}

// Submit starts an attempt. It returns *form.IncompleteError when a slot has
// no file, ErrInFlight while an earlier attempt is pending and
// *PreparationError when the files could not be read. A nil error means the
// attempt is under way; its outcome is delivered through Wait, the bus and
// the document sink.
func (o *Orchestrator) Submit() error {
	if err := o.form.CheckValidity(); err != nil {
		o.form.MarkValidated()
		o.logger.Warn().Err(err).Msg("submission blocked")
		return err
	}
	if o.inFlight {
		return ErrInFlight
	}

	a := &Attempt{ID: uuid.NewString(), done: make(chan struct{})}
	log := o.logger.Child("attempt", a.ID)

	total := o.form.TotalSize()
	o.tracker.Reset()
	o.tracker.Show()

	var payload *models.Payload
	wait := o.tracker.Start(total, func() { o.handoff(a, payload, log) })

	payload, err := CapturePayload(o.form.Slots(), o.fieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to capture payload")
		o.notifier.Alert(constants.PrepareFailedAlert)
		o.tracker.Reset()
		o.form.MarkValidated()
		return &PreparationError{Err: err}
	}

	o.inFlight = true
	o.setCurrent(a)
	o.form.MarkValidated()

	log.Info().
		Int("files", len(payload.Files)).
		Int64("bytes", payload.TotalSize()).
		Dur("estimate", wait).
		Msg("submission started")
	return nil
}

// handoff runs on the loop once the simulated progress completed. The
// request and the document replacement run on their own goroutine; only
// the outcome comes back to the loop.
func (o *Orchestrator) handoff(a *Attempt, payload *models.Payload, log *logging.Logger) {
	log.Debug().Msg("sending payload")

	go func() {
		err := o.send(a, payload)
		if postErr := o.sched.Post(func() { o.finish(a, err, log) }); postErr != nil {
			log.Warn().Err(postErr).Msg("loop closed before the outcome was delivered")
			a.settle(err)
		}
	}()
}

func (o *Orchestrator) send(a *Attempt, payload *models.Payload) error {
	resp, err := o.submitter.Submit(o.ctx, payload)
	if err != nil {
		return fmt.Errorf("submission %s failed: %w", a.ID, err)
	}
	if o.sink != nil {
		if err := o.sink.Replace(o.ctx, a.ID, resp); err != nil {
			return fmt.Errorf("submission %s: failed to show response: %w", a.ID, err)
		}
	}
	return nil
}

func (o *Orchestrator) finish(a *Attempt, err error, log *logging.Logger) {
	o.inFlight = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("submission canceled")
		} else {
			log.Error().
				Err(err).
				Str("error_type", inthttp.ErrorTypeName(inthttp.ClassifyError(err))).
				Msg("submission failed")
		}
		o.notifier.Alert(constants.SubmitFailedAlert)
		o.tracker.Reset()
	} else {
		o.tracker.Finish()
		log.Info().Msg("submission complete")
	}

	if o.bus != nil {
		o.bus.PublishSubmission(a.ID, err)
	}
	a.settle(err)
}

func (o *Orchestrator) setCurrent(a *Attempt) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = a
}

// Current returns the latest started attempt, or nil.
func (o *Orchestrator) Current() *Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Wait blocks until the latest attempt settled and returns its outcome.
// It returns nil immediately when no attempt was started.
func (o *Orchestrator) Wait(ctx context.Context) error {
	a := o.Current()
	if a == nil {
		return nil
	}
	select {
	case <-a.Done():
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any request in flight.
func (o *Orchestrator) Close() {
	o.cancel()
}
