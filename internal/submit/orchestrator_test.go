package submit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/form"
	inthttp "github.com/kyaw-zaya123/checking/internal/http"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/progress"
	"github.com/kyaw-zaya123/checking/internal/testutil"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	payloads []*models.Payload
	resp     *models.Response
	err      error
}

func (f *fakeSubmitter) Submit(_ context.Context, p *models.Payload) (*models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSink struct {
	mu       sync.Mutex
	attempts []string
	bodies   []string
	err      error
}

func (s *fakeSink) Replace(_ context.Context, attemptID string, resp *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.attempts = append(s.attempts, attemptID)
	s.bodies = append(s.bodies, string(resp.Body))
	return nil
}

type validatedSurface struct {
	form.NopSurface
	mu        sync.Mutex
	validated bool
}

func (s *validatedSurface) SetValidated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validated = v
}

func (s *validatedSurface) Validated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validated
}

// syncBuffer collects log lines written from the loop and the handoff goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	sched     *testutil.ManualScheduler
	surface   *validatedSurface
	logs      *syncBuffer
	display   *testutil.RecordingDisplay
	notifier  *testutil.RecordingNotifier
	form      *form.Manager
	sim       *progress.Simulator
	submitter *fakeSubmitter
	sink      *fakeSink
	bus       *events.EventBus
	orch      *Orchestrator
	dir       string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched:     testutil.NewManualScheduler(),
		surface:   &validatedSurface{},
		logs:      &syncBuffer{},
		display:   &testutil.RecordingDisplay{},
		notifier:  &testutil.RecordingNotifier{},
		submitter: &fakeSubmitter{resp: &models.Response{StatusCode: 200, ContentType: "text/html", Body: []byte("<p>ok</p>")}},
		sink:      &fakeSink{},
		bus:       events.NewEventBus(16),
		dir:       t.TempDir(),
	}
	t.Cleanup(h.bus.Close)

	h.form = form.NewManager(h.surface, h.notifier, nil)
	h.sim = progress.NewSimulator(h.sched, h.display, nil)
	h.orch = New(Options{
		Scheduler: h.sched,
		Form:      h.form,
		Tracker:   h.sim,
		Submitter: h.submitter,
		Sink:      h.sink,
		Notifier:  h.notifier,
		Bus:       h.bus,
		Logger:    logging.NewLogger("tui", h.logs),
	})
	t.Cleanup(h.orch.Close)
	return h
}

func (h *harness) selectFile(t *testing.T, slot int, name string, size int) *models.FileDescriptor {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	fd, err := models.DescribeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	errs, err := h.form.SelectFile(slot, fd)
	if err != nil || len(errs) > 0 {
		t.Fatalf("select %s: %v %v", name, errs, err)
	}
	return fd
}

func TestSubmit_IncompleteFormIsBlocked(t *testing.T) {
	h := newHarness(t)
	h.selectFile(t, 1, "a.txt", 10)
	h.form.AddSlot()

	err := h.orch.Submit()

	var incomplete *form.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteError, got %v", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != 2 {
		t.Errorf("Missing = %v, want [2]", incomplete.Missing)
	}
	if !h.surface.Validated() {
		t.Error("form must switch to showing inline errors")
	}
	if h.display.Visible() || h.sched.ActiveTimers() != 0 {
		t.Error("no progress may start for an incomplete form")
	}
	if h.orch.InFlight() {
		t.Error("no attempt may be in flight")
	}
}

func TestSubmit_SuccessReplacesDocument(t *testing.T) {
	h := newHarness(t)
	h.selectFile(t, 1, "a.txt", 1024)
	done := h.bus.Subscribe(events.EventSubmission)

	if err := h.orch.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !h.display.Visible() {
		t.Error("progress must be visible once started")
	}

	// Nothing goes out before the simulated duration elapsed
	h.sched.Advance(19 * time.Second)
	if h.submitter.Calls() != 0 {
		t.Fatal("request sent before the handoff")
	}

	h.sched.Advance(2 * time.Second)
	if !h.sched.AwaitPosted(time.Second) {
		t.Fatal("outcome was never posted to the loop")
	}

	if h.submitter.Calls() != 1 {
		t.Fatalf("expected 1 request, got %d", h.submitter.Calls())
	}
	if len(h.sink.bodies) != 1 || h.sink.bodies[0] != "<p>ok</p>" {
		t.Errorf("document not replaced: %v", h.sink.bodies)
	}
	attempt := h.orch.Current()
	if attempt == nil || h.sink.attempts[0] != attempt.ID {
		t.Errorf("sink got attempt %v, current is %+v", h.sink.attempts, attempt)
	}
	if err := h.orch.Wait(context.Background()); err != nil {
		t.Errorf("Wait: %v", err)
	}
	if len(h.notifier.Alerts()) != 0 {
		t.Errorf("unexpected alerts: %v", h.notifier.Alerts())
	}
	if h.display.Percent() != 100 || !h.display.Visible() {
		t.Errorf("final percent = %d visible=%v, want 100 shown", h.display.Percent(), h.display.Visible())
	}
	if h.sim.Phase() != progress.Idle {
		t.Errorf("phase = %v, want idle after success", h.sim.Phase())
	}
	if h.orch.InFlight() {
		t.Error("attempt must settle")
	}

	select {
	case ev := <-done:
		sub := ev.(*events.SubmissionEvent)
		if sub.Err != nil || sub.AttemptID != attempt.ID {
			t.Errorf("unexpected submission event %+v", sub)
		}
	case <-time.After(time.Second):
		t.Fatal("no submission event")
	}
}

func TestSubmit_FailedTransportReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	h.submitter.err = errors.New("connection refused")
	fd := h.selectFile(t, 1, "report.pdf", 5*1024*1024)

	if err := h.orch.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// 5 MB estimates 20 + 5*2 = 30 seconds
	h.sched.Advance(29 * time.Second)
	for _, p := range h.display.Percents() {
		if p > 90 {
			t.Fatalf("percent %d above the ceiling before handoff", p)
		}
	}
	h.sched.Advance(time.Second)
	if h.display.Percent() != 100 {
		t.Errorf("expected 100%% at handoff, got %d", h.display.Percent())
	}
	if !h.sched.AwaitPosted(time.Second) {
		t.Fatal("outcome was never posted to the loop")
	}

	alerts := h.notifier.Alerts()
	if len(alerts) != 1 || alerts[0] != constants.SubmitFailedAlert {
		t.Errorf("alerts = %v", alerts)
	}
	if h.sim.Phase() != progress.Idle {
		t.Errorf("phase = %v, want idle", h.sim.Phase())
	}
	if h.display.Visible() || h.display.Percent() != 0 {
		t.Error("progress surface must be hidden and zeroed")
	}
	if h.display.Remaining() != constants.RemainingPrefix+constants.RemainingUnknown {
		t.Errorf("remaining = %q", h.display.Remaining())
	}

	files := h.form.SelectedFiles()
	if len(files) != 1 || files[0] != *fd {
		t.Errorf("selections must survive a failed attempt, got %+v", files)
	}

	err := h.orch.Wait(context.Background())
	if err == nil || !errors.Is(err, h.submitter.err) {
		t.Errorf("Wait = %v, want wrapped transport error", err)
	}
	if len(h.sink.bodies) != 0 {
		t.Error("failed attempt must not touch the document")
	}

	// A retry from the same selections is accepted
	if err := h.orch.Submit(); err != nil {
		t.Errorf("resubmit: %v", err)
	}
}

func TestSubmit_FailureLogsErrorType(t *testing.T) {
	h := newHarness(t)
	h.submitter.err = &inthttp.StatusError{Code: 502, Status: "502 Bad Gateway"}
	h.selectFile(t, 1, "a.txt", 10)

	if err := h.orch.Submit(); err != nil {
		t.Fatal(err)
	}
	h.sched.Advance(time.Minute)
	if !h.sched.AwaitPosted(time.Second) {
		t.Fatal("outcome was never posted")
	}

	logs := h.logs.String()
	if !strings.Contains(logs, `"message":"submission failed"`) {
		t.Fatalf("failure was not logged:\n%s", logs)
	}
	if !strings.Contains(logs, `"error_type":"server"`) {
		t.Errorf("failure log lacks the error class:\n%s", logs)
	}
}

func TestSubmit_SinkFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.sink.err = errors.New("disk full")
	h.selectFile(t, 1, "a.txt", 10)

	if err := h.orch.Submit(); err != nil {
		t.Fatal(err)
	}
	h.sched.Advance(time.Minute)
	if !h.sched.AwaitPosted(time.Second) {
		t.Fatal("outcome was never posted")
	}
	if err := h.orch.Wait(context.Background()); !errors.Is(err, h.sink.err) {
		t.Errorf("Wait = %v, want sink error", err)
	}
	if h.display.Visible() {
		t.Error("progress must be reset after a failed attempt")
	}
}

func TestSubmit_RejectsSecondAttemptWhileInFlight(t *testing.T) {
	h := newHarness(t)
	h.selectFile(t, 1, "a.txt", 10)

	if err := h.orch.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := h.orch.Submit(); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	h.sched.Advance(time.Minute)
	h.sched.AwaitPosted(time.Second)

	if h.submitter.Calls() != 1 {
		t.Errorf("expected a single request, got %d", h.submitter.Calls())
	}
}

func TestSubmit_PreparationFailure(t *testing.T) {
	h := newHarness(t)
	fd := h.selectFile(t, 1, "a.txt", 10)
	if err := os.Remove(fd.Path); err != nil {
		t.Fatal(err)
	}

	err := h.orch.Submit()

	var prep *PreparationError
	if !errors.As(err, &prep) {
		t.Fatalf("expected PreparationError, got %v", err)
	}
	alerts := h.notifier.Alerts()
	if len(alerts) != 1 || alerts[0] != constants.PrepareFailedAlert {
		t.Errorf("alerts = %v", alerts)
	}
	if h.display.Visible() {
		t.Error("progress must be hidden after a preparation failure")
	}
	if h.sched.ActiveTimers() != 0 {
		t.Errorf("expected no timers, got %d", h.sched.ActiveTimers())
	}

	h.sched.Advance(time.Minute)
	if h.submitter.Calls() != 0 {
		t.Error("nothing may be sent after a preparation failure")
	}
	if h.orch.InFlight() {
		t.Error("no attempt may be in flight")
	}
}

func TestWait_NoAttempt(t *testing.T) {
	h := newHarness(t)
	if err := h.orch.Wait(context.Background()); err != nil {
		t.Errorf("Wait = %v, want nil", err)
	}
}

func TestWait_HonorsContext(t *testing.T) {
	h := newHarness(t)
	h.selectFile(t, 1, "a.txt", 10)
	if err := h.orch.Submit(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := h.orch.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded", err)
	}
}
