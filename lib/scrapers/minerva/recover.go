package minerva

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/minerva")

// Session is the live browser tab being steered. Navigation methods
// report errors instead of raising, wait methods block until their
// own bounded timeout and never fail.
type Session interface {
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Reload(ctx context.Context) error
	ClickRow(ctx context.Context, index int) error
	ClickResubmit(ctx context.Context) (bool, error)
	WaitLoaded(ctx context.Context)
	WaitRowActivated(ctx context.Context, prevURL string) bool
}

type DriverOptions struct {
	Markers Markers
	// outer recovery iterations before the fallback reload
	MaxAttempts int
	// how long a resubmission gets to settle back into the list
	SettleTimeout time.Duration
	PollInterval  time.Duration
}

// Driver walks a session back to the list page after it wandered off
// onto one of the upstream's intermediate or error pages.
type Driver struct {
	session Session
	opts    DriverOptions
}

func NewDriver(session Session, opts DriverOptions) Driver {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = time.Second * 15
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Millisecond * 200
	}
	return Driver{
		session: session,
		opts:    opts,
	}
}

// Recover steers the session back to the list page and reports
// whether it got there. Already being on the list succeeds without
// issuing a single navigation action. The list counting as reached
// when at least one row is visible covers pages whose title markers
// render later than the rows themselves.
//
// Per classified state, one outer iteration performs:
//   - parent menu: forward once, the previous back overshot
//   - search results with the no-matches phrase: back only, the
//     resubmission control may not be interactable there
//   - search results otherwise: back, then resubmit if still off-list
//   - unknown option: back and resubmit, escalating to a second
//     back/resubmit round when the error page survives the first
//   - detail or unclassified: back
//
// When the attempt budget runs out the driver reloads the current
// content once, keeping session and form state, and classifies a
// final time. Failure is returned, never raised.
func (d Driver) Recover(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "driver:Recover")
	defer span.End()

	state := d.classify(ctx)
	if state == PAGE_LIST {
		span.SetStatus(codes.Ok, "already on list")
		return true
	}

	for attempt := 0; attempt < d.opts.MaxAttempts; attempt++ {
		slog.DebugContext(
			ctx, "recovery attempt",
			"attempt", attempt+1,
			"max", d.opts.MaxAttempts,
			"state", state.String(),
		)
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("n", attempt+1),
			attribute.String("state", state.String()),
		))

		switch state {
		case PAGE_PARENT_MENU:
			d.forward(ctx)
		case PAGE_NO_EXACT_MATCHES:
			d.back(ctx)
		case PAGE_SEARCH_RESULTS:
			d.back(ctx)
			if d.classify(ctx) != PAGE_LIST {
				d.resubmitAndSettle(ctx)
			}
		case PAGE_UNKNOWN_OPTION:
			d.back(ctx)
			d.resubmitAndSettle(ctx)
			if d.classify(ctx) == PAGE_UNKNOWN_OPTION {
				d.back(ctx)
				d.resubmitAndSettle(ctx)
			}
		default:
			d.back(ctx)
		}

		content := d.html(ctx)
		state = Classify(content, d.opts.Markers)
		if state == PAGE_LIST || len(ListRows(content, d.opts.Markers)) > 0 {
			span.SetStatus(codes.Ok, "")
			return true
		}
	}

	slog.WarnContext(
		ctx, "recovery attempts exhausted, reloading",
		"state", state.String(),
	)
	d.reload(ctx)
	if d.settled(ctx) {
		span.SetStatus(codes.Ok, "recovered via reload")
		return true
	}
	span.SetStatus(codes.Error, "failed to return to list")
	return false
}

func (d Driver) html(ctx context.Context) string {
	content, err := d.session.HTML(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to read page content", "err", err)
		return ""
	}
	return content
}

func (d Driver) classify(ctx context.Context) PageState {
	return Classify(d.html(ctx), d.opts.Markers)
}

// list reached, or rows already visible ahead of the title markers
func (d Driver) settled(ctx context.Context) bool {
	content := d.html(ctx)
	if Classify(content, d.opts.Markers) == PAGE_LIST {
		return true
	}
	return len(ListRows(content, d.opts.Markers)) > 0
}

func (d Driver) back(ctx context.Context) {
	err := d.session.Back(ctx)
	if err != nil {
		slog.WarnContext(ctx, "back navigation failed", "err", err)
	}
	d.session.WaitLoaded(ctx)
}

func (d Driver) forward(ctx context.Context) {
	err := d.session.Forward(ctx)
	if err != nil {
		slog.WarnContext(ctx, "forward navigation failed", "err", err)
	}
	d.session.WaitLoaded(ctx)
}

func (d Driver) reload(ctx context.Context) {
	err := d.session.Reload(ctx)
	if err != nil {
		slog.WarnContext(ctx, "reload failed", "err", err)
	}
	d.session.WaitLoaded(ctx)
}

func (d Driver) resubmitAndSettle(ctx context.Context) {
	clicked, err := d.session.ClickResubmit(ctx)
	if err != nil {
		slog.WarnContext(ctx, "resubmission click failed", "err", err)
		return
	}
	if !clicked {
		return
	}

	deadline := time.Now().Add(d.opts.SettleTimeout)
	for {
		if d.settled(ctx) {
			return
		}
		if !time.Now().Before(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.opts.PollInterval):
		}
	}
}
