package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("browser")

const (
	DEFAULT_ADDR             = "127.0.0.1:9222"
	DEFAULT_LOAD_TIMEOUT     = 15 * time.Second
	DEFAULT_ACTIVATE_TIMEOUT = 8 * time.Second
	DEFAULT_POLL_INTERVAL    = 200 * time.Millisecond
)

// Options configures how a Session attaches to a running browser.
type Options struct {
	// Addr is the devtools address of a browser that is already running,
	// for example one started with --remote-debugging-port=9222.
	Addr string
	// TargetPattern is a regexp matched against tab URLs to pick which tab
	// to drive. When empty the first open tab is used.
	TargetPattern string
	// RowXPath locates the activation controls of visible list rows.
	RowXPath string
	// ResubmitXPath locates a control that resubmits the list query.
	ResubmitXPath string

	LoadTimeout     time.Duration
	ActivateTimeout time.Duration
	PollInterval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = DEFAULT_ADDR
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DEFAULT_LOAD_TIMEOUT
	}
	if o.ActivateTimeout <= 0 {
		o.ActivateTimeout = DEFAULT_ACTIVATE_TIMEOUT
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DEFAULT_POLL_INTERVAL
	}
	return o
}

// Session drives a single tab of an externally managed browser. The browser's
// lifetime belongs to whoever started it, so there is no Close.
type Session struct {
	browser     *rod.Browser
	page        *rod.Page
	opts        Options
	lastClicked *rod.Element
}

// Connect attaches to the browser listening at opts.Addr and binds to the tab
// whose URL matches opts.TargetPattern. It never launches a browser of its
// own, the whole point is to reuse the session the user already logged in on.
func Connect(ctx context.Context, opts Options) (*Session, error) {
	ctx, span := tracer.Start(ctx, "browser:Connect")
	defer span.End()

	opts = opts.withDefaults()

	controlURL, err := launcher.ResolveURL(opts.Addr)
	if err != nil {
		span.SetStatus(codes.Error, "failed to resolve devtools address")
		return nil, fmt.Errorf("resolve devtools at %q: %w", opts.Addr, err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		span.SetStatus(codes.Error, "failed to connect to browser")
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	pages, err := b.Pages()
	if err != nil {
		span.SetStatus(codes.Error, "failed to list tabs")
		return nil, fmt.Errorf("list browser tabs: %w", err)
	}
	if len(pages) == 0 {
		span.SetStatus(codes.Error, "no open tabs")
		return nil, fmt.Errorf("browser at %q has no open tabs", opts.Addr)
	}

	page := pages[0]
	if opts.TargetPattern != "" {
		page, err = pages.FindByURL(opts.TargetPattern)
		if err != nil {
			span.SetStatus(codes.Error, "target tab not found")
			return nil, fmt.Errorf("no open tab matches %q: %w", opts.TargetPattern, err)
		}
	}

	info, err := page.Context(ctx).Info()
	if err != nil {
		span.SetStatus(codes.Error, "failed to inspect tab")
		return nil, fmt.Errorf("inspect tab: %w", err)
	}
	slog.InfoContext(ctx, "attached to browser tab", "url", info.URL, "title", info.Title)

	span.SetStatus(codes.Ok, "")
	return &Session{browser: b, page: page, opts: opts}, nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *Session) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (s *Session) Back(ctx context.Context) error {
	return s.page.Context(ctx).NavigateBack()
}

func (s *Session) Forward(ctx context.Context) error {
	return s.page.Context(ctx).NavigateForward()
}

func (s *Session) Reload(ctx context.Context) error {
	return s.page.Context(ctx).Reload()
}

// ClickRow clicks the index-th visible row activation control. The control is
// remembered so WaitRowActivated can tell when the page replaced it.
func (s *Session) ClickRow(ctx context.Context, index int) error {
	els, err := s.page.Context(ctx).ElementsX(s.opts.RowXPath)
	if err != nil {
		return fmt.Errorf("locate row controls: %w", err)
	}
	if index < 0 || index >= len(els) {
		return fmt.Errorf("row %d is out of range, page shows %d controls", index, len(els))
	}
	s.lastClicked = els[index]
	if err := els[index].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click row %d: %w", index, err)
	}
	return nil
}

// ClickResubmit clicks the query resubmit control if the page has one. The
// bool reports whether anything was clicked.
func (s *Session) ClickResubmit(ctx context.Context) (bool, error) {
	els, err := s.page.Context(ctx).ElementsX(s.opts.ResubmitXPath)
	if err != nil {
		return false, fmt.Errorf("locate resubmit control: %w", err)
	}
	if len(els) == 0 {
		return false, nil
	}
	if err := els[0].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("click resubmit control: %w", err)
	}
	return true, nil
}

// WaitLoaded polls until document.readyState reports complete. Timing out is
// not an error, the old server renders pages in one shot and a page that is
// still loading after LoadTimeout is better inspected than waited on.
func (s *Session) WaitLoaded(ctx context.Context) {
	deadline := time.Now().Add(s.opts.LoadTimeout)
	for {
		res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
			JS:      `() => document.readyState`,
			ByValue: true,
		})
		if err == nil && res.Value.String() == "complete" {
			return
		}
		if time.Now().After(deadline) {
			slog.WarnContext(ctx, "page never reached readyState complete, continuing",
				"timeout", s.opts.LoadTimeout)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.opts.PollInterval):
		}
	}
}

// WaitRowActivated waits for evidence that clicking a row actually navigated:
// either the URL moved off prevURL or the clicked control fell out of the
// document. Reports false when neither happened before ActivateTimeout.
func (s *Session) WaitRowActivated(ctx context.Context, prevURL string) bool {
	deadline := time.Now().Add(s.opts.ActivateTimeout)
	for {
		if ctx.Err() != nil {
			return false
		}
		current, err := s.URL(ctx)
		if err == nil && current != prevURL {
			return true
		}
		if s.rowControlGone(ctx) {
			return true
		}
		if time.Now().After(deadline) {
			slog.WarnContext(ctx, "no navigation detected after activating row, continuing",
				"timeout", s.opts.ActivateTimeout)
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.opts.PollInterval):
		}
	}
}

// rowControlGone reports whether the control clicked last no longer belongs to
// the document, which is how pages that rerender in place show up.
func (s *Session) rowControlGone(ctx context.Context) bool {
	if s.lastClicked == nil {
		return false
	}
	res, err := s.lastClicked.Context(ctx).Eval(`() => document.contains(this)`)
	if err != nil {
		return true
	}
	return !res.Value.Bool()
}

// RenderCurrentPageTo prints whatever the tab currently shows to a PDF file.
func (s *Session) RenderCurrentPageTo(ctx context.Context, path string) error {
	r, err := s.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return fmt.Errorf("print page to pdf: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read pdf stream: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
