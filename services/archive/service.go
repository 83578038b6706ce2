package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minerva-archive/lib/scrapers/minerva"
	"minerva-archive/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/archive")

var (
	// ErrNoListPage means the run never saw the request list at all.
	ErrNoListPage = errors.New("could not reach the request list page")
	// ErrRecoveryExhausted means a capture left the session somewhere
	// the driver could not walk back from.
	ErrRecoveryExhausted = errors.New("lost the request list and could not recover")
)

// Renderer prints the current page of a session to a file on disk.
type Renderer interface {
	RenderCurrentPageTo(ctx context.Context, path string) error
}

type Config struct {
	// OutputDir receives the rendered pdf and txt files.
	OutputDir string
	// ReloadEvery reloads the list page after every N captures as a hedge
	// against very long runs wearing the session out. Zero never reloads.
	ReloadEvery int

	Markers       minerva.Markers
	MaxAttempts   int
	SettleTimeout time.Duration
	PollInterval  time.Duration
}

type Service struct {
	session  minerva.Session
	renderer Renderer
	store    Store
	driver   minerva.Driver
	cfg      Config
}

func NewService(session minerva.Session, renderer Renderer, database *sql.DB, cfg Config) Service {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "pdf_output"
	}
	if cfg.Markers == (minerva.Markers{}) {
		cfg.Markers = minerva.DefaultMarkers()
	}
	return Service{
		session:  session,
		renderer: renderer,
		store:    NewStore(database),
		driver: minerva.NewDriver(session, minerva.DriverOptions{
			Markers:       cfg.Markers,
			MaxAttempts:   cfg.MaxAttempts,
			SettleTimeout: cfg.SettleTimeout,
			PollInterval:  cfg.PollInterval,
		}),
		cfg: cfg,
	}
}

// RunStats summarizes what a run achieved. Truncated is set when the list
// shrank mid-run and the tail could not be visited.
type RunStats struct {
	Years     string
	RowsFound int
	Captured  int
	Truncated bool
}

// Run archives every visible row of the request list the session currently
// shows: an index pdf of the list itself, then per row a rendered pdf, a
// plain text rendition of the detail tables, and a database record. Rows are
// re-located before every capture since activating one and walking back
// renders the list from scratch.
func (s Service) Run(ctx context.Context) (RunStats, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	stats := RunStats{}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, fmt.Errorf("create output directory: %w", err)
	}

	if !s.driver.Recover(ctx) {
		span.SetStatus(codes.Error, ErrNoListPage.Error())
		return stats, ErrNoListPage
	}

	initial, err := s.listRows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}
	stats.RowsFound = len(initial)
	span.SetAttributes(attribute.Int("rows", stats.RowsFound))

	if stats.RowsFound == 0 {
		slog.InfoContext(ctx, "the request list has no rows, nothing to archive")
		return stats, nil
	}

	stats.Years = textutil.YearRange(
		initial[0].StartDate,
		initial[len(initial)-1].StartDate,
	)
	slog.InfoContext(ctx, "found request rows",
		"rows", stats.RowsFound, "years", stats.Years)

	indexPath := s.uniqueIndexPath(stats.Years)
	slog.InfoContext(ctx, "saving list index page", "path", indexPath)
	if err := s.renderer.RenderCurrentPageTo(ctx, indexPath); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, fmt.Errorf("render index page: %w", err)
	}

	for i := 0; i < stats.RowsFound; i++ {
		if s.cfg.ReloadEvery > 0 && i > 0 && i%s.cfg.ReloadEvery == 0 {
			slog.InfoContext(ctx, "periodic reload of the list page", "row", i+1)
			if err := s.session.Reload(ctx); err != nil {
				slog.WarnContext(ctx, "failed to reload list page", "err", err)
			}
			s.session.WaitLoaded(ctx)
			if !s.driver.Recover(ctx) {
				span.SetStatus(codes.Error, ErrRecoveryExhausted.Error())
				return stats, ErrRecoveryExhausted
			}
		}

		// the list rerenders after every capture, so locate rows again
		rows, err := s.listRows(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return stats, err
		}
		if i >= len(rows) {
			slog.WarnContext(ctx, "fewer rows remain than first seen, stopping early",
				"row", i+1, "remaining", len(rows))
			stats.Truncated = true
			break
		}
		row := rows[i]

		if err := s.captureRow(ctx, row, i, stats.Years); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return stats, err
		}
		stats.Captured++

		if !s.driver.Recover(ctx) {
			span.SetStatus(codes.Error, ErrRecoveryExhausted.Error())
			return stats, ErrRecoveryExhausted
		}
	}

	span.SetAttributes(attribute.Int("captured", stats.Captured))
	span.SetStatus(codes.Ok, "")
	return stats, nil
}

// captureRow activates the i-th row, renders the detail page it opens and
// persists the extracted content. The row's fields come from the list page,
// read before the click, the detail page does not repeat them.
func (s Service) captureRow(ctx context.Context, row minerva.Row, i int, years string) error {
	slog.InfoContext(ctx, "capturing row",
		"row", i+1,
		"request_date", row.RequestDate,
		"start_date", row.StartDate,
		"reference_num", row.ReferenceNum,
		"queue", row.QueueTitle)

	label := captureLabel(row, i)
	pdfPath := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_%03d_%s.pdf", years, i+1, label))
	txtPath := strings.TrimSuffix(pdfPath, ".pdf") + ".txt"

	prevURL, err := s.session.URL(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to read current url", "err", err)
	}
	if err := s.session.ClickRow(ctx, row.Index); err != nil {
		return fmt.Errorf("activate row %d: %w", i+1, err)
	}
	if !s.session.WaitRowActivated(ctx, prevURL) {
		slog.WarnContext(ctx, "row activation produced no visible navigation", "row", i+1)
	}
	s.session.WaitLoaded(ctx)

	if err := s.renderer.RenderCurrentPageTo(ctx, pdfPath); err != nil {
		return fmt.Errorf("render row %d: %w", i+1, err)
	}

	content, err := s.session.HTML(ctx)
	if err != nil {
		return fmt.Errorf("read detail page of row %d: %w", i+1, err)
	}
	sections := minerva.ExtractSections(content)
	items := minerva.ExtractLineItems(content)

	if err := os.WriteFile(txtPath, []byte(minerva.FormatSections(sections)), 0o644); err != nil {
		return fmt.Errorf("write text of row %d: %w", i+1, err)
	}

	_, err = s.store.SaveCapture(ctx, Capture{
		Years:        years,
		RowIndex:     i + 1,
		RequestDate:  row.RequestDate,
		StartDate:    row.StartDate,
		ReferenceNum: row.ReferenceNum,
		QueueTitle:   row.QueueTitle,
		PdfPath:      pdfPath,
		TxtPath:      txtPath,
		Sections:     sections,
		Items:        items,
	})
	if err != nil {
		return fmt.Errorf("save row %d: %w", i+1, err)
	}
	return nil
}

func (s Service) listRows(ctx context.Context) ([]minerva.Row, error) {
	content, err := s.session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read list page content: %w", err)
	}
	return minerva.ListRows(content, s.cfg.Markers), nil
}

// uniqueIndexPath picks a name for the list index pdf that does not clobber
// the index of an earlier run over the same year range.
func (s Service) uniqueIndexPath(years string) string {
	base := filepath.Join(s.cfg.OutputDir, years+"_index")
	path := base + ".pdf"
	counter := 1
	for {
		_, err := os.Stat(path)
		if err != nil {
			return path
		}
		path = fmt.Sprintf("%s-%d.pdf", base, counter)
		counter++
	}
}

func captureLabel(row minerva.Row, i int) string {
	var parts []string
	for _, part := range []string{row.RequestDate, row.StartDate, row.ReferenceNum, row.QueueTitle} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("row_%d", i+1)
	}
	return textutil.SanitizeFilename(strings.Join(parts, "_"))
}
