package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"minerva-archive/lib/browser"
	"minerva-archive/lib/configutil"
	"minerva-archive/lib/scrapers/minerva"
	"minerva-archive/lib/serviceutil"
	"minerva-archive/lib/sqliteutil"
	"minerva-archive/lib/telemetry"
	"minerva-archive/services/archive"
	"minerva-archive/services/archive/db"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

type Config struct {
	Chrome   string            `json:"chrome"`
	Target   string            `json:"target"`
	Database sqliteutil.Config `json:"database"`
	Markers  minerva.Markers   `json:"markers"`
}

var (
	runDb          *string
	runOut         *string
	runChrome      *string
	runTarget      *string
	runReloadEvery *int
)

func init() {
	runDb = runCmd.Flags().String("db", "pdf_output/details.db", "The database to write capture records to.")
	runOut = runCmd.Flags().String("out", "pdf_output", "The directory receiving rendered pdf and txt files.")
	runChrome = runCmd.Flags().String("chrome", browser.DEFAULT_ADDR, "The devtools address of the running browser.")
	runTarget = runCmd.Flags().String("target", "", "A URL pattern picking the browser tab to drive, matched when the command starts.")
	runReloadEvery = runCmd.Flags().Int("reload-every", 0, "Reload the list after every N captures, 0 never reloads.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--reload-every <n>]",
	Short: "Archives every row of the request list open in the attached browser tab.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg := readRunConfig()
		markers := cfg.Markers
		if markers == (minerva.Markers{}) {
			markers = minerva.DefaultMarkers()
		}

		telemetry.InstrumentPerfStats(ctx)

		session, err := browser.Connect(ctx, browser.Options{
			Addr:          chromeAddr(cfg),
			TargetPattern: targetPattern(cfg),
			RowXPath:      minerva.RowControlXPath(markers.ActivationLabel),
			ResubmitXPath: minerva.ResubmitXPath,
		})
		if err != nil {
			serviceutil.Fatal("failed to attach to browser", err)
		}

		fmt.Println()
		fmt.Printf("Make sure the attached tab shows the %q page with its %s buttons.\n",
			markers.ListTitle, markers.ActivationLabel)
		fmt.Println("Log in and navigate there if needed, then press Enter to start...")
		stop := startBlinkingPrompt("> ", time.Millisecond*500)
		err = waitForEnter(ctx)
		stop()
		if err != nil {
			serviceutil.Fatal("cancelled while waiting for input", err)
		}

		database, err := openDatabase(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		svc := archive.NewService(session, session, database, archive.Config{
			OutputDir:   *runOut,
			ReloadEvery: *runReloadEvery,
			Markers:     markers,
		})

		t1 := time.Now()
		stats, err := svc.Run(ctx)
		t2 := time.Now()
		if err != nil {
			slog.Error("archive run failed",
				"err", err,
				"rows", stats.RowsFound,
				"captured", stats.Captured)
			os.Exit(1)
		}

		slog.Info("archive run finished",
			"years", stats.Years,
			"rows", stats.RowsFound,
			"captured", stats.Captured,
			"truncated", stats.Truncated,
			"seconds", t2.Sub(t1).Seconds())
	},
}

func readRunConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config.json5 found, using flags and defaults")
		return Config{}
	}
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func chromeAddr(cfg Config) string {
	if cfg.Chrome != "" {
		return cfg.Chrome
	}
	return *runChrome
}

func targetPattern(cfg Config) string {
	if cfg.Target != "" {
		return cfg.Target
	}
	return *runTarget
}

func openDatabase(cfg Config) (*sql.DB, error) {
	if cfg.Database.File != "" || cfg.Database.Url != "" {
		return cfg.Database.OpenDB(db.Schema)
	}
	if dir := filepath.Dir(*runDb); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return sqliteutil.OpenDB(db.Schema, *runDb)
}
