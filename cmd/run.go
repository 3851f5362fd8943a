package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/workdeck/workdeck/internal/config"
	"github.com/workdeck/workdeck/internal/console"
	"github.com/workdeck/workdeck/internal/dialogs"
	"github.com/workdeck/workdeck/internal/eventloop"
	"github.com/workdeck/workdeck/internal/logging"
	"github.com/workdeck/workdeck/internal/recent"
	"github.com/workdeck/workdeck/internal/redact"
	"github.com/workdeck/workdeck/internal/server"
	"github.com/workdeck/workdeck/internal/settings"
	"github.com/workdeck/workdeck/internal/tabular"
	"github.com/workdeck/workdeck/internal/workspace"
)

var runCmd = &cobra.Command{
	Use:     "run [files...]",
	Aliases: []string{"r"},
	Short:   "Run the shell, opening a workspace per file argument",
	Long: `Run wires the shell together: debug console, workspace registry,
settings, recent files, importers and the optional console stream server.
Each file argument is imported and opened as a workspace. The shell runs
until interrupted; close-confirmation prompts appear on the terminal.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Console pipeline: redaction engine feeding a bounded buffer.
	engine := redact.NewEngine()
	minLevel, err := cfg.Console.ParseMinLevel()
	if err != nil {
		return err
	}
	buffer := console.NewBuffer(console.Options{
		MaxEntries:     cfg.Console.MaxEntries,
		MinLevel:       minLevel,
		RedactOnIngest: cfg.Console.Redact,
		Engine:         engine,
	})

	termLevel, err := console.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	logger := logging.New(&logging.Config{
		Level:  termLevel,
		Output: os.Stderr,
		Buffer: buffer,
	})

	if cfg.Console.CaptureStdio {
		capture := console.NewStdioCapture(buffer)
		if err := capture.Start(); err != nil {
			logger.Warn(ctx, err, "stdio capture unavailable")
		} else {
			defer capture.Stop()
		}
	}

	// Settings: load failures start fresh, save failures skip the save.
	store := settings.NewStore(cfg.Settings.Path)
	if err := store.Load(); err != nil {
		logger.Debug(ctx, "no readable settings, starting fresh", "path", cfg.Settings.Path)
	}
	if cfg.Settings.Watch {
		if err := store.Save(); err != nil {
			logger.Warn(ctx, err, "settings save skipped")
		}
		watcher, err := settings.NewWatcher(store)
		if err != nil {
			logger.Warn(ctx, err, "settings watch unavailable")
		} else {
			watcher.OnReload(func() {
				logger.Info(ctx, "settings reloaded from disk")
			})
			go func() { _ = watcher.Run(ctx) }()
		}
	}

	recentStore, err := recent.Open(cfg.Recent.DBPath, cfg.Recent.MaxItems)
	if err != nil {
		logger.Warn(ctx, err, "recent-files store degraded to memory only")
	}

	importers := tabular.NewRegistry()
	importers.Register(&tabular.CSVImporter{
		Delimiter: cfg.Import.DelimiterRune(),
		HasHeader: cfg.Import.HasHeader,
		Encoding:  cfg.Import.Encoding,
	})
	if cfg.Import.Excel {
		// Capability flag is on but this build links no Excel importer.
		logger.Warn(ctx, nil, "excel import enabled in config but not linked in this build")
	}

	registry := workspace.NewRegistry(cfg.Workspaces.MaxOpen)
	registry.Subscribe(func(ev workspace.Event) {
		logger.WithComponent("Workspace").Debug(ctx, "registry event",
			"type", ev.Type.String(), "title", ev.Workspace.Title)
	})

	loop := eventloop.New()
	confirmer := &dialogs.StdioConfirmer{In: os.Stdin, Out: os.Stderr}

	if cfg.Server.Enabled {
		srv := server.New(buffer, logger, server.Options{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
				logger.Error(ctx, err, "console server stopped")
			}
		}()
	}

	// Queue the openers; they run once the loop starts.
	for _, path := range args {
		path := path
		if err := loop.Post(func() {
			openWorkspace(ctx, openDeps{
				logger:    logger,
				registry:  registry,
				importers: importers,
				recent:    recentStore,
				confirmer: confirmer,
			}, path)
		}); err != nil {
			return err
		}
	}

	logger.Info(ctx, "workdeck running", "workspaces_max", cfg.Workspaces.MaxOpen)

	// The loop is the owner thread for all registry transitions.
	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	// Loop stopped; shut down on the main goroutine.
	shutdownCtx := context.Background()
	if done, err := registry.CloseAll(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, err, "close-all failed")
	} else if !done {
		logger.Info(shutdownCtx, "close-all cancelled by user")
	}

	if err := store.Save(); err != nil {
		logger.Warn(shutdownCtx, err, "settings save skipped")
	}

	return nil
}

type openDeps struct {
	logger    logging.Logger
	registry  *workspace.Registry
	importers *tabular.Registry
	recent    *recent.Store
	confirmer dialogs.Confirmer
}

// openWorkspace imports one file and registers a workspace for it. Runs
// on the event loop.
func openWorkspace(ctx context.Context, deps openDeps, path string) {
	log := deps.logger.WithComponent("Import")

	table, err := deps.importers.ImportFile(ctx, path)
	if err != nil {
		log.Error(ctx, err, "import failed", "path", path)
		return
	}

	deps.recent.Touch(path)

	title := filepath.Base(path)
	ws := workspace.New(title, "table")
	ws.ConfirmClose = dialogs.CloseConfirm(deps.confirmer, title, ws.Dirty)
	ws.OnClosing = func(ctx context.Context) error {
		log.Debug(ctx, "workspace closing", "title", title)
		return nil
	}

	if err := deps.registry.Add(ctx, ws); err != nil {
		log.Error(ctx, err, "workspace rejected", "title", title)
		return
	}

	log.Info(ctx, "workspace opened", "title", title,
		"columns", len(table.Columns), "rows", len(table.Rows))
	fmt.Fprintf(os.Stderr, "opened %s (%d columns, %d rows)\n",
		title, len(table.Columns), len(table.Rows))
}
