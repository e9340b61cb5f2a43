package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/config"
	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
	"github.com/nikbrunner/bmsort/internal/review"
	"github.com/nikbrunner/bmsort/internal/storage"
)

var errNotInteractive = errors.New("input is not a terminal, pass --yes to apply without review")

var (
	cfgFile string
	verbose bool
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "bm",
	Short: "Organize browser bookmarks with AI suggestions",
	Long: `bm imports a Netscape bookmark export, reorganizes it with the help of a
language model and exports the result for re-import into any browser.

Examples:
  bm import bookmarks.html        # replace the library with an export
  bm tree                         # show the current library
  bm suggest "group by topic"     # propose a new structure, review, apply
  bm command "move news to Read Later"
  bm undo                         # restore the library before the last change
  bm export                       # write organized_bookmarks.html`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "settings file (default: ~/.config/bm/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database to use instead of the default library")

	rootCmd.AddCommand(importCmd, exportCmd, treeCmd, findCmd, checkCmd, suggestCmd, commandCmd, undoCmd, serveCmd)
}

// app holds what every command needs.
type app struct {
	settings *config.Settings
	log      logger.Logger
	store    storage.Storage
	backup   *storage.JSONStorage
	rec      *reconcile.Reconciler
}

func openApp() (*app, error) {
	path := cfgFile
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, fmt.Errorf("locating settings: %w", err)
		}
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	level := settings.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	var store storage.Storage
	if dbPath != "" {
		store, err = storage.NewSQLiteStorage(dbPath)
	} else {
		store, err = storage.OpenStorage(settings.DataDir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}

	return &app{
		settings: settings,
		log:      log,
		store:    store,
		backup:   storage.OpenBackup(settings.DataDir),
		rec:      reconcile.New(log),
	}, nil
}

func (a *app) Close() {
	if err := storage.Close(a.store); err != nil {
		a.log.Warn("closing library", logger.Error(err))
	}
	_ = a.log.Sync()
}

// commit saves next and keeps prev as the undo point.
func (a *app) commit(prev, next *model.Library) error {
	if err := storage.Commit(a.store, a.backup, prev, next); err != nil {
		return fmt.Errorf("saving library: %w", err)
	}
	return nil
}

func (a *app) aiClient() (*ai.Client, error) {
	return ai.NewClient(a.settings.APIKey,
		ai.WithModel(a.settings.Model),
		ai.WithLogger(a.log),
	)
}

func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm asks an apply/discard question on the terminal.
func confirm(cmd *cobra.Command, title, body string) (bool, error) {
	if !interactive(cmd.InOrStdin()) {
		return false, errNotInteractive
	}
	ok, err := review.RunConfirm(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), title, body)
	if err != nil {
		return false, fmt.Errorf("asking for confirmation: %w", err)
	}
	return ok, nil
}
