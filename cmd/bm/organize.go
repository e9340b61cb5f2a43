package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/hoststore"
	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/reconcile"
	"github.com/nikbrunner/bmsort/internal/review"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [prompt]",
	Short: "Propose a complete new folder structure and apply it after review",
	Long: `Sends the library to the language model and shows the proposed structure
as a diff. The proposal is applied after confirmation, immediately with --yes,
or always when autoSort is enabled in the settings.`,
	RunE: runSuggest,
}

var commandCmd = &cobra.Command{
	Use:   "command <text>",
	Short: "Carry out a free-text instruction such as \"move news to Read Later\"",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCommand,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the library as it was before the last change",
	Long: `Swaps the current library with the one saved before the last import,
suggestion or command. Running undo twice redoes the change.`,
	Args: cobra.NoArgs,
	RunE: runUndo,
}

func init() {
	suggestCmd.Flags().BoolP("yes", "y", false, "apply without asking")
	commandCmd.Flags().Bool("dry-run", false, "show what the command would change without saving")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	prompt := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.aiClient()
	if err != nil {
		return err
	}

	lib, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	if len(lib.Bookmarks) == 0 {
		fmt.Fprintln(out, "The library is empty, import bookmarks first")
		return nil
	}

	fmt.Fprintf(out, "Asking for a new structure for %d bookmarks...\n", len(lib.Bookmarks))
	proposal, err := client.SuggestStructure(cmd.Context(), lib, prompt)
	if err != nil {
		return fmt.Errorf("suggesting structure: %w", err)
	}

	next, report := a.rec.ApplyProposal(lib, *proposal)

	styles := review.DefaultStyles()
	if proposal.Reasoning != "" {
		fmt.Fprintln(out, review.RenderSummary("Reasoning", proposal.Reasoning, styles))
	}
	diff := review.RenderDiff(lib, next, styles)
	fmt.Fprintf(out, "%d folders, %d bookmarks assigned, %d skipped\n",
		report.FoldersCreated, report.Assigned, report.Skipped)
	printDiagnostics(out, report.Diagnostics)

	apply := yes || a.settings.AutoSort
	if !apply {
		if apply, err = confirm(cmd, "Apply this reorganization?", diff); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, diff)
	}

	if !apply {
		fmt.Fprintln(out, "Discarded")
		return nil
	}
	if err := a.commit(lib, next); err != nil {
		return err
	}
	fmt.Fprintln(out, "Applied. Run \"bm undo\" to restore the previous structure.")
	return nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	text := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.aiClient()
	if err != nil {
		return err
	}

	lib, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}

	if dryRun {
		batch, preview, err := hoststore.NewDriver(a.rec, a.log).Preview(cmd.Context(), lib)
		if err != nil {
			return err
		}
		reply, err := client.ProcessCommand(cmd.Context(), lib, text, func(action model.Action) {
			printOutcome(out, batch.Apply(cmd.Context(), action))
		})
		if err != nil {
			return fmt.Errorf("processing command: %w", err)
		}
		fmt.Fprintln(out, reply)
		fmt.Fprint(out, review.RenderDiff(lib, preview.Library(), review.DefaultStyles()))
		fmt.Fprintln(out, "Dry run, nothing saved")
		return nil
	}

	// A database backend takes actions one at a time as a live bookmark store.
	if live, ok := a.store.(hoststore.Store); ok {
		if err := a.backup.Save(lib); err != nil {
			return fmt.Errorf("saving undo point: %w", err)
		}

		batch, err := hoststore.NewDriver(a.rec, a.log).Begin(cmd.Context(), live)
		if err != nil {
			return err
		}
		reply, err := client.ProcessCommand(cmd.Context(), lib, text, func(action model.Action) {
			printOutcome(out, batch.Apply(cmd.Context(), action))
		})
		if err != nil {
			return fmt.Errorf("processing command: %w", err)
		}
		fmt.Fprintln(out, reply)
		return nil
	}

	session := a.rec.SessionFor(lib)
	current := lib
	reply, err := client.ProcessCommand(cmd.Context(), lib, text, func(action model.Action) {
		var effect reconcile.Effect
		current, effect = session.Apply(current, action)
		printEffect(out, current, effect)
	})
	if err != nil {
		return fmt.Errorf("processing command: %w", err)
	}

	if err := a.commit(lib, current); err != nil {
		return err
	}
	fmt.Fprintln(out, reply)
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.backup.Exists() {
		return fmt.Errorf("nothing to undo")
	}

	prev, err := a.backup.Load()
	if err != nil {
		return fmt.Errorf("loading undo point: %w", err)
	}
	current, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	if err := a.commit(current, prev); err != nil {
		return err
	}

	a.log.Debug("library restored", logger.Int("bookmarks", len(prev.Bookmarks)))
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d bookmarks, %d folders\n", len(prev.Bookmarks), len(prev.Folders))
	return nil
}

func printEffect(w io.Writer, lib *model.Library, effect reconcile.Effect) {
	switch a := effect.Action.(type) {
	case model.CreateFolder:
		fmt.Fprintf(w, "  created folder %s\n", lib.FolderPath(effect.CreatedFolderID))
	case model.MoveBookmarks:
		if !effect.Aborted {
			target := lib.FolderPath(effect.TargetFolderID)
			if target == "" {
				target = a.TargetFolderID
			}
			fmt.Fprintf(w, "  moved %d bookmarks to %s\n", len(effect.Moved), target)
		}
	}
	printDiagnostics(w, effect.Diagnostics)
}

func printOutcome(w io.Writer, o hoststore.Outcome) {
	switch a := o.Action.(type) {
	case model.CreateFolder:
		if o.CreatedID != "" {
			fmt.Fprintf(w, "  created folder %s\n", a.Name)
		}
	case model.MoveBookmarks:
		if len(o.Moved) > 0 {
			fmt.Fprintf(w, "  moved %d bookmarks to %s\n", len(o.Moved), a.TargetFolderID)
		}
	}
	for _, err := range o.Errors {
		fmt.Fprintf(w, "  failed: %v\n", err)
	}
	printDiagnostics(w, o.Diagnostics)
}

func printDiagnostics(w io.Writer, diags []reconcile.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "  note: %s\n", d)
	}
}
