package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/linkcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Find dead links and gather them in one folder",
	Long: `Probes every bookmark URL. Bookmarks answering 404 or 410 are moved into
a "Dead Links" folder after confirmation. Unreachable hosts are only listed.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().IntP("concurrency", "n", 10, "parallel requests")
	checkCmd.Flags().Duration("timeout", 10*time.Second, "per-request timeout")
	checkCmd.Flags().Float64("rate", 20, "maximum requests per second")
	checkCmd.Flags().StringSlice("exclude", []string{"github.com", "gitlab.com"}, "domains where 404 may mean private")
	checkCmd.Flags().String("folder", linkcheck.DefaultFolder, "folder for dead bookmarks")
	checkCmd.Flags().BoolP("yes", "y", false, "move without asking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	rps, _ := cmd.Flags().GetFloat64("rate")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	folder, _ := cmd.Flags().GetString("folder")
	yes, _ := cmd.Flags().GetBool("yes")
	out := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lib, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	if len(lib.Bookmarks) == 0 {
		fmt.Fprintln(out, "No bookmarks to check")
		return nil
	}

	checker := linkcheck.New(linkcheck.Options{
		Concurrency:       concurrency,
		Timeout:           timeout,
		RequestsPerSecond: rps,
		ExcludeDomains:    exclude,
		Logger:            a.log,
	})
	progress := cmd.ErrOrStderr()
	results := checker.Check(cmd.Context(), lib.Bookmarks, func(completed, total int) {
		fmt.Fprintf(progress, "\rChecking %d/%d", completed, total)
	})
	fmt.Fprintln(progress)

	var report strings.Builder
	dead := 0
	for _, r := range results {
		switch r.Status {
		case linkcheck.Dead:
			dead++
			fmt.Fprintf(&report, "dead         %d  %s\n", r.StatusCode, r.URL)
		case linkcheck.Unreachable:
			fmt.Fprintf(&report, "unreachable  %s  %s\n", r.Reason, r.URL)
		}
	}
	fmt.Fprint(out, report.String())
	fmt.Fprintf(out, "%d checked, %d dead\n", len(results), dead)

	actions := linkcheck.Actions(lib, results, folder)
	if len(actions) == 0 {
		return nil
	}

	if !yes {
		ok, err := confirm(cmd, fmt.Sprintf("Move %d dead bookmarks to %q?", dead, folder), report.String())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Discarded")
			return nil
		}
	}

	next, effects := a.rec.SessionFor(lib).ApplyAll(lib, actions)
	for _, effect := range effects {
		printEffect(out, next, effect)
	}
	return a.commit(lib, next)
}
