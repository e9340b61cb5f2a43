package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsort/internal/exporter"
	"github.com/nikbrunner/bmsort/internal/importer"
	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/review"
	"github.com/nikbrunner/bmsort/internal/search"
)

var importCmd = &cobra.Command{
	Use:   "import [file.html]",
	Short: "Replace the library with a Netscape bookmark export",
	Long: `Parses a Netscape bookmark export and makes it the current library.
The previous library is kept and can be restored with "bm undo".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the library as a Netscape bookmark file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the library as a tree",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy search bookmarks by title and URL, then open one",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFind,
}

func init() {
	importCmd.Flags().Bool("clipboard", false, "read the export from the clipboard")
	exportCmd.Flags().Bool("clipboard", false, "copy the export to the clipboard")
	findCmd.Flags().Bool("print", false, "print the URL instead of opening it")
	findCmd.Flags().Bool("copy", false, "copy the URL to the clipboard instead of opening it")
}

func runImport(cmd *cobra.Command, args []string) error {
	fromClipboard, _ := cmd.Flags().GetBool("clipboard")
	if !fromClipboard && len(args) == 0 {
		return fmt.Errorf("need a file to import or --clipboard")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var lib *model.Library
	if fromClipboard {
		text, err := clipboard.ReadAll()
		if err != nil {
			return fmt.Errorf("reading clipboard: %w", err)
		}
		lib, err = importer.ParseString(text)
		if err != nil {
			return fmt.Errorf("parsing HTML: %w", err)
		}
	} else {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening file: %w", err)
		}
		defer file.Close()

		lib, err = importer.ParseHTMLBookmarks(file)
		if err != nil {
			return fmt.Errorf("parsing HTML: %w", err)
		}
	}

	prev, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	if err := a.commit(prev, lib); err != nil {
		return err
	}

	a.log.Debug("library imported",
		logger.Int("bookmarks", len(lib.Bookmarks)),
		logger.Int("folders", len(lib.Folders)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks, %d folders\n", len(lib.Bookmarks), len(lib.Folders))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	toClipboard, _ := cmd.Flags().GetBool("clipboard")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lib, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	html, sum := exporter.Export(lib)
	if sum.Omitted > 0 {
		a.log.Warn("bookmarks outside the folder tree were not exported", logger.Int("omitted", sum.Omitted))
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d bookmarks point at folders that no longer exist and were not exported\n", sum.Omitted)
	}

	if toClipboard {
		if err := clipboard.WriteAll(html); err != nil {
			return fmt.Errorf("writing clipboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %d bookmarks, %d folders to the clipboard\n",
			sum.Bookmarks, sum.Folders)
		return nil
	}

	outputPath := exporter.DefaultFilename
	if len(args) == 1 {
		outputPath = args[0]
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n",
		sum.Bookmarks, sum.Folders, outputPath)
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lib, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), review.RenderTree(lib, review.DefaultStyles()))
	return nil
}

func runFind(cmd *cobra.Command, args []string) error {
	printOnly, _ := cmd.Flags().GetBool("print")
	copyURL, _ := cmd.Flags().GetBool("copy")
	query := strings.Join(args, " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lib, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}

	results := search.FuzzySearchBookmarks(lib, query)
	if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No bookmarks found for '%s'\n", query)
		return nil
	}

	selected := results[0].Bookmark
	if len(results) > 1 && !interactive(cmd.InOrStdin()) {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.Bookmark.Title, r.Bookmark.URL, r.FolderPath)
		}
		return nil
	}
	if len(results) > 1 {
		selected, err = review.RunPicker(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), results, query)
		if err != nil {
			return fmt.Errorf("running picker: %w", err)
		}
		if selected == nil {
			return nil
		}
	}

	switch {
	case printOnly:
		fmt.Fprintln(cmd.OutOrStdout(), selected.URL)
	case copyURL:
		if err := clipboard.WriteAll(selected.URL); err != nil {
			return fmt.Errorf("writing clipboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied: %s\n", selected.URL)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", selected.Title)
		openURL(selected.URL)
	}
	return nil
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
