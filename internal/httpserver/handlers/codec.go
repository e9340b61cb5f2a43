package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nikbrunner/bmsort/internal/exporter"
	"github.com/nikbrunner/bmsort/internal/importer"
	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
)

// Parse reads a Netscape bookmark document and answers with the library as JSON.
func Parse(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lib, err := importer.ParseHTMLBookmarks(r.Body)
		if err != nil {
			d.Logger.Warn("parse failed", logger.Error(err))
			writeError(w, http.StatusBadRequest, "could not read bookmark document")
			return
		}

		d.Logger.Debug("bookmarks parsed",
			logger.Int("folders", len(lib.Folders)),
			logger.Int("bookmarks", len(lib.Bookmarks)),
		)
		writeJSON(w, http.StatusOK, lib)
	}
}

// OmittedHeader carries the number of bookmarks an export left out because
// they are not reachable from the root.
const OmittedHeader = "X-Bookmarks-Omitted"

// Export reads a library as JSON and answers with a Netscape bookmark document.
func Export(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var lib model.Library
		if err := json.NewDecoder(r.Body).Decode(&lib); err != nil {
			writeError(w, http.StatusBadRequest, "invalid library json")
			return
		}

		out, sum := exporter.Export(decodeLibrary(&lib))
		if sum.Omitted > 0 {
			d.Logger.Warn("export omitted unreachable bookmarks", logger.Int("omitted", sum.Omitted))
		}
		w.Header().Set(OmittedHeader, strconv.Itoa(sum.Omitted))
		w.Header().Set("Content-Type", exporter.MIMEType+"; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.DefaultFilename))
		_, _ = w.Write([]byte(out))
	}
}
