package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/store"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

const (
	importExportView = "/admin?tab=import-export"
	maxImportBytes   = 32 << 20
)

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// Export downloads reviews and comments as one JSON document.
func (h *adminHandler) Export(c *gin.Context) {
	ws := view.Workspace(c)
	data, name, err := ws.Backup.ExportFull(c.Request.Context())
	if err != nil {
		view.Fail(c, err)
		view.Redirect(c, importExportView)
		return
	}
	attachment(c, name)
	c.IndentedJSON(http.StatusOK, data)
}

// ExportLegacy downloads the review-only export as the API produced it.
func (h *adminHandler) ExportLegacy(c *gin.Context) {
	ws := view.Workspace(c)
	raw, name, err := ws.Backup.ExportLegacy(c.Request.Context())
	if err != nil {
		view.Fail(c, err)
		view.Redirect(c, importExportView)
		return
	}
	attachment(c, name)
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// Import restores an uploaded export. format=reviews selects the legacy
// review-only endpoint; replace asks the server to drop existing data first.
func (h *adminHandler) Import(c *gin.Context) {
	ws := view.Workspace(c)
	fh, err := c.FormFile("file")
	if err != nil {
		view.Notify(c, workspace.FlashError, "Please choose a file to import.")
		view.Redirect(c, importExportView)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Warnf("open import file: %v", err)
		view.Notify(c, workspace.FlashError, "The file could not be read.")
		view.Redirect(c, importExportView)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxImportBytes))
	if err != nil {
		h.log.Warnf("read import file: %v", err)
		view.Notify(c, workspace.FlashError, "The file could not be read.")
		view.Redirect(c, importExportView)
		return
	}

	ctx := c.Request.Context()
	if c.PostForm("format") == "reviews" {
		res, err := ws.Backup.ImportReviews(ctx, raw)
		if err != nil {
			h.importFailed(c, err)
			return
		}
		view.Notify(c, workspace.FlashSuccess, fmt.Sprintf("Imported %d reviews.", res.ImportedCount))
		view.Redirect(c, importExportView)
		return
	}

	replace := c.PostForm("replace") != ""
	res, err := ws.Backup.ImportFull(ctx, raw, replace)
	if err != nil {
		h.importFailed(c, err)
		return
	}
	h.log.Infof("import of %s: %d reviews, %d comments, replace=%t", fh.Filename, res.ImportedReviews, res.ImportedComments, replace)
	view.Notify(c, workspace.FlashSuccess, fmt.Sprintf("Imported %d reviews and %d comments.", res.ImportedReviews, res.ImportedComments))
	if n := len(res.Errors); n > 0 {
		shown := res.Errors
		if len(shown) > 3 {
			shown = shown[:3]
		}
		view.Notify(c, workspace.FlashWarning, fmt.Sprintf("%d entries could not be imported: %s", n, strings.Join(shown, "; ")))
	}
	view.Redirect(c, importExportView)
}

func (h *adminHandler) importFailed(c *gin.Context, err error) {
	if errors.Is(err, store.ErrInvalidImportFile) {
		view.Notify(c, workspace.FlashError, "The file is not a valid guestbook export.")
	} else {
		view.Fail(c, err)
	}
	view.Redirect(c, importExportView)
}
