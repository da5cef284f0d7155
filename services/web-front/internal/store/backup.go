package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

var ErrInvalidImportFile = errors.New("invalid import file")

// Reloader is a list that has to be refreshed after an import.
type Reloader interface {
	FetchReviews(ctx context.Context, override *domain.ReviewQuery) error
}

// BackupService exports and restores the guestbook through the admin API.
type BackupService struct {
	api     *client.Client
	reviews Reloader
	log     *logger.Logger
	now     func() time.Time
}

func NewBackupService(api *client.Client, reviews Reloader, log *logger.Logger) *BackupService {
	return &BackupService{api: api, reviews: reviews, log: log, now: time.Now}
}

// ExportFull fetches reviews and comments along with the file name to save them under.
func (b *BackupService) ExportFull(ctx context.Context) (*domain.FullExport, string, error) {
	data, err := b.api.ExportFull(ctx)
	if err != nil {
		return nil, "", err
	}
	b.log.Infof("full export: %d reviews, %d comments", data.TotalReviews, data.TotalComments)
	return data, domain.ExportFilename(b.now()), nil
}

// ExportLegacy returns the review-only export body as the server sent it.
func (b *BackupService) ExportLegacy(ctx context.Context) (json.RawMessage, string, error) {
	raw, err := b.api.ExportRaw(ctx)
	if err != nil {
		return nil, "", err
	}
	return raw, "guestbook-export-" + b.now().Format("2006-01-02") + ".json", nil
}

// ImportFull restores a full export. Unparseable input is rejected without
// contacting the server. The review list is reloaded after every import,
// including imports that report errors.
func (b *BackupService) ImportFull(ctx context.Context, raw []byte, replace bool) (*domain.ImportResult, error) {
	var in domain.FullImport
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	if in.Reviews == nil {
		return nil, fmt.Errorf("%w: no reviews array", ErrInvalidImportFile)
	}
	result, err := b.api.ImportFull(ctx, in, replace)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		b.log.Warnf("import finished with %d errors", len(result.Errors))
	}
	b.reload(ctx)
	return result, nil
}

// ImportReviews posts a review-only payload to the legacy import endpoint.
func (b *BackupService) ImportReviews(ctx context.Context, raw []byte) (*domain.ReviewImportResult, error) {
	var in domain.ReviewImport
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	if len(in.Reviews) == 0 {
		return nil, fmt.Errorf("%w: no reviews", ErrInvalidImportFile)
	}
	if in.Source == "" {
		in.Source = "manual"
	}
	result, err := b.api.ImportReviews(ctx, in)
	if err != nil {
		return nil, err
	}
	b.reload(ctx)
	return result, nil
}

func (b *BackupService) reload(ctx context.Context) {
	if b.reviews == nil {
		return
	}
	if err := b.reviews.FetchReviews(ctx, nil); err != nil {
		b.log.Debugf("reload after import: %v", err)
	}
}
