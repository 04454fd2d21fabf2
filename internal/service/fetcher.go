package service

import (
	"context"

	"go.uber.org/zap"

	"domaincreates/internal/adapters/downloader"
	"domaincreates/internal/core/domain"
	"domaincreates/internal/core/ports"
)

// Fetcher downloads the report for a date and stores it verbatim.
type Fetcher struct {
	downloader  ports.Downloader
	storage     ports.Storage
	urlTemplate string
	logger      *zap.Logger
}

// NewFetcher creates a Fetcher. An empty template falls back to the registry URL.
func NewFetcher(dl ports.Downloader, storage ports.Storage, urlTemplate string, logger *zap.Logger) *Fetcher {
	if urlTemplate == "" {
		urlTemplate = downloader.DefaultURLTemplate
	}
	return &Fetcher{
		downloader:  dl,
		storage:     storage,
		urlTemplate: urlTemplate,
		logger:      logger,
	}
}

// URL returns the report URL for date.
func (f *Fetcher) URL(date domain.TargetDate) string {
	return downloader.URLFor(f.urlTemplate, date)
}

// Fetch writes the response body for date to destPath. Any failure is a
// KindFetch error and leaves nothing at destPath.
func (f *Fetcher) Fetch(ctx context.Context, date domain.TargetDate, destPath string) (string, error) {
	url := f.URL(date)

	body, err := f.downloader.Download(ctx, url)
	if err != nil {
		return url, &domain.OpError{Op: "download report", Kind: domain.KindFetch, Err: err}
	}
	defer body.Close()

	if err := f.storage.SaveDocument(ctx, destPath, body); err != nil {
		return url, &domain.OpError{Op: "save report", Kind: domain.KindFetch, Path: destPath, Err: err}
	}

	f.logger.Info("Downloaded: "+url, zap.String("path", destPath))
	return url, nil
}
