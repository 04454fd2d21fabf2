package ports

import (
	"context"
	"io"

	"domaincreates/internal/core/domain"
)

// Downloader defines the contract for fetching the report.
type Downloader interface {
	// Download issues a single GET for the given URL.
	// Returns a ReadCloser that the caller must close.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Storage defines the contract for the year/month output tree.
type Storage interface {
	// EnsureDir creates dir and its parents. Existing directories are fine.
	EnsureDir(ctx context.Context, dir string) error

	// SaveDocument writes the reader to path. The file only appears once
	// the reader is fully drained.
	SaveDocument(ctx context.Context, path string, reader io.Reader) error

	// SaveDomains writes the list newline-joined, without a trailing newline.
	SaveDomains(ctx context.Context, path string, domains domain.DomainList) error

	// Remove deletes the file at path.
	Remove(ctx context.Context, path string) error
}

// DocumentOpener opens a fetched report for table extraction.
type DocumentOpener interface {
	Open(path string) (Document, error)
}

// Document is an opened report. Pages are numbered from 1.
type Document interface {
	NumPages() int

	// Table returns the first table on the page, if any.
	Table(page int) (domain.Table, bool, error)

	Close() error
}
