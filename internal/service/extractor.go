package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"domaincreates/internal/core/domain"
	"domaincreates/internal/core/ports"
)

// ExtractResult is the successful outcome of an extraction.
type ExtractResult struct {
	Count int
}

// Extractor pulls the domain column out of a fetched report.
type Extractor struct {
	opener  ports.DocumentOpener
	storage ports.Storage
	logger  *zap.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(opener ports.DocumentOpener, storage ports.Storage, logger *zap.Logger) *Extractor {
	return &Extractor{
		opener:  opener,
		storage: storage,
		logger:  logger,
	}
}

// Extract reads every page of the document at docPath and writes the domain
// list to outPath. The output is only written once all pages were read.
// Errors are *domain.OpError of KindParse or KindIO.
func (e *Extractor) Extract(ctx context.Context, docPath, outPath string) (ExtractResult, error) {
	tables, err := e.readTables(ctx, docPath)
	if err != nil {
		return ExtractResult{}, err
	}

	domains := FilterDomains(tables)
	if err := e.storage.SaveDomains(ctx, outPath, domains); err != nil {
		return ExtractResult{}, &domain.OpError{Op: "write domain list", Kind: domain.KindIO, Path: outPath, Err: err}
	}

	e.logger.Info(fmt.Sprintf("Extracted %d domains to %s", len(domains), outPath))
	return ExtractResult{Count: len(domains)}, nil
}

func (e *Extractor) readTables(ctx context.Context, docPath string) ([]domain.Table, error) {
	doc, err := e.opener.Open(docPath)
	if err != nil {
		if domain.KindOf(err) == "" {
			err = &domain.OpError{Op: "open document", Kind: domain.KindParse, Path: docPath, Err: err}
		}
		return nil, err
	}
	defer doc.Close()

	var tables []domain.Table
	pages := doc.NumPages()
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, &domain.OpError{Op: "read pages", Kind: domain.KindIO, Path: docPath, Err: err}
		}

		table, ok, err := doc.Table(n)
		if err != nil {
			if domain.KindOf(err) == "" {
				err = &domain.OpError{Op: fmt.Sprintf("read page %d", n), Kind: domain.KindParse, Path: docPath, Err: err}
			}
			return nil, err
		}
		if !ok {
			e.logger.Debug("no table on page", zap.Int("page", n))
			continue
		}
		e.logger.Debug("table found", zap.Int("page", n), zap.Int("rows", len(table)))
		tables = append(tables, table)
	}
	return tables, nil
}

// FilterDomains collects the first column of every table, skipping each
// table's header row, blank cells and the sentinel header artifact.
func FilterDomains(tables []domain.Table) domain.DomainList {
	domains := domain.DomainList{}
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		for _, row := range table[1:] {
			cell := row.First()
			if !cell.Present {
				continue
			}
			name := strings.TrimSpace(cell.Text)
			if name == "" || name == domain.SentinelHeader {
				continue
			}
			domains = append(domains, name)
		}
	}
	return domains
}
