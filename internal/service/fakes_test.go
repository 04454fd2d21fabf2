package service

import (
	"errors"

	"domaincreates/internal/core/domain"
	"domaincreates/internal/core/ports"
)

type fakePage struct {
	table domain.Table
	ok    bool
	err   error
}

type fakeDocument struct {
	pages  []fakePage
	closed bool
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) Table(n int) (domain.Table, bool, error) {
	p := d.pages[n-1]
	return p.table, p.ok, p.err
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc    *fakeDocument
	err    error
	opened []string
}

func (o *fakeOpener) Open(path string) (ports.Document, error) {
	o.opened = append(o.opened, path)
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type recorderFunc func(*domain.RunResult)

func (f recorderFunc) ObserveRun(r *domain.RunResult) { f(r) }

func tablePage(rows ...domain.Row) fakePage {
	return fakePage{table: domain.Table(rows), ok: true}
}

func row(cells ...string) domain.Row {
	r := make(domain.Row, len(cells))
	for i, c := range cells {
		r[i] = domain.TextCell(c)
	}
	return r
}

var errCorrupt = errors.New("malformed xref table")
