package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// DateLayout is the DD-MM-YYYY form used in URLs and file names.
const DateLayout = "02-01-2006"

// SentinelHeader is a mis-parsed header artifact that shows up as a data row.
const SentinelHeader = "Domain User Form"

// TargetDate is the calendar day whose report is fetched.
type TargetDate struct {
	t time.Time
}

// ParseTargetDate parses s strictly as DD-MM-YYYY.
func ParseTargetDate(s string) (TargetDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TargetDate{}, &OpError{
			Op:   "parse date",
			Kind: KindDateParse,
			Err:  fmt.Errorf("%q is not a DD-MM-YYYY date: %w", s, err),
		}
	}
	return TargetDate{t: t}, nil
}

// NewTargetDate truncates t to its calendar day in t's location.
func NewTargetDate(t time.Time) TargetDate {
	y, m, d := t.Date()
	return TargetDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d TargetDate) String() string { return d.t.Format(DateLayout) }

// Year returns the four digit year, e.g. "2024".
func (d TargetDate) Year() string { return d.t.Format("2006") }

// Month returns the zero padded month, e.g. "06".
func (d TargetDate) Month() string { return d.t.Format("01") }

// Time returns the underlying day at midnight UTC.
func (d TargetDate) Time() time.Time { return d.t }

// Layout holds the on-disk locations for one target date.
type Layout struct {
	Dir          string
	DocumentPath string
	OutputPath   string
}

// LayoutFor derives the paths for d under root. It touches no filesystem.
func LayoutFor(root string, d TargetDate) Layout {
	if root == "" {
		root = "."
	}
	dir := filepath.Join(root, d.Year(), d.Month())
	return Layout{
		Dir:          dir,
		DocumentPath: filepath.Join(dir, "domain-creates_"+d.String()+".pdf"),
		OutputPath:   filepath.Join(dir, "domains_"+d.String()+".txt"),
	}
}

// Cell is one table cell. Present is false when the row has no text in that column.
type Cell struct {
	Text    string
	Present bool
}

// TextCell builds a present cell.
func TextCell(s string) Cell { return Cell{Text: s, Present: true} }

// Row is a table row in column order.
type Row []Cell

// First returns the first column, or a missing cell for an empty row.
func (r Row) First() Cell {
	if len(r) == 0 {
		return Cell{}
	}
	return r[0]
}

// Table is a detected table, header row included.
type Table []Row

// DomainList is the ordered result of an extraction: page order, then row order.
type DomainList []string

// Stage tracks how far a run got.
type Stage string

const (
	StageStart         Stage = "START"
	StageFetching      Stage = "FETCHING"
	StageFetchFailed   Stage = "FETCH_FAILED"
	StageExtracting    Stage = "EXTRACTING"
	StageExtractFailed Stage = "EXTRACT_FAILED"
	StageDone          Stage = "DONE"
)

// Terminal reports whether no further transition is possible from s.
func (s Stage) Terminal() bool {
	return s == StageFetchFailed || s == StageExtractFailed || s == StageDone
}

// RunResult holds the outcome of a single run.
type RunResult struct {
	RunID       string
	Date        TargetDate
	Layout      Layout
	URL         string
	Stage       Stage
	Domains     int
	Success     bool
	Err         error
	StartedAt   time.Time
	CompletedAt time.Time
}
