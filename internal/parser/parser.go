package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/sirupsen/logrus"
)

// Loader reads a tabular file into loosely typed rows keyed by header.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) ([]dataset.RawRow, error)
}

// Options tunes ingestion. Zero values select the defaults.
type Options struct {
	// Delimiter overrides the CSV separator (default ',' or '\t' for .tsv).
	Delimiter rune
	// SheetName selects an XLSX sheet by name; it wins over SheetIndex.
	SheetName string
	// SheetIndex selects an XLSX sheet, 1-based.
	SheetIndex int
	// Number describes locale separators for numeric strings; zero auto-detects.
	Number dataset.NumberFormat
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no loader handles the file extension.
var ErrUnsupported = errors.New("unsupported data format")

// ReadRows selects a loader by filename and returns the raw rows.
func ReadRows(path string, opt Options) ([]dataset.RawRow, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// LoadRecords reads path and cleans the rows into validated records. Dropped
// rows are reported through log when it is non-nil.
func LoadRecords(path string, opt Options, log *logrus.Logger) ([]dataset.Record, dataset.CleanStats, error) {
	rows, err := ReadRows(path, opt)
	if err != nil {
		return nil, dataset.CleanStats{}, err
	}
	records, st := dataset.CleanWithStats(rows, opt.Number)
	if log != nil {
		entry := log.WithFields(logrus.Fields{
			"file":    filepath.Base(path),
			"rows":    st.Total,
			"kept":    st.Kept,
			"dropped": st.Dropped,
		})
		if st.Dropped > 0 {
			entry.Warn("dropped invalid rows")
		} else {
			entry.Debug("loaded records")
		}
	}
	return records, st, nil
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(jsonLoader{})
}
