package export

import (
	"path/filepath"
	"strings"
)

// Saver writes one batch of export rows to a file.
type Saver interface {
	Save(rows []Record, path string) error
	Extension() string
}

// NewSaver creates the implementation for a format name (csv,
// parquet, json). Returns nil if the format is not supported.
func NewSaver(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// SaverForPath picks the saver from the target path's extension.
// Unknown or missing extensions fall back to CSV, the store's own
// format.
func SaverForPath(path string) Saver {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if s := NewSaver(ext); s != nil {
		return s
	}
	return CSVSaver{}
}
