package export

import (
	"github.com/parquet-go/parquet-go"
)

// ParquetSaver writes slices as a parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(rows []Record, path string) error {
	return parquet.WriteFile(path, rows)
}
