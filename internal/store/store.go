package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
)

type CSVer interface {
	ToCSV() []string
	CSVHeader() []string
}

const utf8BOM = "\xEF\xBB\xBF"

// WriteCSV writes header and rows to path as UTF-8 with a byte order mark.
// Nothing is written when rows is empty; the returned bool reports whether a
// file was produced.
func WriteCSV(path string, header []string, rows [][]string) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	// Write BOM for Excel compatibility
	if _, err := file.WriteString(utf8BOM); err != nil {
		return false, err
	}
	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return false, err
	}
	if err := writer.WriteAll(rows); err != nil {
		return false, err
	}
	return true, file.Close()
}

func rowsOf[T CSVer](items []T) [][]string {
	out := make([][]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ToCSV())
	}
	return out
}
