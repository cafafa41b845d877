// Package ingest loads tabular source files into domain collections.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/civiclab/radca/internal/models"
)

// ReadFile parses a CSV or XLSX file into documents, one per data row.
// The header row is skipped and each row's cells are joined with " | ";
// every document carries the base filename as its source.
func ReadFile(path string) ([]models.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func readCSV(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Government exports are ragged; accept rows of any width and keep
	// going past rows the parser cannot make sense of.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	source := filepath.Base(path)
	var docs []models.Document
	first := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if first {
			first = false
			continue
		}
		if doc, ok := rowDocument(row, source); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func readXLSX(path string) ([]models.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}

	source := filepath.Base(path)
	var docs []models.Document
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if doc, ok := rowDocument(row, source); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// rowDocument turns one row into a document, dropping rows with no content.
func rowDocument(row []string, source string) (models.Document, bool) {
	cells := make([]string, 0, len(row))
	empty := true
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			empty = false
		}
		cells = append(cells, cell)
	}
	if empty {
		return models.Document{}, false
	}
	return models.Document{
		Content: strings.Join(cells, " | "),
		Source:  source,
	}, true
}
