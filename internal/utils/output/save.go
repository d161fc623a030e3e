// Package output exports extraction results to files.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/giftscrape/pkg/models"
)

// Writer renders products in one format
type Writer func(w io.Writer, products []models.Product) error

var writers = map[string]Writer{
	".json": WriteJSON,
	".csv":  WriteCSV,
	".md":   WriteMarkdown,
}

// ForPath returns the writer matching the file extension of path
func ForPath(path string) (Writer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	w, ok := writers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q (use .json, .csv or .md)", ext)
	}
	return w, nil
}

// Save writes products to path in the format given by its extension
func Save(path string, products []models.Product) error {
	write, err := ForPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(file, products); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
