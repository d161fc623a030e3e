package output

import (
	"encoding/csv"
	"io"

	"github.com/law-makers/giftscrape/pkg/models"
)

var csvHeader = []string{"url", "title", "image", "price", "title_source", "image_source", "price_source"}

// WriteCSV writes one row per product, with the winning strategy of each field
func WriteCSV(w io.Writer, products []models.Product) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{
			p.URL,
			p.Title,
			p.Image,
			p.Price,
			p.Sources[models.FieldTitle],
			p.Sources[models.FieldImage],
			p.Sources[models.FieldPrice],
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
