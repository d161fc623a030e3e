package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/giftscrape/pkg/models"
)

// WriteJSON writes products as an indented JSON array
func WriteJSON(w io.Writer, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(products)
}
