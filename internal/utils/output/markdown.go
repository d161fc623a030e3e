package output

import (
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/law-makers/giftscrape/pkg/models"
	"golang.org/x/net/html"
)

// WriteMarkdown renders products as a GitHub-flavored Markdown table.
// Titles scraped from pages are escaped by the converter.
func WriteMarkdown(w io.Writer, products []models.Product) error {
	var b strings.Builder
	b.WriteString("<table><thead><tr><th>Product</th><th>Price</th><th>Image</th></tr></thead><tbody>")
	for _, p := range products {
		b.WriteString("<tr><td>")
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(p.URL), html.EscapeString(p.Title))
		b.WriteString("</td><td>")
		b.WriteString(html.EscapeString(p.Price))
		b.WriteString("</td><td>")
		if p.Image != "" {
			fmt.Fprintf(&b, `<img src="%s" alt="%s">`, html.EscapeString(p.Image), html.EscapeString(p.Title))
		}
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table>")

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	markdown, err := converter.ConvertString(b.String())
	if err != nil {
		return fmt.Errorf("convert to markdown: %w", err)
	}
	_, err = io.WriteString(w, markdown+"\n")
	return err
}
