// Package markup turns fetched bytes into a queryable document.
// Every lookup degrades to "nothing found" on malformed input.
package markup

import (
	"bytes"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Image is an <img> element seen during a page scan
type Image struct {
	Src   string
	Attrs map[string]string
}

// Document is the Markup Index built from a page body
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from body, transcoding to UTF-8 according to the
// Content-Type charset or the document's own <meta charset>.
func Parse(body []byte, contentType string) (*Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		// Unknown charset: parse the bytes as they are
		reader = bytes.NewReader(body)
	}

	root, err := html.Parse(reader)
	if err != nil {
		return nil, err
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Empty returns a Document with nothing in it. It stands in for the page
// when the fetch failed.
func Empty() *Document {
	return &Document{}
}

// IsEmpty reports whether the document holds no parsed page
func (d *Document) IsEmpty() bool {
	return d == nil || d.doc == nil
}

// MetaContent returns the content of <meta property=name> or <meta name=name>
func (d *Document) MetaContent(name string) (string, bool) {
	if d.IsEmpty() || name == "" {
		return "", false
	}

	var content string
	found := false
	d.doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		prop, hasProp := sel.Attr("property")
		key, hasName := sel.Attr("name")
		if (hasProp && strings.EqualFold(prop, name)) || (hasName && strings.EqualFold(key, name)) {
			if c, ok := sel.Attr("content"); ok && strings.TrimSpace(c) != "" {
				content = strings.TrimSpace(c)
				found = true
				return false
			}
		}
		return true
	})
	return content, found
}

// Title returns the text of the first <title> element
func (d *Document) Title() string {
	if d.IsEmpty() {
		return ""
	}
	return d.doc.Find("title").First().Text()
}

// SelectFirst returns the first element matching selector, or nil when
// nothing matches or the selector does not compile.
func (d *Document) SelectFirst(selector string) *goquery.Selection {
	if d.IsEmpty() || strings.TrimSpace(selector) == "" {
		return nil
	}
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	sel := d.doc.FindMatcher(goquery.SingleMatcher(matcher))
	if sel.Length() == 0 {
		return nil
	}
	return sel.First()
}

// Images enumerates <img> elements in document order. The sequence walks
// the parsed tree once per range loop and stops as soon as the loop breaks.
func (d *Document) Images() iter.Seq[Image] {
	return func(yield func(Image) bool) {
		if d.IsEmpty() {
			return
		}
		d.doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			img := Image{Attrs: make(map[string]string)}
			for _, node := range sel.Nodes {
				for _, attr := range node.Attr {
					img.Attrs[attr.Key] = attr.Val
				}
			}
			img.Src = strings.TrimSpace(img.Attrs["src"])
			return yield(img)
		})
	}
}

// Elements enumerates the elements matching selector in document order
func (d *Document) Elements(selector string) iter.Seq[*goquery.Selection] {
	return func(yield func(*goquery.Selection) bool) {
		if d.IsEmpty() {
			return
		}
		matcher, err := cascadia.Compile(selector)
		if err != nil {
			return
		}
		d.doc.FindMatcher(matcher).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			return yield(sel)
		})
	}
}

// ValidSelector reports whether selector compiles
func ValidSelector(selector string) error {
	_, err := cascadia.Compile(selector)
	return err
}
