package extract

import (
	"context"
	"strings"

	"github.com/law-makers/giftscrape/internal/engine/markup"
	urlutil "github.com/law-makers/giftscrape/internal/utils/url"
	"github.com/law-makers/giftscrape/pkg/models"
)

// Image strategy names
const (
	StrategySiteURLRule    = "site-url-rule"
	StrategyOGImage        = "og:image"
	StrategyTwitterImage   = "twitter:image"
	StrategySiteSelector   = "site-selector"
	StrategyStructuredData = "structured-data"
	StrategyPageScan       = "page-scan"
	SourceExternalSearch   = "external-search"
)

var imageAttrs = []string{"data-old-hires", "data-src", "src"}

// ImageChain returns the image strategies in order. Site strategies report
// nothing when no override applies.
func ImageChain() Chain {
	return Chain{
		Field: models.FieldImage,
		Strategies: []Strategy{
			{Name: StrategySiteURLRule, Fn: siteURLRule},
			{Name: StrategyOGImage, Fn: metaImage("og:image", "og:image:secure_url")},
			{Name: StrategyTwitterImage, Fn: metaImage("twitter:image", "twitter:image:src")},
			{Name: StrategySiteSelector, Fn: siteImageSelector},
			{Name: StrategyStructuredData, Fn: structuredImage},
			{Name: StrategyPageScan, Fn: pageScanImage},
		},
	}
}

func siteURLRule(_ context.Context, in *Input) (string, bool) {
	rule := in.Override.Rule()
	if rule == nil {
		return "", false
	}
	return rule(in.URL)
}

func metaImage(names ...string) func(context.Context, *Input) (string, bool) {
	return func(_ context.Context, in *Input) (string, bool) {
		for _, name := range names {
			if content, ok := in.Doc.MetaContent(name); ok {
				if resolved, ok := resolveImage(in, content); ok {
					return resolved, true
				}
			}
		}
		return "", false
	}
}

func siteImageSelector(_ context.Context, in *Input) (string, bool) {
	if in.Override == nil || in.Override.ImageSelector == "" {
		return "", false
	}
	sel := in.Doc.SelectFirst(in.Override.ImageSelector)
	if sel == nil {
		return "", false
	}
	for _, attr := range imageAttrs {
		if v, ok := sel.Attr(attr); ok {
			if resolved, ok := resolveImage(in, v); ok {
				return resolved, true
			}
		}
	}
	return "", false
}

func structuredImage(_ context.Context, in *Input) (string, bool) {
	for _, block := range in.Doc.StructuredData() {
		if !block.Has("image") {
			continue
		}
		if resolved, ok := blockImage(in, block); ok {
			return resolved, true
		}
	}
	return "", false
}

// blockImage accepts image as a string, a list of strings or an object
// with url. Unresolvable values fall through to the next form.
func blockImage(in *Input, block markup.StructuredData) (string, bool) {
	if v, ok := block.Scalar("image"); ok {
		if resolved, ok := resolveImage(in, v); ok {
			return resolved, true
		}
	}
	if v, ok := block.Scalar("image", "[0]"); ok {
		if resolved, ok := resolveImage(in, v); ok {
			return resolved, true
		}
	}
	if obj, ok := block.Object("image"); ok {
		if v, ok := obj.Scalar("url"); ok {
			return resolveImage(in, v)
		}
	}
	return "", false
}

func pageScanImage(_ context.Context, in *Input) (string, bool) {
	for img := range in.Doc.Images() {
		src := img.Src
		lower := strings.ToLower(src)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			continue
		}
		if strings.Contains(lower, "logo") {
			continue
		}
		return src, true
	}
	return "", false
}

// resolveImage makes ref absolute against the page URL
func resolveImage(in *Input, ref string) (string, bool) {
	base := in.PageURL
	if base == nil {
		base = in.URL
	}
	return urlutil.ResolveURL(base, ref)
}
