package extract

import (
	"context"

	"github.com/law-makers/giftscrape/pkg/models"
)

// Title strategy names
const (
	StrategyOGTitle   = "og:title"
	StrategyDocTitle  = "document-title"
	StrategyURLTitle  = "url-title"
	SourcePlaceholder = "placeholder"
)

// TitleChain returns the title strategies in order. The placeholder is
// applied by the caller when the chain finds nothing.
func TitleChain() Chain {
	return Chain{
		Field: models.FieldTitle,
		Strategies: []Strategy{
			{Name: StrategyOGTitle, Fn: ogTitle},
			{Name: StrategyDocTitle, Fn: documentTitle},
			{Name: StrategyURLTitle, Fn: urlTitle},
		},
	}
}

func ogTitle(_ context.Context, in *Input) (string, bool) {
	raw, ok := in.Doc.MetaContent("og:title")
	if !ok {
		return "", false
	}
	return acceptTitle(in, raw)
}

func documentTitle(_ context.Context, in *Input) (string, bool) {
	return acceptTitle(in, in.Doc.Title())
}

func urlTitle(_ context.Context, in *Input) (string, bool) {
	title, ok := TitleFromURL(in.RawURL)
	if !ok {
		return "", false
	}
	return acceptTitle(in, title)
}

func acceptTitle(in *Input, raw string) (string, bool) {
	var sep string
	if in.Override != nil {
		sep = in.Override.TitleSeparator
	}
	title := CleanTitle(raw, sep)
	if !ValidTitle(title, in.Host(), in.MinTitle) {
		return "", false
	}
	return title, true
}
