package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/law-makers/giftscrape/pkg/models"
)

// Price strategy names
const (
	StrategySplitPrice = "split-price"
	StrategyTextScan   = "text-scan"
	SourceDefault      = "default"
)

var (
	priceClass  = regexp.MustCompile(`(?i)price|amount|offer`)
	priceAmount = regexp.MustCompile(`(?:[€$£]\s?)?\d+(?:[ \x{00a0}\x{202f}.,]\d{3})*[.,]\d{2}(?:\s?[€$£])?`)
	nonDigits   = regexp.MustCompile(`\D`)
)

// Offer is the price data found in a structured-data block
type Offer struct {
	Price    string
	Currency string
}

// PriceChain returns the price strategies in order. "Prix libre" is
// applied by the caller when the chain finds nothing.
func PriceChain() Chain {
	return Chain{
		Field: models.FieldPrice,
		Strategies: []Strategy{
			{Name: StrategyStructuredData, Fn: structuredPrice},
			{Name: StrategySiteSelector, Fn: sitePriceSelector},
			{Name: StrategySplitPrice, Fn: splitPrice},
			{Name: StrategyTextScan, Fn: textScanPrice},
		},
	}
}

// Offers lists the first offer of every structured-data block that has one
func Offers(in *Input) []Offer {
	var offers []Offer
	for _, block := range in.Doc.StructuredData() {
		obj, ok := block.Object("offers")
		if !ok {
			continue
		}
		price, ok := obj.Scalar("price")
		if !ok {
			price, ok = obj.Scalar("lowPrice")
		}
		if !ok {
			continue
		}
		currency, _ := obj.Scalar("priceCurrency")
		offers = append(offers, Offer{Price: price, Currency: currency})
	}
	return offers
}

func structuredPrice(_ context.Context, in *Input) (string, bool) {
	for _, offer := range Offers(in) {
		if price, ok := CleanPriceCurrency(offer.Price, offer.Currency); ok {
			return price, true
		}
	}
	return "", false
}

func sitePriceSelector(_ context.Context, in *Input) (string, bool) {
	if in.Override == nil || in.Override.PriceSelector == "" {
		return "", false
	}
	sel := in.Doc.SelectFirst(in.Override.PriceSelector)
	if sel == nil {
		return "", false
	}
	return CleanPrice(sel.Text())
}

func splitPrice(_ context.Context, in *Input) (string, bool) {
	wholeSel := in.Doc.SelectFirst(".a-price-whole")
	if wholeSel == nil {
		return "", false
	}
	whole := nonDigits.ReplaceAllString(wholeSel.Text(), "")
	if whole == "" {
		return "", false
	}

	fraction := "00"
	if fracSel := in.Doc.SelectFirst(".a-price-fraction"); fracSel != nil {
		if f := nonDigits.ReplaceAllString(fracSel.Text(), ""); f != "" {
			fraction = f
		}
	}

	var currency string
	if symSel := in.Doc.SelectFirst(".a-price-symbol"); symSel != nil {
		currency = strings.TrimSpace(symSel.Text())
	}
	return CleanPriceCurrency(whole+"."+fraction, currency)
}

func textScanPrice(_ context.Context, in *Input) (string, bool) {
	for sel := range in.Doc.Elements("[class]") {
		class, _ := sel.Attr("class")
		if !priceClass.MatchString(class) {
			continue
		}
		if m := priceAmount.FindString(sel.Text()); m != "" {
			if price, ok := CleanPrice(m); ok {
				return price, true
			}
		}
	}
	return "", false
}
