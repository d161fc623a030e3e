package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Terminal values used when a chain finds nothing
const (
	TitlePlaceholder = "Lien ajouté (titre indisponible)"
	PriceFree        = "Prix libre"
	DefaultCurrency  = "€"
)

// DefaultMinTitleLength is the shortest title accepted from a page or URL
const DefaultMinTitleLength = 5

// titleBlocklist holds phrases that identify anti-bot and error pages
var titleBlocklist = []string{
	"captcha",
	"access denied",
	"robot check",
	"verification",
	"momentarily unavailable",
	"temporarily unavailable",
	"page not found",
	"attention required",
	"just a moment",
}

var currencyCodes = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF",
	"CAD": "$",
	"AUD": "$",
}

var currencySymbols = []string{"€", "$", "£", "¥"}

var whitespace = regexp.MustCompile(`\s+`)

// CleanPrice normalizes a raw price string into "<numeric> <symbol>".
// The symbol is detected from raw and defaults to €. Returns false when raw
// carries no digit.
func CleanPrice(raw string) (string, bool) {
	return CleanPriceCurrency(raw, "")
}

// CleanPriceCurrency is CleanPrice with an explicit currency, either an ISO
// code such as "USD" or a symbol. An empty currency falls back to detection.
func CleanPriceCurrency(raw, currency string) (string, bool) {
	var b strings.Builder
	hasDigit := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteByte('.')
		}
	}
	if !hasDigit {
		return "", false
	}

	number := b.String()
	if last := strings.LastIndexByte(number, '.'); last >= 0 {
		number = strings.ReplaceAll(number[:last], ".", "") + number[last:]
	}
	number = strings.TrimSuffix(number, ".")
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}

	symbol := currencySymbol(currency)
	if symbol == "" {
		symbol = detectCurrency(raw)
	}
	return number + " " + symbol, true
}

// currencySymbol maps an ISO code or symbol to the displayed symbol
func currencySymbol(currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return ""
	}
	if sym, ok := currencyCodes[strings.ToUpper(currency)]; ok {
		return sym
	}
	for _, sym := range currencySymbols {
		if strings.Contains(currency, sym) {
			return sym
		}
	}
	if len(currency) == 3 && isLetters(currency) {
		return strings.ToUpper(currency)
	}
	return ""
}

func detectCurrency(raw string) string {
	for _, sym := range currencySymbols {
		if strings.Contains(raw, sym) {
			return sym
		}
	}
	upper := strings.ToUpper(raw)
	for code, sym := range currencyCodes {
		if strings.Contains(upper, code) {
			return sym
		}
	}
	return DefaultCurrency
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// CleanTitle collapses whitespace and, when separator is set, keeps the
// text before its first occurrence.
func CleanTitle(raw, separator string) string {
	title := whitespace.ReplaceAllString(strings.ToValidUTF8(raw, ""), " ")
	if separator != "" {
		if idx := strings.Index(title, separator); idx > 0 {
			title = title[:idx]
		}
	}
	return strings.TrimSpace(title)
}

// ValidTitle reports whether title is usable: long enough and free of
// anti-bot phrases or the bare site host.
func ValidTitle(title, host string, minLength int) bool {
	if minLength <= 0 {
		minLength = DefaultMinTitleLength
	}
	if utf8.RuneCountInString(title) < minLength {
		return false
	}

	lower := strings.ToLower(title)
	for _, phrase := range titleBlocklist {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	if bare := bareHost(host); bare != "" && strings.Contains(lower, bare) {
		return false
	}
	return true
}

func bareHost(host string) string {
	host = strings.ToLower(host)
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

var dropTokens = map[string]bool{
	"html": true,
	"htm":  true,
	"php":  true,
	"dp":   true,
}

// TitleFromURL derives a human title from the longest meaningful path
// segment, e.g. /en/products/super-cool-gadget-12345.html gives
// "Super cool gadget".
func TitleFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	path := strings.ReplaceAll(u.EscapedPath(), "%20", " ")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = strings.ToValidUTF8(unescaped, "")
	}

	var best string
	var kept []string
	for _, segment := range strings.Split(path, "/") {
		if utf8.RuneCountInString(segment) <= 4 || isNumeric(segment) {
			continue
		}
		if utf8.RuneCountInString(segment) <= utf8.RuneCountInString(best) {
			continue
		}
		if tokens := segmentTokens(segment); tokens != nil {
			best, kept = segment, tokens
		}
	}
	if best == "" {
		return "", false
	}

	title := strings.TrimSpace(strings.Join(kept, " "))
	if title == "" {
		return "", false
	}
	return capitalize(title), true
}

// Path words that name a catalogue section rather than a product
var genericSegments = map[string]bool{
	"products":  true,
	"product":   true,
	"produit":   true,
	"produits":  true,
	"item":      true,
	"items":     true,
	"catalog":   true,
	"catalogue": true,
	"article":   true,
	"articles":  true,
}

// segmentTokens splits a path segment into title words. It returns nil when
// nothing but drop words, a bare product code or a section name remains.
func segmentTokens(segment string) []string {
	tokens := strings.FieldsFunc(segment, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == '+' || unicode.IsSpace(r)
	})

	var kept []string
	for _, tok := range tokens {
		if !dropTokens[strings.ToLower(tok)] {
			kept = append(kept, tok)
		}
	}
	if n := len(kept); n > 1 && isProductCode(kept[n-1]) {
		kept = kept[:n-1]
	}

	switch {
	case len(kept) == 0:
		return nil
	case len(kept) == 1 && isProductCode(kept[0]):
		return nil
	case len(kept) == 1 && genericSegments[strings.ToLower(kept[0])]:
		return nil
	}
	return kept
}

// isNumeric reports whether s carries no letter, e.g. "12345" or "2024-06"
func isNumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isProductCode matches short alphanumeric tokens holding a digit such as
// "12345" or "b0c1x2"
func isProductCode(tok string) bool {
	if len(tok) > 12 {
		return false
	}
	hasDigit := false
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case unicode.IsLetter(r):
		default:
			return false
		}
	}
	return hasDigit
}

func capitalize(s string) string {
	lower := []rune(strings.ToLower(s))
	lower[0] = unicode.ToUpper(lower[0])
	return string(lower)
}
