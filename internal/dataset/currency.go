package dataset

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// Currency is a metric value that arrives as formatted currency text, e.g.
// "£12,345". The raw text is kept for display; the parsed number is what
// enters binning and coloring. An empty cell is a valid absent value.
type Currency struct {
	Raw   string
	Value float64
	Valid bool
}

// UnmarshalText parses formatted currency text. The leading currency symbol
// and thousands separators are stripped; anything else non-numeric fails.
func (c *Currency) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*c = Currency{}
		return nil
	}

	num, err := parseCurrency(raw)
	if err != nil {
		return err
	}
	*c = Currency{Raw: raw, Value: num, Valid: true}
	return nil
}

// Number is a plain numeric metric value. An empty cell is a valid absent value.
type Number struct {
	Raw   string
	Value float64
	Valid bool
}

// UnmarshalText parses numeric text, tolerating thousands separators.
func (n *Number) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*n = Number{}
		return nil
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return eris.Wrapf(ErrValueParse, "numeric token %q", raw)
	}
	*n = Number{Raw: raw, Value: num, Valid: true}
	return nil
}

// parseCurrency converts "£12,345.67" style text to its numeric value.
func parseCurrency(raw string) (float64, error) {
	s := raw

	// Strip one leading currency symbol (£, $, €, ...).
	if r, size := utf8.DecodeRuneInString(s); unicode.Is(unicode.Sc, r) {
		s = s[size:]
	}
	s = strings.TrimSpace(s)

	// Negative amounts may be written with parentheses.
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, ",", "")
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(ErrValueParse, "currency token %q", raw)
	}
	if negative {
		num = -num
	}
	return num, nil
}
