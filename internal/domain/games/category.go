package games

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	CategoryMath      = "Matemáticas"
	CategoryPortugues = "Português"
	CategoryLogic     = "Lógica"
	CategoryDaily     = "Cotidiano"
)

// Categories lists the canonical activity categories in display order.
var Categories = []string{CategoryMath, CategoryPortugues, CategoryLogic, CategoryDaily}

var ErrUnknownCategory = errors.New("categoria deve ser uma das seguintes: " + strings.Join(Categories, ", "))

var foldedCategories = func() map[string]string {
	out := make(map[string]string, len(Categories))
	for _, c := range Categories {
		out[foldCategory(c)] = c
	}
	return out
}()

// NormalizeCategory maps case, accent and singular/plural variants onto the
// canonical category, e.g. "matemática" and "MATEMATICAS" both become "Matemáticas".
func NormalizeCategory(raw string) (string, error) {
	key := foldCategory(raw)
	if key == "" {
		return "", ErrUnknownCategory
	}
	if c, ok := foldedCategories[key]; ok {
		return c, nil
	}
	if strings.HasSuffix(key, "s") {
		if c, ok := foldedCategories[strings.TrimSuffix(key, "s")]; ok {
			return c, nil
		}
	} else if c, ok := foldedCategories[key+"s"]; ok {
		return c, nil
	}
	return "", ErrUnknownCategory
}

// IsCategory reports whether raw normalizes to a known category.
func IsCategory(raw string) bool {
	_, err := NormalizeCategory(raw)
	return err == nil
}

func foldCategory(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
