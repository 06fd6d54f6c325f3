// Package category holds the fixed set of merchandise categories used across
// inventory, friendly IDs, and the public catalog views.
package category

import "strings"

// Category is one of the twelve fixed merchandise categories.
type Category string

const (
	Mobiliario   Category = "Mobiliario"
	Porcelana    Category = "Porcelana"
	Cristal      Category = "Cristal"
	Joyeria      Category = "Joyeria"
	Arte         Category = "Arte"
	Libros       Category = "Libros"
	Textiles     Category = "Textiles"
	Decoracion   Category = "Decoracion"
	Herramientas Category = "Herramientas"
	Musica       Category = "Musica"
	Relojes      Category = "Relojes"
	Otros        Category = "Otros"
)

// All lists every category in display order.
var All = []Category{
	Mobiliario,
	Porcelana,
	Cristal,
	Joyeria,
	Arte,
	Libros,
	Textiles,
	Decoracion,
	Herramientas,
	Musica,
	Relojes,
	Otros,
}

var descriptions = map[Category]string{
	Mobiliario:   "Muebles antiguos y vintage",
	Porcelana:    "Vajillas y objetos de porcelana",
	Cristal:      "Objetos de cristal y vidrio",
	Joyeria:      "Joyas y accesorios antiguos",
	Arte:         "Pinturas, esculturas y obras de arte",
	Libros:       "Libros antiguos y coleccionables",
	Textiles:     "Ropa, tapices y telas antiguas",
	Decoracion:   "Objetos decorativos varios",
	Herramientas: "Herramientas y utensilios antiguos",
	Musica:       "Instrumentos musicales y discos",
	Relojes:      "Relojes antiguos y de coleccion",
	Otros:        "Otros objetos diversos",
}

// prefixes maps the leading letter of a friendly ID to its category.
// Textiles takes T and Herramientas takes H; collisions between categories
// sharing an initial are resolved with the second letter.
var prefixes = map[byte]Category{
	'M': Mobiliario,
	'P': Porcelana,
	'C': Cristal,
	'J': Joyeria,
	'A': Arte,
	'L': Libros,
	'T': Textiles,
	'D': Decoracion,
	'H': Herramientas,
	'U': Musica,
	'R': Relojes,
	'O': Otros,
}

// Info is the display payload for the category listing endpoint.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns all categories with their display descriptions.
func List() []Info {
	out := make([]Info, 0, len(All))
	for _, c := range All {
		out = append(out, Info{Name: string(c), Description: descriptions[c]})
	}
	return out
}

// IsValid reports whether value names a known category.
func IsValid(value string) bool {
	_, ok := descriptions[Category(strings.TrimSpace(value))]
	return ok
}

// Description returns the display description for a category.
func Description(c Category) string {
	return descriptions[c]
}

// Prefix returns the friendly-ID letter for a category.
func Prefix(c Category) byte {
	for letter, cat := range prefixes {
		if cat == c {
			return letter
		}
	}
	return 'O'
}

// ForPrefix resolves the category encoded by a friendly ID's leading letter.
func ForPrefix(letter byte) (Category, bool) {
	c, ok := prefixes[letter]
	return c, ok
}
