package core

// Taxonomy is the fixed two-level category map the household uses. The entry
// form populates its selects from it and the controller validates against it.
// A record keeps whatever pair was valid when it was written; existing
// records are not re-validated if this map changes.
var Taxonomy = map[string][]string{
	"Gastos fijos del hogar": {"Dividendo", "Luz", "Agua", "Gas", "Basura", "Wifi", "Streaming", "Mantención Aire", "Plan móvil"},
	"Alimentación":           {"Supermercado", "Feria"},
	"Educación":              {"Matrícula jardín", "Mensualidad jardín"},
	"Salud":                  {"Plan", "Medicamentos"},
	"Transporte":             {"BIP", "Combustible", "Permiso circulación", "Mantención", "TAG"},
	"Gin":                    {"Comida", "Salud"},
	"Eventos":                {"Navidad", "Vacaciones", "Cumple MyM", "Cumple hija", "Cumpleaños"},
	"Presupuestos mensuales": {"BR", "Hija", "DT"},
}

// dimensionOrder fixes the presentation order of Dimensions; map iteration
// order would leak into the UI otherwise.
var dimensionOrder = []string{
	"Gastos fijos del hogar",
	"Alimentación",
	"Educación",
	"Salud",
	"Transporte",
	"Gin",
	"Eventos",
	"Presupuestos mensuales",
}

// Dimensions returns the top-level categories in presentation order.
func Dimensions() []string {
	return append([]string(nil), dimensionOrder...)
}

// SubDimensions returns the subcategories of dim, or nil for an unknown dim.
func SubDimensions(dim string) []string {
	subs, ok := Taxonomy[dim]
	if !ok {
		return nil
	}
	return append([]string(nil), subs...)
}

// ValidDimension reports whether dim is a known top-level category.
func ValidDimension(dim string) bool {
	_, ok := Taxonomy[dim]
	return ok
}

// ValidPair reports whether sub is listed under dim.
func ValidPair(dim, sub string) bool {
	for _, s := range Taxonomy[dim] {
		if s == sub {
			return true
		}
	}
	return false
}
