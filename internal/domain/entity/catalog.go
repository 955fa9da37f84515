package entity

import "strings"

// Catalog índice en memoria de productos por nombre. La unión con los movimientos sigue siendo
// por nombre; el índice solo evita búsquedas lineales.
type Catalog struct {
	byName  map[string]Product
	byUpper map[string]Product
}

// NewCatalog construye el índice. Con nombres duplicados gana el primero.
func NewCatalog(products []Product) Catalog {
	c := Catalog{
		byName:  make(map[string]Product, len(products)),
		byUpper: make(map[string]Product, len(products)),
	}
	for _, p := range products {
		if _, ok := c.byName[p.Name]; !ok {
			c.byName[p.Name] = p
		}
		up := strings.ToUpper(p.Name)
		if _, ok := c.byUpper[up]; !ok {
			c.byUpper[up] = p
		}
	}
	return c
}

// Lookup busca por nombre exacto y luego sin distinguir mayúsculas.
func (c Catalog) Lookup(name string) (Product, bool) {
	if p, ok := c.byName[name]; ok {
		return p, true
	}
	p, ok := c.byUpper[strings.ToUpper(name)]
	return p, ok
}

// Len cantidad de nombres indexados.
func (c Catalog) Len() int { return len(c.byName) }
