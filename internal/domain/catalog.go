package domain

import "time"

// CatalogKind names one of the reference dictionaries.
type CatalogKind string

const (
	CatalogState    CatalogKind = "state"
	CatalogPriority CatalogKind = "priority"
	CatalogCategory CatalogKind = "category"
	CatalogLocation CatalogKind = "location"
)

// CatalogKinds lists every known kind.
var CatalogKinds = []CatalogKind{CatalogState, CatalogPriority, CatalogCategory, CatalogLocation}

// Valid reports whether k is a known catalog kind.
func (k CatalogKind) Valid() bool {
	switch k {
	case CatalogState, CatalogPriority, CatalogCategory, CatalogLocation:
		return true
	}
	return false
}

// Editable reports whether entries of this kind may be created or toggled at runtime.
// States and priorities are fixed.
func (k CatalogKind) Editable() bool {
	return k == CatalogCategory || k == CatalogLocation
}

// CatalogEntry is an immutable reference value addressed by code.
type CatalogEntry struct {
	ID          int64
	Kind        CatalogKind
	Code        string
	Name        string
	Description string
	// Order is the display position of a state.
	Order int
	// Level is the sort weight of a priority.
	Level     int
	Color     string
	Building  string
	Floor     string
	Active    bool
	CreatedAt time.Time
}
