package dto

// CatalogEntryResponse is a full catalog entry.
type CatalogEntryResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order,omitempty"`
	Level       int    `json:"level,omitempty"`
	Color       string `json:"color,omitempty"`
	Building    string `json:"building,omitempty"`
	Floor       string `json:"floor,omitempty"`
	Active      bool   `json:"active"`
}

// CreateCatalogEntryRequest payload for categories and locations.
type CreateCatalogEntryRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Building    string `json:"building"`
	Floor       string `json:"floor"`
}

// SetCatalogActiveRequest payload.
type SetCatalogActiveRequest struct {
	Active *bool `json:"active"`
}

// PrincipalResponse describes a known principal.
type PrincipalResponse struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}
