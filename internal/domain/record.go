// Package domain holds the types shared by the extraction, pagination and storage layers.
package domain

// Record is one normalized professional listing. Absent values are nil and
// serialize as JSON null.
type Record struct {
	Name           *string  `json:"name"                      db:"name"`
	Address        *string  `json:"address"                   db:"address"`
	City           *string  `json:"city"                      db:"city"`
	State          *string  `json:"state"                     db:"state"`
	Zip            *string  `json:"zip"                       db:"zip"`
	Country        *string  `json:"country"                   db:"country"`
	Phone          *string  `json:"phone"                     db:"phone"`
	Latitude       *float64 `json:"latitude"                  db:"latitude"`
	Longitude      *float64 `json:"longitude"                 db:"longitude"`
	Rating         *float64 `json:"rating"                    db:"rating"`
	ReviewCount    *int     `json:"review_count"              db:"review_count"`
	Description    *string  `json:"description"               db:"description"`
	ProfileURL     *string  `json:"profile_url"               db:"profile_url"`
	ImageURL       *string  `json:"image_url"                 db:"image_url"`
	ProfessionalID *string  `json:"professional_id,omitempty" db:"professional_id"`
}

// DisplayName returns the record name or an empty string.
func (r Record) DisplayName() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}
