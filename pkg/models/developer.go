package models

import "strings"

// Developer is an agent credited on a metadata record. Developers have no
// independent lifecycle: they are created and destroyed with the record
// that references them.
type Developer struct {
	FirstName    *string `json:"first_name,omitempty"   yaml:"first_name,omitempty"`
	MiddleName   *string `json:"middle_name,omitempty"  yaml:"middle_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"    yaml:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"        yaml:"email,omitempty"`
	Affiliations *string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
	ORCID        *string `json:"orcid,omitempty"        yaml:"orcid,omitempty"`
}

// DisplayName consolidates the name parts into a single "First Middle Last"
// string. The search index lists all agents of a record under one field
// and expects this form.
func (d *Developer) DisplayName() string {
	parts := make([]string, 0, 3)

	for _, p := range []*string{d.FirstName, d.MiddleName, d.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}

	return strings.Join(parts, " ")
}
