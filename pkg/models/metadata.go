// Package models defines the core domain records for the software metadata catalog.
package models

import "time"

// Status represents the workflow lifecycle stage of a metadata record.
type Status string

const (
	// StatusSaved marks a record as a work-in-progress draft.
	StatusSaved Status = "Saved"
	// StatusPublished marks a record as visible to the public search services.
	// Once a record reaches Published it never goes back to Saved.
	StatusPublished Status = "Published"
)

// Accessibility classifies how the source of a software project may be obtained.
type Accessibility string

const (
	AccessibilityOpen        Accessibility = "OS" // open source, publicly available
	AccessibilityOpenLimited Accessibility = "ON" // open source, not publicly hosted
	AccessibilityClosed      Accessibility = "CS" // closed source
)

// Metadata is the central record describing a software project. Optional
// fields are pointers so that partial update payloads can distinguish
// "not supplied" from an explicit zero value; MergeFrom relies on this.
type Metadata struct {
	CodeID         *int64         `json:"code_id,omitempty"         yaml:"code_id,omitempty"`
	Owner          string         `json:"owner,omitempty"           yaml:"owner,omitempty"`
	WorkflowStatus Status         `json:"workflow_status,omitempty" yaml:"workflow_status,omitempty" validate:"omitempty,oneof=Saved Published"`
	Accessibility  *Accessibility `json:"accessibility,omitempty"   yaml:"accessibility,omitempty"   validate:"omitempty,oneof=OS ON CS"`
	SoftwareTitle  *string        `json:"software_title,omitempty"  yaml:"software_title,omitempty"`
	Description    *string        `json:"description,omitempty"     yaml:"description,omitempty"`
	Licenses       []string       `json:"licenses,omitempty"        yaml:"licenses,omitempty"`
	Developers     []*Developer   `json:"developers,omitempty"      yaml:"developers,omitempty"`
	RepositoryLink *string        `json:"repository_link,omitempty" yaml:"repository_link,omitempty"`
	LandingPage    *string        `json:"landing_page,omitempty"    yaml:"landing_page,omitempty"`
	ReleaseDate    *Date          `json:"release_date,omitempty"    yaml:"release_date,omitempty"`
	DOI            *string        `json:"doi,omitempty"             yaml:"doi,omitempty"`
	FileName       *string        `json:"file_name,omitempty"       yaml:"file_name,omitempty"`
	OpenSource     *bool          `json:"open_source,omitempty"     yaml:"open_source,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"      yaml:"created_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at,omitempty"      yaml:"updated_at,omitempty"`
}

// MergeFrom copies every supplied field of in onto m, leaving fields that
// in does not carry untouched. Clients routinely send partial
// representations, so a nil pointer (or nil slice) means "keep what is
// stored". CodeID and the derived OpenSource flag are never copied.
func (m *Metadata) MergeFrom(in *Metadata) {
	if in.Owner != "" {
		m.Owner = in.Owner
	}

	if in.WorkflowStatus != "" {
		m.WorkflowStatus = in.WorkflowStatus
	}

	if in.Accessibility != nil {
		m.Accessibility = in.Accessibility
	}

	if in.SoftwareTitle != nil {
		m.SoftwareTitle = in.SoftwareTitle
	}

	if in.Description != nil {
		m.Description = in.Description
	}

	if in.Licenses != nil {
		m.Licenses = in.Licenses
	}

	if in.Developers != nil {
		m.Developers = in.Developers
	}

	if in.RepositoryLink != nil {
		m.RepositoryLink = in.RepositoryLink
	}

	if in.LandingPage != nil {
		m.LandingPage = in.LandingPage
	}

	if in.ReleaseDate != nil {
		m.ReleaseDate = in.ReleaseDate
	}

	if in.DOI != nil {
		m.DOI = in.DOI
	}

	if in.FileName != nil {
		m.FileName = in.FileName
	}
}

// RecomputeOpenSource derives the open_source flag from the accessibility
// classification. The flag is never taken from a caller payload.
func (m *Metadata) RecomputeOpenSource() {
	open := m.Accessibility == nil || *m.Accessibility != AccessibilityClosed
	m.OpenSource = &open
}

// IsPublished reports whether the record has reached the Published stage.
func (m *Metadata) IsPublished() bool {
	return m.WorkflowStatus == StatusPublished
}
