// Package clients provides thin HTTP clients for the three independent
// remote systems a record is published to: the DOI registrar, the upstream
// software center, and the search index. Each client carries its own
// timeout budget and failure isolation so one service's outage cannot
// block or corrupt calls to the others.
package clients

import (
	"github.com/codecatalog/codecatalog/pkg/models"
)

// publicationDocument is the transformed representation of a record posted
// to the DOI registrar and the upstream software center.
type publicationDocument struct {
	CodeID         *int64                `json:"code_id,omitempty"`
	SoftwareTitle  *string               `json:"software_title,omitempty"`
	Description    *string               `json:"description,omitempty"`
	Licenses       []string              `json:"licenses,omitempty"`
	Developers     []*models.Developer   `json:"developers,omitempty"`
	RepositoryLink *string               `json:"repository_link,omitempty"`
	LandingPage    *string               `json:"landing_page,omitempty"`
	ReleaseDate    *models.Date          `json:"release_date,omitempty"`
	DOI            *string               `json:"doi,omitempty"`
	Accessibility  *models.Accessibility `json:"accessibility,omitempty"`
	OpenSource     *bool                 `json:"open_source,omitempty"`
}

func newPublicationDocument(record *models.Metadata) publicationDocument {
	return publicationDocument{
		CodeID:         record.CodeID,
		SoftwareTitle:  record.SoftwareTitle,
		Description:    record.Description,
		Licenses:       record.Licenses,
		Developers:     record.Developers,
		RepositoryLink: record.RepositoryLink,
		LandingPage:    record.LandingPage,
		ReleaseDate:    record.ReleaseDate,
		DOI:            record.DOI,
		Accessibility:  record.Accessibility,
		OpenSource:     record.OpenSource,
	}
}

// indexDocument is the representation pushed to the search index. The
// index lists all agents of a record under a single field of consolidated
// display names rather than structured name parts.
type indexDocument struct {
	CodeID         *int64       `json:"code_id,omitempty"`
	SoftwareTitle  *string      `json:"software_title,omitempty"`
	Description    *string      `json:"description,omitempty"`
	Licenses       []string     `json:"licenses,omitempty"`
	Developers     []string     `json:"developers,omitempty"`
	RepositoryLink *string      `json:"repository_link,omitempty"`
	LandingPage    *string      `json:"landing_page,omitempty"`
	ReleaseDate    *models.Date `json:"release_date,omitempty"`
	DOI            *string      `json:"doi,omitempty"`
	OpenSource     *bool        `json:"open_source,omitempty"`
}

func newIndexDocument(record *models.Metadata) indexDocument {
	names := make([]string, 0, len(record.Developers))

	for _, developer := range record.Developers {
		if name := developer.DisplayName(); name != "" {
			names = append(names, name)
		}
	}

	return indexDocument{
		CodeID:         record.CodeID,
		SoftwareTitle:  record.SoftwareTitle,
		Description:    record.Description,
		Licenses:       record.Licenses,
		Developers:     names,
		RepositoryLink: record.RepositoryLink,
		LandingPage:    record.LandingPage,
		ReleaseDate:    record.ReleaseDate,
		DOI:            record.DOI,
		OpenSource:     record.OpenSource,
	}
}
