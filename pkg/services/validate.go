package services

import (
	"github.com/codecatalog/codecatalog/pkg/models"
	"github.com/codecatalog/codecatalog/pkg/validation"
)

// ValidateForPublication runs the structural completeness checks a record
// must satisfy before publication and returns every violation as a
// human-readable reason. An empty slice means the record is complete.
// Computing violations is separated from rejecting the request; the
// caller decides whether to block on them.
func ValidateForPublication(record *models.Metadata) []string {
	reasons := []string{}

	if isBlank(record.SoftwareTitle) {
		reasons = append(reasons, "A software title is required.")
	}

	if isBlank(record.Description) {
		reasons = append(reasons, "A description is required.")
	}

	if record.Accessibility == nil || *record.Accessibility == "" {
		reasons = append(reasons, "An accessibility classification is required.")
	}

	if isBlank(record.RepositoryLink) && isBlank(record.LandingPage) {
		reasons = append(reasons, "Either a repository link or landing page is required.")
	}

	if len(record.Licenses) == 0 {
		reasons = append(reasons, "At least one license is required.")
	}

	if len(record.Developers) == 0 {
		reasons = append(reasons, "At least one developer is required.")
	}

	for _, developer := range record.Developers {
		if isBlank(developer.FirstName) || isBlank(developer.LastName) {
			reasons = append(reasons, "Every developer must have a first and last name.")

			break
		}
	}

	for _, developer := range record.Developers {
		if !isBlank(developer.Email) && !validation.IsValidEmail(*developer.Email) {
			reasons = append(reasons, "Developer email address "+*developer.Email+" is not valid.")
		}
	}

	if !isBlank(record.DOI) && record.ReleaseDate == nil {
		reasons = append(reasons, "A release date is required for DOI registration.")
	}

	return reasons
}

// ValidateForSubmission runs the publication checks plus the stricter
// requirements of an upstream software center submission.
func ValidateForSubmission(record *models.Metadata) []string {
	reasons := ValidateForPublication(record)

	if record.ReleaseDate == nil && isBlank(record.DOI) {
		reasons = append(reasons, "A release date is required.")
	}

	return reasons
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}
