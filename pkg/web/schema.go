package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// metadataSchema gates inbound record payloads before binding. It checks
// field shapes only; completeness rules live in the workflow's
// validation gate.
const metadataSchema = `{
	"type": "object",
	"properties": {
		"code_id": {"type": "integer"},
		"owner": {"type": "string"},
		"workflow_status": {"type": "string", "enum": ["Saved", "Published"]},
		"accessibility": {"type": "string", "enum": ["OS", "ON", "CS"]},
		"software_title": {"type": "string"},
		"description": {"type": "string"},
		"licenses": {"type": "array", "items": {"type": "string"}},
		"developers": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"first_name": {"type": "string"},
					"middle_name": {"type": "string"},
					"last_name": {"type": "string"},
					"email": {"type": "string"},
					"affiliations": {"type": "string"},
					"orcid": {"type": "string"}
				}
			}
		},
		"repository_link": {"type": "string"},
		"landing_page": {"type": "string"},
		"release_date": {"type": "string"},
		"doi": {"type": "string"},
		"file_name": {"type": "string"}
	}
}`

var compiledMetadataSchema = gojsonschema.NewStringLoader(metadataSchema)

// validateMetadataPayload validates a raw JSON body against the record
// schema and returns a single descriptive message on failure.
func validateMetadataPayload(body []byte) error {
	result, err := gojsonschema.Validate(compiledMetadataSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			details = append(details, issue.String())
		}

		return fmt.Errorf("payload failed schema validation: %s", strings.Join(details, "; "))
	}

	return nil
}
