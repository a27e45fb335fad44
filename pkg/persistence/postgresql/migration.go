package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create metadata records table
			CREATE TABLE metadata_records (
				code_id BIGSERIAL PRIMARY KEY,
				owner VARCHAR(640) NOT NULL,
				workflow_status VARCHAR(50) NOT NULL CHECK (workflow_status IN ('Saved', 'Published')),
				accessibility VARCHAR(2),
				software_title TEXT,
				description TEXT,
				licenses JSONB,
				developers JSONB,
				repository_link TEXT,
				landing_page TEXT,
				release_date DATE,
				doi VARCHAR(255),
				file_name TEXT,
				open_source BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_metadata_records_owner ON metadata_records(owner);
			CREATE INDEX idx_metadata_records_status ON metadata_records(workflow_status);
			CREATE INDEX idx_metadata_records_doi ON metadata_records(doi);
		`,
	}
}
