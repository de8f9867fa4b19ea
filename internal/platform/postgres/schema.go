package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the stores expect. Statements are
// idempotent so startup against an already-provisioned database is a no-op.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS persons (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT,
		city TEXT,
		portfolio TEXT,
		education TEXT,
		gc_completed BOOLEAN NOT NULL DEFAULT FALSE,
		gc_score DOUBLE PRECISION,
		gc_passed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	// Email is stored normalized; the unique index is the last line of
	// defense for identity dedup under concurrent creates.
	`CREATE UNIQUE INDEX IF NOT EXISTS persons_email_key ON persons (email)`,

	`CREATE TABLE IF NOT EXISTS applications (
		id UUID PRIMARY KEY,
		person_id UUID NOT NULL REFERENCES persons (id) ON DELETE CASCADE,
		position TEXT NOT NULL,
		current_stage TEXT NOT NULL,
		status TEXT NOT NULL,
		resume_url TEXT,
		video_url TEXT,
		academic_background_url TEXT,
		other_file_url TEXT,
		has_resume BOOLEAN NOT NULL DEFAULT FALSE,
		has_video BOOLEAN NOT NULL DEFAULT FALSE,
		has_academic_background BOOLEAN NOT NULL DEFAULT FALSE,
		has_other_file BOOLEAN NOT NULL DEFAULT FALSE,
		submission_id UUID,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	// One application per originating submission keeps retries idempotent.
	`CREATE UNIQUE INDEX IF NOT EXISTS applications_submission_key
		ON applications (submission_id) WHERE submission_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS applications_person_idx ON applications (person_id)`,

	`CREATE TABLE IF NOT EXISTS form_submissions (
		id UUID PRIMARY KEY,
		form_id UUID NOT NULL,
		data JSONB NOT NULL,
		files JSONB,
		ip_address TEXT,
		user_agent TEXT,
		status TEXT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		processed_at TIMESTAMPTZ,
		error_message TEXT,
		person_id UUID
	)`,
	`CREATE INDEX IF NOT EXISTS form_submissions_status_idx ON form_submissions (status)`,

	`CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		action TEXT NOT NULL,
		person_id UUID,
		application_id UUID,
		submission_id UUID,
		email TEXT,
		transition_from TEXT,
		transition_to TEXT,
		reason TEXT,
		request_id TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS audit_events_person_idx ON audit_events (person_id)`,
}
