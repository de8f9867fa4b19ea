package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"talentgate/internal/application/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
	txcontext "talentgate/pkg/platform/tx"
)

// PostgresStore persists applications in the applications table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) conn(ctx context.Context) txcontext.Conn {
	return txcontext.Resolve(ctx, s.db)
}

const applicationColumns = `
	id, person_id, position, current_stage, status,
	resume_url, video_url, academic_background_url, other_file_url,
	has_resume, has_video, has_academic_background, has_other_file,
	submission_id, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	var appID, personID uuid.UUID
	var submissionID *uuid.UUID
	var resume, video, academic, other sql.NullString
	err := row.Scan(&appID, &personID, &a.Position, &a.CurrentStage, &a.Status,
		&resume, &video, &academic, &other,
		&a.Materials.HasResume, &a.Materials.HasVideo,
		&a.Materials.HasAcademicBackground, &a.Materials.HasOtherFile,
		&submissionID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	a.ID = id.ApplicationID(appID)
	a.PersonID = id.PersonID(personID)
	if submissionID != nil {
		a.SubmissionID = id.SubmissionID(*submissionID)
	}
	a.Materials.ResumeURL = resume.String
	a.Materials.VideoURL = video.String
	a.Materials.AcademicBackgroundURL = academic.String
	a.Materials.OtherFileURL = other.String
	return &a, nil
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Application) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	var submissionID any
	if !a.SubmissionID.IsNil() {
		submissionID = uuid.UUID(a.SubmissionID)
	}
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(a.ID), uuid.UUID(a.PersonID), a.Position, a.CurrentStage, a.Status,
		nullString(a.Materials.ResumeURL), nullString(a.Materials.VideoURL),
		nullString(a.Materials.AcademicBackgroundURL), nullString(a.Materials.OtherFileURL),
		a.Materials.HasResume, a.Materials.HasVideo,
		a.Materials.HasAcademicBackground, a.Materials.HasOtherFile,
		submissionID, a.CreatedAt, a.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, uuid.UUID(appID))
	return scanApplication(row)
}

func (s *PostgresStore) FindBySubmission(ctx context.Context, submissionID id.SubmissionID) (*models.Application, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE submission_id = $1`, uuid.UUID(submissionID))
	return scanApplication(row)
}

func (s *PostgresStore) ListByPerson(ctx context.Context, personID id.PersonID) ([]*models.Application, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE person_id = $1 ORDER BY created_at`,
		uuid.UUID(personID))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Execute(ctx context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbtx.Rollback()

	row := dbtx.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, uuid.UUID(appID))
	a, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)

	_, err = dbtx.ExecContext(ctx, `
		UPDATE applications SET current_stage = $2, status = $3, updated_at = $4
		WHERE id = $1
	`, uuid.UUID(a.ID), a.CurrentStage, a.Status, a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

// DeleteByPerson removes all applications owned by a person.
func (s *PostgresStore) DeleteByPerson(ctx context.Context, personID id.PersonID) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM applications WHERE person_id = $1`, uuid.UUID(personID))
	if err != nil {
		return fmt.Errorf("delete applications: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
