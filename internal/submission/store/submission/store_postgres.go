package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	formmodels "talentgate/internal/form/models"
	"talentgate/internal/submission/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
	txcontext "talentgate/pkg/platform/tx"
)

// PostgresStore persists submissions in the form_submissions table. The
// opaque payload and the file descriptors are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) conn(ctx context.Context) txcontext.Conn {
	return txcontext.Resolve(ctx, s.db)
}

const submissionColumns = `
	id, form_id, data, files, ip_address, user_agent,
	status, submitted_at, processed_at, error_message, person_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	var subID, formID uuid.UUID
	var personID *uuid.UUID
	var data []byte
	var files []byte
	var ip, ua, errMsg sql.NullString
	var processedAt sql.NullTime
	err := row.Scan(&subID, &formID, &data, &files, &ip, &ua,
		&sub.Status, &sub.SubmittedAt, &processedAt, &errMsg, &personID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.ID = id.SubmissionID(subID)
	sub.FormID = id.FormID(formID)
	if personID != nil {
		sub.PersonID = id.PersonID(*personID)
	}
	if err := json.Unmarshal(data, &sub.Data); err != nil {
		return nil, fmt.Errorf("decode submission data: %w", err)
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &sub.Files); err != nil {
			return nil, fmt.Errorf("decode submission files: %w", err)
		}
	}
	sub.IPAddress = ip.String
	sub.UserAgent = ua.String
	sub.ErrorMessage = errMsg.String
	if processedAt.Valid {
		t := processedAt.Time
		sub.ProcessedAt = &t
	}
	return &sub, nil
}

func encodeFiles(files []formmodels.FileDescriptor) (any, error) {
	if len(files) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("encode submission files: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) Create(ctx context.Context, sub *models.FormSubmission) error {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("encode submission data: %w", err)
	}
	files, err := encodeFiles(sub.Files)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO form_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(sub.ID), uuid.UUID(sub.FormID), data, files,
		nullString(sub.IPAddress), nullString(sub.UserAgent),
		sub.Status, sub.SubmittedAt, sub.ProcessedAt,
		nullString(sub.ErrorMessage), nullableID(uuid.UUID(sub.PersonID)),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM form_submissions WHERE id = $1`, uuid.UUID(subID))
	return scanSubmission(row)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.FormSubmission, error) {
	return s.list(ctx,
		`SELECT `+submissionColumns+` FROM form_submissions WHERE status = $1 ORDER BY submitted_at`,
		status)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.FormSubmission, error) {
	return s.list(ctx,
		`SELECT `+submissionColumns+` FROM form_submissions ORDER BY submitted_at`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.FormSubmission, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.FormSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Execute reads the submission FOR UPDATE inside a transaction so the status
// check and the status write are one atomic step.
func (s *PostgresStore) Execute(ctx context.Context, subID id.SubmissionID, validate func(*models.FormSubmission) error, mutate func(*models.FormSubmission)) (*models.FormSubmission, error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbtx.Rollback()

	row := dbtx.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM form_submissions WHERE id = $1 FOR UPDATE`, uuid.UUID(subID))
	sub, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}
	if err := validate(sub); err != nil {
		return nil, err
	}
	mutate(sub)

	_, err = dbtx.ExecContext(ctx, `
		UPDATE form_submissions SET
			status = $2, processed_at = $3, error_message = $4, person_id = $5
		WHERE id = $1
	`, uuid.UUID(sub.ID), sub.Status, sub.ProcessedAt,
		nullString(sub.ErrorMessage), nullableID(uuid.UUID(sub.PersonID)))
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) Delete(ctx context.Context, subID id.SubmissionID) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM form_submissions WHERE id = $1`, uuid.UUID(subID))
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}
