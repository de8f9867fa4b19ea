package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"talentgate/internal/person/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/sentinel"
	txcontext "talentgate/pkg/platform/tx"
)

// PostgresStore persists persons in the persons table. Email uniqueness is a
// unique index; CreateIfEmailAvailable maps its violation to ErrConflict so
// concurrent same-email creates serialize at the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) conn(ctx context.Context) txcontext.Conn {
	return txcontext.Resolve(ctx, s.db)
}

const personColumns = `
	id, email, first_name, last_name, phone, city, portfolio, education,
	gc_completed, gc_score, gc_passed_at, created_at, updated_at
`

func scanPerson(row *sql.Row) (*models.Person, error) {
	var p models.Person
	var personID uuid.UUID
	var phone, city, portfolio, education sql.NullString
	var score sql.NullFloat64
	var passedAt sql.NullTime
	err := row.Scan(&personID, &p.Email, &p.FirstName, &p.LastName,
		&phone, &city, &portfolio, &education,
		&p.Assessment.Completed, &score, &passedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan person: %w", err)
	}
	p.ID = id.PersonID(personID)
	p.Phone = phone.String
	p.City = city.String
	p.Portfolio = portfolio.String
	p.Education = education.String
	if score.Valid {
		v := score.Float64
		p.Assessment.Score = &v
	}
	if passedAt.Valid {
		t := passedAt.Time
		p.Assessment.PassedAt = &t
	}
	return &p, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, uuid.UUID(personID))
	return scanPerson(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE email = $1`, email)
	return scanPerson(row)
}

func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	var score any
	if p.Assessment.Score != nil {
		score = *p.Assessment.Score
	}
	var passedAt any
	if p.Assessment.PassedAt != nil {
		passedAt = *p.Assessment.PassedAt
	}
	_, err := s.conn(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Email, p.FirstName, p.LastName,
		nullString(p.Phone), nullString(p.City), nullString(p.Portfolio), nullString(p.Education),
		p.Assessment.Completed, score, passedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

// Execute reads the person FOR UPDATE inside a transaction, runs validate,
// applies mutate and writes the result back.
func (s *PostgresStore) Execute(ctx context.Context, personID id.PersonID, validate func(*models.Person) error, mutate func(*models.Person)) (*models.Person, error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbtx.Rollback()

	row := dbtx.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1 FOR UPDATE`, uuid.UUID(personID))
	p, err := scanPerson(row)
	if err != nil {
		return nil, err
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	mutate(p)

	var score any
	if p.Assessment.Score != nil {
		score = *p.Assessment.Score
	}
	var passedAt any
	if p.Assessment.PassedAt != nil {
		passedAt = *p.Assessment.PassedAt
	}
	_, err = dbtx.ExecContext(ctx, `
		UPDATE persons SET
			first_name = $2, last_name = $3, phone = $4, city = $5,
			portfolio = $6, education = $7,
			gc_completed = $8, gc_score = $9, gc_passed_at = $10,
			updated_at = $11
		WHERE id = $1
	`,
		uuid.UUID(p.ID), p.FirstName, p.LastName,
		nullString(p.Phone), nullString(p.City),
		nullString(p.Portfolio), nullString(p.Education),
		p.Assessment.Completed, score, passedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, personID id.PersonID) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM persons WHERE id = $1`, uuid.UUID(personID))
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
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
