package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "talentgate/pkg/domain"
	txcontext "talentgate/pkg/platform/tx"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Conn {
	return txcontext.Resolve(ctx, s.db)
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, timestamp, action, person_id, application_id, submission_id,
			email, transition_from, transition_to, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		event.Action,
		nullableID(uuid.UUID(event.PersonID)),
		nullableID(uuid.UUID(event.ApplicationID)),
		nullableID(uuid.UUID(event.SubmissionID)),
		nullString(event.Email),
		nullString(event.From),
		nullString(event.To),
		nullString(event.Reason),
		nullString(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByPerson(ctx context.Context, personID id.PersonID) ([]Event, error) {
	query := `
		SELECT timestamp, action, person_id, application_id, submission_id,
		       email, transition_from, transition_to, reason, request_id
		FROM audit_events
		WHERE person_id = $1
		ORDER BY timestamp
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(personID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var person, app, sub *uuid.UUID
		var email, from, to, reason, requestID sql.NullString
		if err := rows.Scan(&e.Timestamp, &e.Action, &person, &app, &sub,
			&email, &from, &to, &reason, &requestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if person != nil {
			e.PersonID = id.PersonID(*person)
		}
		if app != nil {
			e.ApplicationID = id.ApplicationID(*app)
		}
		if sub != nil {
			e.SubmissionID = id.SubmissionID(*sub)
		}
		e.Email = email.String
		e.From = from.String
		e.To = to.String
		e.Reason = reason.String
		e.RequestID = requestID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullableID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
