// Package postgres implements the event and scheduler stores on PostgreSQL.
//
// The store owns a pgxpool connection pool and runs embedded migrations on
// startup. Event rows are keyed on event_id; Upsert replaces all fields so
// a re-sync never duplicates a meeting.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/meetsync/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/meetsync/internal/core/domain"
	"github.com/custodia-labs/meetsync/internal/core/ports/driven"
)

// queryTimeout bounds every single statement.
const queryTimeout = 5 * time.Second

// Ensure Store implements the store interfaces.
var (
	_ driven.EventStore     = (*Store)(nil)
	_ driven.SchedulerStore = (*Store)(nil)
)

// Store is a PostgreSQL-backed event and scheduler store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store from a connection string, pings the database
// and runs pending migrations.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}

	if err := s.migrate(ctx, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys embed.FS) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Event Store ====================

// Upsert inserts or replaces the event row keyed on event_id.
func (s *Store) Upsert(ctx context.Context, event *domain.CalendarEvent) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	attendeesJSON, err := json.Marshal(attendeesOrEmpty(event.Attendees))
	if err != nil {
		return fmt.Errorf("marshalling attendees: %w", err)
	}
	externalJSON, err := json.Marshal(attendeesOrEmpty(event.ExternalAttendees))
	if err != nil {
		return fmt.Errorf("marshalling external attendees: %w", err)
	}

	query := `
		INSERT INTO calendar_events (
			event_id, summary, description, location, meeting_url,
			organizer_email, start_time, end_time, attendees,
			external_attendees, duration_minutes, is_important,
			company_name, proposal_status, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (event_id) DO UPDATE SET
			summary            = EXCLUDED.summary,
			description        = EXCLUDED.description,
			location           = EXCLUDED.location,
			meeting_url        = EXCLUDED.meeting_url,
			organizer_email    = EXCLUDED.organizer_email,
			start_time         = EXCLUDED.start_time,
			end_time           = EXCLUDED.end_time,
			attendees          = EXCLUDED.attendees,
			external_attendees = EXCLUDED.external_attendees,
			duration_minutes   = EXCLUDED.duration_minutes,
			is_important       = EXCLUDED.is_important,
			company_name       = EXCLUDED.company_name,
			proposal_status    = EXCLUDED.proposal_status,
			synced_at          = EXCLUDED.synced_at,
			updated_at         = NOW()
	`

	_, err = s.pool.Exec(ctx, query,
		event.EventID, event.Summary, event.Description, event.Location,
		event.MeetingURL, event.OrganizerEmail, event.StartTime, event.EndTime,
		attendeesJSON, externalJSON, event.DurationMinutes, event.IsImportant,
		event.CompanyName, string(event.ProposalStatus), event.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	return nil
}

// Get retrieves one event by id.
func (s *Store) Get(ctx context.Context, eventID string) (*domain.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT event_id, summary, description, location, meeting_url,
		       organizer_email, start_time, end_time, attendees,
		       external_attendees, duration_minutes, is_important,
		       company_name, proposal_status, synced_at
		FROM calendar_events
		WHERE event_id = $1
	`

	event, err := scanEvent(s.pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// ListRange returns events with start_time in [from, to), ascending.
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT event_id, summary, description, location, meeting_url,
		       organizer_email, start_time, end_time, attendees,
		       external_attendees, duration_minutes, is_important,
		       company_name, proposal_status, synced_at
		FROM calendar_events
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// SetProposalStatus updates the proposal status for one event.
func (s *Store) SetProposalStatus(ctx context.Context, eventID string, status domain.ProposalStatus) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE calendar_events
		SET proposal_status = $2, updated_at = NOW()
		WHERE event_id = $1
	`

	result, err := s.pool.Exec(ctx, query, eventID, string(status))
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// scanEvent reads one calendar_events row.
func scanEvent(row pgx.Row) (*domain.CalendarEvent, error) {
	var (
		event          domain.CalendarEvent
		attendeesJSON  []byte
		externalJSON   []byte
		proposalStatus string
	)

	err := row.Scan(
		&event.EventID, &event.Summary, &event.Description, &event.Location,
		&event.MeetingURL, &event.OrganizerEmail, &event.StartTime, &event.EndTime,
		&attendeesJSON, &externalJSON, &event.DurationMinutes, &event.IsImportant,
		&event.CompanyName, &proposalStatus, &event.SyncedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(attendeesJSON, &event.Attendees); err != nil {
		return nil, fmt.Errorf("unmarshalling attendees: %w", err)
	}
	if err := json.Unmarshal(externalJSON, &event.ExternalAttendees); err != nil {
		return nil, fmt.Errorf("unmarshalling external attendees: %w", err)
	}
	event.ProposalStatus = domain.ProposalStatus(proposalStatus)

	return &event, nil
}

// attendeesOrEmpty never marshals nil to JSON null.
func attendeesOrEmpty(attendees []domain.Attendee) []domain.Attendee {
	if attendees == nil {
		return []domain.Attendee{}
	}
	return attendees
}
