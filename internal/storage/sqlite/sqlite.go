// Package sqlite implements storage.Storage on top of SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"wedding-invitation/internal/models"
	"wedding-invitation/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS guests (
	token         TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	phone_number  TEXT,
	has_responded BOOLEAN NOT NULL DEFAULT 0,
	accepted      BOOLEAN NOT NULL DEFAULT 0,
	invited_at    DATETIME NOT NULL,
	viewed_at     DATETIME,
	rsvp_at       DATETIME,
	custom_fields TEXT,
	notes         TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS guests_phone_number ON guests (phone_number) WHERE phone_number IS NOT NULL;
`

const guestColumns = `token, name, phone_number, has_responded, accepted, invited_at, viewed_at, rsvp_at, custom_fields, notes`

// DB is a SQLite-backed guest list
type DB struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.Storage = (*DB)(nil)

// Open opens the database at dsn and creates the schema
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// AddGuest inserts a guest, or renames the guest with the same phone number
func (d *DB) AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	if guest.PhoneNumber != "" {
		existing, err := d.GetGuestByPhone(ctx, guest.PhoneNumber)
		switch {
		case err == nil:
			if _, err := d.db.ExecContext(ctx,
				`UPDATE guests SET name = ?, notes = CASE WHEN ? = '' THEN notes ELSE ? END WHERE token = ?`,
				guest.Name, guest.Notes, guest.Notes, existing.Token,
			); err != nil {
				return models.Guest{}, fmt.Errorf("failed to update guest: %w", err)
			}
			existing.Name = guest.Name
			if guest.Notes != "" {
				existing.Notes = guest.Notes
			}
			return *existing, nil
		case !errors.Is(err, storage.ErrGuestNotFound):
			return models.Guest{}, err
		}
	}

	if guest.Token == "" {
		guest.Token = uuid.NewString()
	}
	if guest.InvitedDate.IsZero() {
		guest.InvitedDate = d.now()
	}
	fields, err := encodeFields(guest.CustomFields)
	if err != nil {
		return models.Guest{}, err
	}

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO guests (`+guestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		guest.Token, guest.Name, nullString(guest.PhoneNumber), guest.HasResponded, guest.Accepted,
		guest.InvitedDate, nullTime(guest.ViewedDate), nullTime(guest.RSVPDate), fields, guest.Notes,
	)
	if err != nil {
		return models.Guest{}, fmt.Errorf("failed to insert guest: %w", err)
	}
	return guest, nil
}

// GetGuest retrieves a guest by invitation token
func (d *DB) GetGuest(ctx context.Context, token string) (*models.Guest, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE token = ?`, token)
	return scanGuest(row)
}

// GetGuestByPhone retrieves a guest by phone number
func (d *DB) GetGuestByPhone(ctx context.Context, phoneNumber string) (*models.Guest, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE phone_number = ?`, phoneNumber)
	return scanGuest(row)
}

// MarkViewed sets viewed_at unless it is already set
func (d *DB) MarkViewed(ctx context.Context, token string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE guests SET viewed_at = COALESCE(viewed_at, ?) WHERE token = ?`, d.now(), token)
	if err != nil {
		return fmt.Errorf("failed to mark viewed: %w", err)
	}
	return requireRow(res)
}

// RecordResponse updates the RSVP answer for a guest
func (d *DB) RecordResponse(ctx context.Context, token string, accepted bool, fields map[string]string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT custom_fields FROM guests WHERE token = ?`, token).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrGuestNotFound
		}
		return fmt.Errorf("failed to load guest: %w", err)
	}

	existing, err := decodeFields(raw)
	if err != nil {
		return err
	}
	encoded, err := encodeFields(storage.MergeFields(existing, fields))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE guests SET has_responded = 1, accepted = ?, rsvp_at = ?, custom_fields = ? WHERE token = ?`,
		accepted, d.now(), encoded, token,
	); err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	return tx.Commit()
}

// GetAllGuests returns every guest in invitation order
func (d *DB) GetAllGuests(ctx context.Context) ([]models.Guest, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+guestColumns+` FROM guests ORDER BY invited_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var guests []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

// GetGuestsByStatus returns guests filtered by RSVP display state
func (d *DB) GetGuestsByStatus(ctx context.Context, status models.RSVPStatus) ([]models.Guest, error) {
	guests, err := d.GetAllGuests(ctx)
	if err != nil {
		return nil, err
	}
	return storage.FilterByStatus(guests, status), nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGuest(row scanner) (*models.Guest, error) {
	var (
		g              models.Guest
		phone          sql.NullString
		viewed, rsvpAt sql.NullTime
		fields         sql.NullString
	)
	err := row.Scan(&g.Token, &g.Name, &phone, &g.HasResponded, &g.Accepted, &g.InvitedDate, &viewed, &rsvpAt, &fields, &g.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to scan guest: %w", err)
	}
	g.PhoneNumber = phone.String
	g.ViewedDate = viewed.Time
	g.RSVPDate = rsvpAt.Time
	if g.CustomFields, err = decodeFields(fields); err != nil {
		return nil, err
	}
	return &g, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrGuestNotFound
	}
	return nil
}

func encodeFields(fields map[string]string) (sql.NullString, error) {
	if len(fields) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode custom fields: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeFields(raw sql.NullString) (map[string]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var fields map[string]string
	if err := json.Unmarshal([]byte(raw.String), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode custom fields: %w", err)
	}
	return fields, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
