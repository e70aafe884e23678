package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// release_date is stored as date-only text; the engine never tracks
// time-of-day precision.
const dateLayout = "2006-01-02"

// ErrDuplicate is returned by Insert when an alert already exists for the
// (user, title) pair.
var ErrDuplicate = errors.New("alert already exists")

type Store struct {
	db *sql.DB
}

// Alert is one tracked (user, title) pair. EpisodeID is empty for movie
// alerts and holds the currently awaited episode's provider id for series
// alerts. ReleaseDate is day precision, UTC.
type Alert struct {
	UserID      int64
	UserName    string
	TitleID     string
	TitleName   string
	EpisodeID   string
	ReleaseDate time.Time
	CreatedAt   time.Time
}

// IsSeries reports whether the alert tracks a specific episode rather than
// a movie release.
func (a Alert) IsSeries() bool {
	return a.EpisodeID != ""
}

// NewStore opens the database at dbPath and initializes the schema. Schema
// creation is idempotent, so reopening an existing database is safe.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a new alert. The (user_id, title_id) uniqueness constraint
// is enforced by the schema; a violation surfaces as ErrDuplicate so the
// caller can distinguish it from storage faults.
func (s *Store) Insert(a *Alert) error {
	var episodeID any
	if a.EpisodeID != "" {
		episodeID = a.EpisodeID
	}
	_, err := s.db.Exec(
		`INSERT INTO alerts (user_id, user_name, title_id, title_name, episode_id, release_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.UserName, a.TitleID, a.TitleName, episodeID,
		a.ReleaseDate.Format(dateLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// FindOne returns the alert for the (user, title) pair, or nil when no
// such alert exists.
func (s *Store) FindOne(userID int64, titleID string) (*Alert, error) {
	row := s.db.QueryRow(
		`SELECT user_id, user_name, title_id, title_name, episode_id, release_date, created_at
		 FROM alerts WHERE user_id = ? AND title_id = ?`,
		userID, titleID,
	)
	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find alert: %w", err)
	}
	return a, nil
}

// FindDueOn returns all alerts whose release date equals the given day.
// This drives the daily tick.
func (s *Store) FindDueOn(day time.Time) ([]Alert, error) {
	rows, err := s.db.Query(
		`SELECT user_id, user_name, title_id, title_name, episode_id, release_date, created_at
		 FROM alerts WHERE release_date = ?`,
		day.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// All returns every alert ordered by release date. The CLI alert listing
// uses this.
func (s *Store) All() ([]Alert, error) {
	rows, err := s.db.Query(
		`SELECT user_id, user_name, title_id, title_name, episode_id, release_date, created_at
		 FROM alerts ORDER BY release_date, user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// UpdateEpisode advances an alert to a new episode id and release date.
// An empty episodeID keeps the column NULL so a rescheduled movie alert
// stays a movie alert. A no-op when the (user, title) key is absent.
func (s *Store) UpdateEpisode(userID int64, titleID, episodeID string, release time.Time) error {
	var episode any
	if episodeID != "" {
		episode = episodeID
	}
	_, err := s.db.Exec(
		`UPDATE alerts SET episode_id = ?, release_date = ?
		 WHERE user_id = ? AND title_id = ?`,
		episode, release.Format(dateLayout), userID, titleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return nil
}

// Delete removes the alert for the (user, title) pair. Deleting an absent
// alert is not an error.
func (s *Store) Delete(userID int64, titleID string) error {
	_, err := s.db.Exec(
		"DELETE FROM alerts WHERE user_id = ? AND title_id = ?",
		userID, titleID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

// TitleNames returns the display names of all titles the user has alerts
// for, in subscription order.
func (s *Store) TitleNames(userID int64) ([]string, error) {
	return s.userColumn(userID, "title_name")
}

// TitleIDs returns the provider title ids of all the user's alerts. The
// inline search UI uses this to mark already subscribed results.
func (s *Store) TitleIDs(userID int64) ([]string, error) {
	return s.userColumn(userID, "title_id")
}

func (s *Store) userColumn(userID int64, column string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT "+column+" FROM alerts WHERE user_id = ? ORDER BY created_at",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user alerts: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*Alert, error) {
	var a Alert
	var episodeID sql.NullString
	var release string
	if err := row.Scan(&a.UserID, &a.UserName, &a.TitleID, &a.TitleName,
		&episodeID, &release, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.EpisodeID = episodeID.String

	parsed, err := time.ParseInLocation(dateLayout, release, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("malformed release_date %q: %w", release, err)
	}
	a.ReleaseDate = parsed
	return &a, nil
}
