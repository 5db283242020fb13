package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("storage: record not found")

type Storage struct {
	db  *sql.DB
	now func() time.Time
}

type User struct {
	ID        int64
	Name      string
	Role      string
	Status    string
	CreatedAt time.Time
}

type AuditEntry struct {
	ID        int64
	UserID    int64
	Action    string
	CreatedAt time.Time
}

func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	s := &Storage{db: db, now: time.Now}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize database schema: %w", err)
	}
	log.Println("Database connection successful and schema initialized.")
	return s, nil
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS seo_cache (
			keyword TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			cached_at INTEGER NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS image_cache (
			query TEXT PRIMARY KEY,
			urls TEXT NOT NULL,
			cached_at INTEGER NOT NULL
		);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("schema execution failed for query '%s': %w", query, err)
			}
		}
	}
	return nil
}

// CreateUser inserts a user record, refreshing the stored name when the
// user already exists. Role and status of an existing record are kept.
func (s *Storage) CreateUser(userID int64, name, role string) error {
	query := `INSERT INTO users (user_id, name, role) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET name = excluded.name`
	_, err := s.db.Exec(query, userID, name, role)
	return err
}

func (s *Storage) GetUser(userID int64) (*User, error) {
	query := `SELECT user_id, name, role, status, created_at FROM users WHERE user_id = ?`
	row := s.db.QueryRow(query, userID)

	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Role, &u.Status, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Storage) SetUserRole(userID int64, role string) error {
	return s.updateUserField(`UPDATE users SET role = ? WHERE user_id = ?`, role, userID)
}

func (s *Storage) SetUserStatus(userID int64, status string) error {
	return s.updateUserField(`UPDATE users SET status = ? WHERE user_id = ?`, status, userID)
}

func (s *Storage) updateUserField(query, value string, userID int64) error {
	res, err := s.db.Exec(query, value, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) ListUsers() ([]User, error) {
	query := `SELECT user_id, name, role, status, created_at FROM users ORDER BY created_at, user_id`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Storage) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (s *Storage) AppendAudit(userID int64, action string) error {
	query := `INSERT INTO audit_log (user_id, action) VALUES (?, ?)`
	_, err := s.db.Exec(query, userID, action)
	return err
}

func (s *Storage) RecentAudit(limit int) ([]AuditEntry, error) {
	query := `SELECT id, user_id, action, created_at FROM audit_log ORDER BY id DESC LIMIT ?`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Storage) CacheSEO(keyword, payload string) error {
	query := `INSERT INTO seo_cache (keyword, payload, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(keyword) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at`
	_, err := s.db.Exec(query, keyword, payload, s.now().Unix())
	return err
}

// CachedSEO returns the stored payload for keyword, or ErrNotFound when
// the entry is missing or older than ttl.
func (s *Storage) CachedSEO(keyword string, ttl time.Duration) (string, error) {
	var payload string
	var cachedAt int64
	query := `SELECT payload, cached_at FROM seo_cache WHERE keyword = ?`
	err := s.db.QueryRow(query, keyword).Scan(&payload, &cachedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", err
	}
	if s.now().Sub(time.Unix(cachedAt, 0)) > ttl {
		return "", ErrNotFound
	}
	return payload, nil
}

func (s *Storage) CacheImages(query string, urls []string) error {
	encoded, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	stmt := `INSERT INTO image_cache (query, urls, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET urls = excluded.urls, cached_at = excluded.cached_at`
	_, err = s.db.Exec(stmt, query, string(encoded), s.now().Unix())
	return err
}

// CachedImages returns the stored image URLs for query, or ErrNotFound
// when the entry is missing or older than ttl.
func (s *Storage) CachedImages(query string, ttl time.Duration) ([]string, error) {
	var encoded string
	var cachedAt int64
	stmt := `SELECT urls, cached_at FROM image_cache WHERE query = ?`
	err := s.db.QueryRow(stmt, query).Scan(&encoded, &cachedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.now().Sub(time.Unix(cachedAt, 0)) > ttl {
		return nil, ErrNotFound
	}
	var urls []string
	if err := json.Unmarshal([]byte(encoded), &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

// CleanupExpired drops cache rows older than their TTLs. Scheduled
// alongside autoposting so the caches do not grow without bound.
func (s *Storage) CleanupExpired(seoTTL, imageTTL time.Duration) error {
	cutoff := s.now().Add(-seoTTL).Unix()
	if _, err := s.db.Exec(`DELETE FROM seo_cache WHERE cached_at < ?`, cutoff); err != nil {
		return err
	}
	cutoff = s.now().Add(-imageTTL).Unix()
	if _, err := s.db.Exec(`DELETE FROM image_cache WHERE cached_at < ?`, cutoff); err != nil {
		return err
	}
	return nil
}

func (s *Storage) Close() {
	s.db.Close()
}
