package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/courseforge/course-engine/internal/domain"
)

const courseSchema = `
CREATE TABLE IF NOT EXISTS courses (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	filename      TEXT NOT NULL,
	document_hash TEXT NOT NULL UNIQUE,
	payload       TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_courses_user ON courses(user_id);
`

// SQLiteStore implements CourseStore on SQLite for single-node persistent
// deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the course database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, domain.CacheError("open sqlite database", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(courseSchema); err != nil {
		db.Close()
		return nil, domain.CacheError("create courses table", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get retrieves a course by document hash.
func (s *SQLiteStore) Get(ctx context.Context, hash string) (*domain.Course, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM courses WHERE document_hash = ?`, hash).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, domain.CacheError("sqlite select", err)
	}

	var course domain.Course
	if err := json.Unmarshal([]byte(payload), &course); err != nil {
		return nil, domain.CacheError("decode cached course", err)
	}

	return &course, nil
}

// Put stores the serialized course. A hash collision replaces the existing
// row; last write wins, which is safe because a write is always a complete
// course keyed by its own hash.
func (s *SQLiteStore) Put(ctx context.Context, rec CourseRecord) error {
	payload, err := json.Marshal(rec.Course)
	if err != nil {
		return domain.CacheError("encode course", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO courses (id, user_id, filename, document_hash, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(document_hash) DO UPDATE SET
		   id = excluded.id,
		   user_id = excluded.user_id,
		   filename = excluded.filename,
		   payload = excluded.payload`,
		rec.ID, rec.UserID, rec.Filename, rec.DocumentHash, string(payload), time.Now().UTC())
	if err != nil {
		return domain.CacheError("sqlite insert", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
