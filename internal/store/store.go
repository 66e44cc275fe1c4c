// Package store persists compiled artifacts between runs, keyed by
// source digests. A cache hit means every source the document depends on
// is byte-identical to the recorded compile, so the stored elements can
// be reused without evaluating anything.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/typeset/internal/introspector"
)

// Dep records one source file a stored artifact was compiled from.
type Dep struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// Artifact is a stored compile result.
type Artifact struct {
	Deps     []Dep
	Elements []introspector.Element
}

// Store is a sqlite-backed artifact database. Safe for use from one
// process at a time.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	digest     TEXT PRIMARY KEY,
	deps       TEXT NOT NULL,
	elements   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Open opens or creates the artifact database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Digest returns the hex digest used to key sources and artifacts.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the artifact stored under the digest of the main source,
// or ok=false when none exists.
func (s *Store) Get(digest string) (Artifact, bool, error) {
	var depsJSON, elemsJSON string
	row := s.db.QueryRow(`SELECT deps, elements FROM artifacts WHERE digest = ?`, digest)
	if err := row.Scan(&depsJSON, &elemsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artifact{}, false, nil
		}
		return Artifact{}, false, err
	}
	var a Artifact
	if err := json.Unmarshal([]byte(depsJSON), &a.Deps); err != nil {
		return Artifact{}, false, err
	}
	if err := json.Unmarshal([]byte(elemsJSON), &a.Elements); err != nil {
		return Artifact{}, false, err
	}
	return a, true, nil
}

// Put stores an artifact under the digest of the main source.
func (s *Store) Put(digest string, a Artifact) error {
	depsJSON, err := json.Marshal(a.Deps)
	if err != nil {
		return err
	}
	elemsJSON, err := json.Marshal(a.Elements)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO artifacts (digest, deps, elements, created_at) VALUES (?, ?, ?, ?)`,
		digest, string(depsJSON), string(elemsJSON), time.Now().Unix(),
	)
	return err
}

// Clear drops all stored artifacts.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM artifacts`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
