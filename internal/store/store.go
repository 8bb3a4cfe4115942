package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrNoFields  = RepositoryError("no fields given")
	ErrEmptyType = RepositoryError("entity type is required")
)

// RepositoryError distinguishes store errors from driver errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Record is one stored entity. Fields never contain the id.
type Record struct {
	ID         string
	EntityType string
	Fields     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Flat returns the fields with anything nested under "data" lifted to the
// top level. Nested values win over flat ones.
func (r Record) Flat() map[string]any {
	flat := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		if k != "data" {
			flat[k] = v
		}
	}
	if nested, ok := r.Fields["data"].(map[string]any); ok {
		for k, v := range nested {
			flat[k] = v
		}
	}
	return flat
}

// Store is a small entity store on SQLite. Entities are schemaless JSON
// documents keyed by a generated id and grouped by entity type.
type Store struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// Open opens (or creates) the database at path
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		panic("Store: logger cannot be nil")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// one connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS entities (
		id          TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		data        TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`)
	if err == nil {
		_, err = db.Exec(`CREATE INDEX IF NOT EXISTS entities_by_type ON entities (entity_type)`)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating entities table: %w", err)
	}

	logger.Debugf("Store: opened %s", path)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every entity of the given type in creation order
func (s *Store) List(ctx context.Context, entityType string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_type, data, created_at, updated_at FROM entities WHERE entity_type = ? ORDER BY rowid`,
		entityType,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", entityType, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", entityType, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Filter returns the entities of the given type matching every criterion.
// A criterion matches a field with an equal value, or a list field that
// contains the value. Fields nested under "data" are matched too.
func (s *Store) Filter(ctx context.Context, entityType string, criteria map[string]any) ([]Record, error) {
	all, err := s.List(ctx, entityType)
	if err != nil {
		return nil, err
	}
	var matched []Record
	for _, r := range all {
		if matches(r.Flat(), criteria) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Get returns one entity or ErrNotFound
func (s *Store) Get(ctx context.Context, entityType, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, entity_type, data, created_at, updated_at FROM entities WHERE entity_type = ? AND id = ?`,
		entityType, id,
	)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("getting %s %s: %w", entityType, id, err)
	}
	return r, nil
}

// Create stores fields as a new entity with a generated id
func (s *Store) Create(ctx context.Context, entityType string, fields map[string]any) (Record, error) {
	if entityType == "" {
		return Record{}, ErrEmptyType
	}
	fields = withoutID(fields)
	data, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s: %w", entityType, err)
	}

	now := s.now().UTC()
	r := Record{
		ID:         uuid.NewString(),
		EntityType: entityType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entities (id, entity_type, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, entityType, string(data), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("creating %s: %w", entityType, err)
	}
	if r.Fields, err = decodeFields(data); err != nil {
		return Record{}, err
	}

	s.logger.Debugf("Store: created %s %s", entityType, r.ID)
	return r, nil
}

// Update merges fields into an existing entity. Top-level keys replace the
// stored ones; keys that are not given are kept.
func (s *Store) Update(ctx context.Context, entityType, id string, fields map[string]any) (Record, error) {
	if len(fields) == 0 {
		return Record{}, ErrNoFields
	}
	r, err := s.Get(ctx, entityType, id)
	if err != nil {
		return Record{}, err
	}
	for k, v := range withoutID(fields) {
		r.Fields[k] = v
	}
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s %s: %w", entityType, id, err)
	}

	r.UpdatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE entities SET data = ?, updated_at = ? WHERE entity_type = ? AND id = ?`,
		string(data), r.UpdatedAt.UnixNano(), entityType, id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("updating %s %s: %w", entityType, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Record{}, ErrNotFound
	}
	if r.Fields, err = decodeFields(data); err != nil {
		return Record{}, err
	}

	s.logger.Debugf("Store: updated %s %s", entityType, id)
	return r, nil
}

// Delete removes an entity; deleting a missing one returns ErrNotFound
func (s *Store) Delete(ctx context.Context, entityType, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE entity_type = ? AND id = ?`, entityType, id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", entityType, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.logger.Debugf("Store: deleted %s %s", entityType, id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var data string
	var created, updated int64
	if err := row.Scan(&r.ID, &r.EntityType, &data, &created, &updated); err != nil {
		return Record{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	r.UpdatedAt = time.Unix(0, updated).UTC()
	fields, err := decodeFields([]byte(data))
	if err != nil {
		return Record{}, fmt.Errorf("entity %s: %w", r.ID, err)
	}
	r.Fields = fields
	return r, nil
}

func decodeFields(data []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	return fields, nil
}

func withoutID(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}

func matches(fields, criteria map[string]any) bool {
	for key, want := range criteria {
		got, ok := fields[key]
		if !ok {
			return false
		}
		if sameJSON(got, want) {
			continue
		}
		list, isList := got.([]any)
		if !isList || !containsJSON(list, want) {
			return false
		}
	}
	return true
}

func containsJSON(list []any, want any) bool {
	for _, item := range list {
		if sameJSON(item, want) {
			return true
		}
	}
	return false
}

// sameJSON compares values by their JSON encoding, so 3 and 3.0 are equal
func sameJSON(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}
