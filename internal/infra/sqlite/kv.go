package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// DefaultNamespace prefixes every key of the save domain.
const DefaultNamespace = "rachamuffin_"

// ─── Raw Key-Value ──────────────────────────────────────────────────────────

// PutRaw stores a raw JSON document under key.
func (d *DB) PutRaw(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, unixMillis(time.Now()),
	)
	return err
}

// GetRaw retrieves the raw document under key. found is false if missing.
func (d *DB) GetRaw(key string) (value string, found bool, err error) {
	err = d.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// DeleteRaw removes key.
func (d *DB) DeleteRaw(key string) error {
	_, err := d.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// DeletePrefix removes every key starting with prefix and returns the count.
// substr() is used instead of LIKE so '_' in the prefix is literal.
func (d *DB) DeletePrefix(prefix string) (int64, error) {
	result, err := d.db.Exec(
		`DELETE FROM kv WHERE substr(key, 1, ?) = ?`, len(prefix), prefix,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListPrefix returns every key starting with prefix, sorted.
func (d *DB) ListPrefix(prefix string) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ─── Store ──────────────────────────────────────────────────────────────────

// Store is the fail-soft domain.Store over the kv table. Every logical key
// is prefixed with the namespace; errors are logged, never returned.
type Store struct {
	db  *DB
	ns  string
	log zerolog.Logger
}

var _ domain.Store = (*Store)(nil)

// NewStore creates a store scoped to namespace (DefaultNamespace if empty).
func NewStore(db *DB, namespace string, logger zerolog.Logger) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{
		db:  db,
		ns:  namespace,
		log: logger.With().Str("component", "store").Str("namespace", namespace).Logger(),
	}
}

// Namespace returns the key prefix of this store.
func (s *Store) Namespace() string { return s.ns }

// Get decodes key into dst; false when missing or corrupt.
func (s *Store) Get(key string, dst any) bool {
	raw, found, err := s.db.GetRaw(s.ns + key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("read failed")
		return false
	}
	if !found || raw == "" {
		return false
	}
	if err := decodeInto([]byte(raw), dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt value, using default")
		return false
	}
	return true
}

// decodeInto unmarshals data into dst only if it decodes cleanly into a
// fresh value of the same type. json.Unmarshal alone keeps the fields it
// filled before hitting a type error.
func decodeInto(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &json.InvalidUnmarshalError{Type: reflect.TypeOf(dst)}
	}
	if err := json.Unmarshal(data, reflect.New(rv.Elem().Type()).Interface()); err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Set encodes value as JSON under key.
func (s *Store) Set(key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("encode failed")
		return false
	}
	if err := s.db.PutRaw(s.ns+key, string(data)); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("write failed")
		return false
	}
	return true
}

// Remove deletes key.
func (s *Store) Remove(key string) bool {
	if err := s.db.DeleteRaw(s.ns + key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("remove failed")
		return false
	}
	return true
}

// Clear removes every key of the namespace.
func (s *Store) Clear() bool {
	n, err := s.db.DeletePrefix(s.ns)
	if err != nil {
		s.log.Error().Err(err).Msg("clear failed")
		return false
	}
	s.log.Info().Int64("keys", n).Msg("save data cleared")
	return true
}

// Keys lists the logical (unprefixed) keys of the namespace.
func (s *Store) Keys() []string {
	full, err := s.db.ListPrefix(s.ns)
	if err != nil {
		s.log.Error().Err(err).Msg("list keys failed")
		return nil
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		keys = append(keys, k[len(s.ns):])
	}
	return keys
}

// GetRaw returns the raw JSON document under a logical key.
func (s *Store) GetRaw(key string) (json.RawMessage, bool) {
	raw, found, err := s.db.GetRaw(s.ns + key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return json.RawMessage(raw), true
}

// SetRaw writes a raw JSON document under a logical key. The document must
// be valid JSON.
func (s *Store) SetRaw(key string, raw json.RawMessage) bool {
	if !json.Valid(raw) {
		s.log.Warn().Str("key", key).Msg("refusing to store invalid JSON")
		return false
	}
	if err := s.db.PutRaw(s.ns+key, string(raw)); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("write failed")
		return false
	}
	return true
}
