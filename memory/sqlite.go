package memory

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/ZaguanLabs/xlate"
)

// SQLiteStore is a translation memory persisted in a local sqlite database,
// giving the memory a lifetime across batch runs without external services.
type SQLiteStore struct {
	db        *sql.DB
	writes    keyLocks
	threshold float64
}

// NewSQLiteStore opens (and migrates) a sqlite-backed translation memory at
// the given path. Ephemeral stores should use a throwaway file: with a
// ":memory:" path each pooled connection gets its own empty database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &xlate.MemoryError{Message: "failed to open database", Cause: err}
	}

	s := &SQLiteStore{db: db, threshold: DefaultFuzzyThreshold}
	if err := s.migrate(); err != nil {
		return nil, &xlate.MemoryError{Message: "failed to migrate", Cause: err}
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		fingerprint TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		role        TEXT NOT NULL,
		normalized  TEXT NOT NULL,
		target_text TEXT NOT NULL,
		score       REAL NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 1,
		created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_used   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (fingerprint, target_lang, role)
	);

	CREATE INDEX IF NOT EXISTS idx_tm_partition
		ON translation_memory (target_lang, role);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SetFuzzyThreshold overrides the minimum similarity for fuzzy candidates.
func (s *SQLiteStore) SetFuzzyThreshold(t float64) {
	s.threshold = t
}

// Lookup implements Memory.
func (s *SQLiteStore) Lookup(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole) (*Entry, []Candidate, error) {
	normalized := xlate.Normalize(sourceText)
	fp := xlate.Fingerprint(sourceText)

	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, normalized, target_lang, role, target_text, score, usage_count
		FROM translation_memory
		WHERE fingerprint = ? AND target_lang = ? AND role = ?`,
		fp, targetLang, string(role))

	var e Entry
	err := row.Scan(&e.Fingerprint, &e.Normalized, &e.TargetLang, &e.Role, &e.Target, &e.Score, &e.UsageCount)
	switch {
	case err == nil:
		return &e, nil, nil
	case err != sql.ErrNoRows:
		return nil, nil, &xlate.MemoryError{Message: "lookup failed", Cause: err}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, normalized, target_lang, role, target_text, score, usage_count
		FROM translation_memory
		WHERE target_lang = ? AND role = ?`,
		targetLang, string(role))
	if err != nil {
		return nil, nil, &xlate.MemoryError{Message: "fuzzy scan failed", Cause: err}
	}
	defer rows.Close()

	var partition []Entry
	for rows.Next() {
		var p Entry
		if err := rows.Scan(&p.Fingerprint, &p.Normalized, &p.TargetLang, &p.Role, &p.Target, &p.Score, &p.UsageCount); err != nil {
			return nil, nil, &xlate.MemoryError{Message: "fuzzy scan failed", Cause: err}
		}
		partition = append(partition, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &xlate.MemoryError{Message: "fuzzy scan failed", Cause: err}
	}

	return nil, rankCandidates(partition, normalized, s.threshold), nil
}

// Record implements Memory. The upsert only bumps usage_count on conflict;
// the stored target is never replaced by this path.
func (s *SQLiteStore) Record(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error {
	fp := xlate.Fingerprint(sourceText)
	key := xlate.MemoryKey(fp, targetLang, role)

	lock := s.writes.lock(key)
	defer lock.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translation_memory
			(fingerprint, target_lang, role, normalized, target_text, score)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint, target_lang, role) DO UPDATE SET
			usage_count = usage_count + 1,
			last_used = CURRENT_TIMESTAMP`,
		fp, targetLang, string(role), xlate.Normalize(sourceText), targetText, score)
	if err != nil {
		return &xlate.MemoryError{Message: "record failed", Cause: err}
	}
	return nil
}

// Overwrite implements Memory.
func (s *SQLiteStore) Overwrite(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error {
	fp := xlate.Fingerprint(sourceText)
	key := xlate.MemoryKey(fp, targetLang, role)

	lock := s.writes.lock(key)
	defer lock.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translation_memory
			(fingerprint, target_lang, role, normalized, target_text, score)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint, target_lang, role) DO UPDATE SET
			target_text = excluded.target_text,
			score = excluded.score,
			usage_count = 1,
			last_used = CURRENT_TIMESTAMP`,
		fp, targetLang, string(role), xlate.Normalize(sourceText), targetText, score)
	if err != nil {
		return &xlate.MemoryError{Message: "overwrite failed", Cause: err}
	}
	return nil
}

// Entries implements Enumerable.
func (s *SQLiteStore) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, normalized, target_lang, role, target_text, score, usage_count
		FROM translation_memory`)
	if err != nil {
		return nil, &xlate.MemoryError{Message: "entries scan failed", Cause: err}
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Fingerprint, &e.Normalized, &e.TargetLang, &e.Role, &e.Target, &e.Score, &e.UsageCount); err != nil {
			return nil, &xlate.MemoryError{Message: "entries scan failed", Cause: err}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Verify interfaces
var (
	_ Memory     = (*SQLiteStore)(nil)
	_ Enumerable = (*SQLiteStore)(nil)
)
