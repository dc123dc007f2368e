package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/xlate"
)

// RedisStore is a redis-backed translation memory, for sharing one memory
// across concurrent batch workers or machines. Each (language, role)
// partition is a redis hash keyed by fingerprint, so exact lookups are one
// HGET and fuzzy scans one HGETALL of the partition.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	writes    keyLocks
	threshold float64
}

// RedisConfig holds configuration for the redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "xlate:")
}

// NewRedisStore creates a redis-backed translation memory.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &xlate.MemoryError{Message: "invalid redis URL", Cause: err}
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, &xlate.MemoryError{Message: "redis unreachable", Cause: err}
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "xlate:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		threshold: DefaultFuzzyThreshold,
	}
}

// SetFuzzyThreshold overrides the minimum similarity for fuzzy candidates.
func (s *RedisStore) SetFuzzyThreshold(t float64) {
	s.threshold = t
}

func (s *RedisStore) partition(targetLang string, role xlate.ContentRole) string {
	return s.keyPrefix + "tm:" + targetLang + ":" + string(role)
}

// Lookup implements Memory.
func (s *RedisStore) Lookup(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole) (*Entry, []Candidate, error) {
	normalized := xlate.Normalize(sourceText)
	fp := xlate.Fingerprint(sourceText)
	part := s.partition(targetLang, role)

	val, err := s.client.HGet(ctx, part, fp).Result()
	if err == nil {
		var e Entry
		if err := json.Unmarshal([]byte(val), &e); err != nil {
			return nil, nil, &xlate.MemoryError{Message: "corrupt entry", Cause: err}
		}
		return &e, nil, nil
	}
	if err != redis.Nil {
		return nil, nil, &xlate.MemoryError{Message: "lookup failed", Cause: err}
	}

	all, err := s.client.HGetAll(ctx, part).Result()
	if err != nil {
		return nil, nil, &xlate.MemoryError{Message: "fuzzy scan failed", Cause: err}
	}

	partition := make([]Entry, 0, len(all))
	for _, raw := range all {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue // skip corrupt entries rather than failing the lookup
		}
		partition = append(partition, e)
	}
	return nil, rankCandidates(partition, normalized, s.threshold), nil
}

// Record implements Memory. The per-key lock makes the read-modify-write
// against redis atomic within this process; cross-process last-write-wins
// on the usage counter is acceptable since the target itself is immutable
// under this path.
func (s *RedisStore) Record(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error {
	fp := xlate.Fingerprint(sourceText)
	key := xlate.MemoryKey(fp, targetLang, role)
	part := s.partition(targetLang, role)

	lock := s.writes.lock(key)
	defer lock.Unlock()

	val, err := s.client.HGet(ctx, part, fp).Result()
	if err == nil {
		var e Entry
		if err := json.Unmarshal([]byte(val), &e); err != nil {
			return &xlate.MemoryError{Message: "corrupt entry", Cause: err}
		}
		e.UsageCount++
		return s.put(ctx, part, fp, &e)
	}
	if err != redis.Nil {
		return &xlate.MemoryError{Message: "record failed", Cause: err}
	}

	return s.put(ctx, part, fp, &Entry{
		Fingerprint: fp,
		Normalized:  xlate.Normalize(sourceText),
		TargetLang:  targetLang,
		Role:        role,
		Target:      targetText,
		Score:       score,
		UsageCount:  1,
	})
}

// Overwrite implements Memory.
func (s *RedisStore) Overwrite(ctx context.Context, sourceText, targetLang string, role xlate.ContentRole, targetText string, score float64) error {
	fp := xlate.Fingerprint(sourceText)
	key := xlate.MemoryKey(fp, targetLang, role)
	part := s.partition(targetLang, role)

	lock := s.writes.lock(key)
	defer lock.Unlock()

	return s.put(ctx, part, fp, &Entry{
		Fingerprint: fp,
		Normalized:  xlate.Normalize(sourceText),
		TargetLang:  targetLang,
		Role:        role,
		Target:      targetText,
		Score:       score,
		UsageCount:  1,
	})
}

func (s *RedisStore) put(ctx context.Context, part, field string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return &xlate.MemoryError{Message: "encode entry", Cause: err}
	}
	if err := s.client.HSet(ctx, part, field, string(data)).Err(); err != nil {
		return &xlate.MemoryError{Message: "write failed", Cause: err}
	}
	return nil
}

// Entries implements Enumerable by scanning all partition hashes.
func (s *RedisStore) Entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"tm:*", 0).Iterator()
	for iter.Next(ctx) {
		all, err := s.client.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			return nil, &xlate.MemoryError{Message: "entries scan failed", Cause: err}
		}
		for _, raw := range all {
			var e Entry
			if err := json.Unmarshal([]byte(raw), &e); err != nil {
				continue
			}
			out = append(out, e)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, &xlate.MemoryError{Message: "entries scan failed", Cause: err}
	}
	return out, nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify interfaces
var (
	_ Memory     = (*RedisStore)(nil)
	_ Enumerable = (*RedisStore)(nil)
)
