// Package redis serves style records from Redis hashes.
//
// Keys follow "<prefix>:node:<type>", "<prefix>:transition:default",
// "<prefix>:special:<start|end>" and "<prefix>:graph:default". Hash fields
// use the external schema names (shape, color_light, fillcolor_gradient_dark, ...).
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// DefaultPrefix namespaces style keys.
const DefaultPrefix = "pvmviz:style"

const defaultName = "default"

// Store implements [style.Source] on top of Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// Ensure Store implements style.Source.
var _ style.Source = (*Store)(nil)

// Open connects to the server named by a redis:// or rediss:// URL and
// pings it, retrying per retry. A zero retry means [cache.DefaultBackoff].
func Open(ctx context.Context, url string, retry cache.Backoff) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyleSource, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	err = retry.Retry(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect style store %s", opts.Addr)
	}
	return New(client, DefaultPrefix), nil
}

// New wraps an existing client. An empty prefix means DefaultPrefix.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) key(kind, name string) string {
	return s.prefix + ":" + kind + ":" + name
}

func (s *Store) NodeStyle(ctx context.Context, nodeType string) (style.Record, error) {
	return s.record(ctx, s.key("node", nodeType))
}

func (s *Store) TransitionStyle(ctx context.Context) (style.Record, error) {
	return s.record(ctx, s.key("transition", defaultName))
}

func (s *Store) SpecialNodeStyle(ctx context.Context, kind style.Special) (style.Record, error) {
	return s.record(ctx, s.key("special", string(kind)))
}

func (s *Store) GraphSettings(ctx context.Context) (style.GraphRecord, error) {
	key := s.key("graph", defaultName)
	f, err := s.hash(ctx, key)
	if err != nil {
		return style.GraphRecord{}, err
	}
	r, err := style.GraphRecordFromFields(f)
	if err != nil {
		return style.GraphRecord{}, fmt.Errorf("%s: %w", key, err)
	}
	return r, nil
}

func (s *Store) record(ctx context.Context, key string) (style.Record, error) {
	f, err := s.hash(ctx, key)
	if err != nil {
		return style.Record{}, err
	}
	r, err := style.RecordFromFields(f)
	if err != nil {
		return style.Record{}, fmt.Errorf("%s: %w", key, err)
	}
	return r, nil
}

// hash reads a whole hash. A missing key reads as an empty hash in Redis,
// which is reported as style.ErrNotFound.
func (s *Store) hash(ctx context.Context, key string) (map[string]string, error) {
	f, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(f) == 0 {
		return nil, style.ErrNotFound
	}
	return f, nil
}

// PutNodeStyle replaces the hash for a node type.
func (s *Store) PutNodeStyle(ctx context.Context, nodeType string, r style.Record) error {
	return s.put(ctx, s.key("node", nodeType), r.Fields())
}

// PutTransitionStyle replaces the transition hash.
func (s *Store) PutTransitionStyle(ctx context.Context, r style.Record) error {
	return s.put(ctx, s.key("transition", defaultName), r.Fields())
}

// PutSpecialNodeStyle replaces the hash for a virtual node.
func (s *Store) PutSpecialNodeStyle(ctx context.Context, kind style.Special, r style.Record) error {
	return s.put(ctx, s.key("special", string(kind)), r.Fields())
}

// PutGraphSettings replaces the graph settings hash.
func (s *Store) PutGraphSettings(ctx context.Context, r style.GraphRecord) error {
	return s.put(ctx, s.key("graph", defaultName), r.Fields())
}

// Seed writes every record of t in one transaction.
func (s *Store) Seed(ctx context.Context, t *style.Table) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		write := func(key string, f map[string]string) {
			pipe.Del(ctx, key)
			if len(f) > 0 {
				pipe.HSet(ctx, key, f)
			}
		}
		if t.Graph != nil {
			write(s.key("graph", defaultName), t.Graph.Fields())
		}
		if t.Transition != nil {
			write(s.key("transition", defaultName), t.Transition.Fields())
		}
		for kind, r := range t.Special {
			write(s.key("special", string(kind)), r.Fields())
		}
		for nodeType, r := range t.Nodes {
			write(s.key("node", nodeType), r.Fields())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed styles: %w", err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, f map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(f) > 0 {
			pipe.HSet(ctx, key, f)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
