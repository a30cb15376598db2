package stylestore

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/observability"
	"github.com/matzehuels/pvmviz/pkg/style"
	"github.com/matzehuels/pvmviz/pkg/stylestore/file"
	"github.com/matzehuels/pvmviz/pkg/stylestore/mongo"
	"github.com/matzehuels/pvmviz/pkg/stylestore/redis"
	"github.com/matzehuels/pvmviz/pkg/stylestore/sqlstore"
)

// Store is an opened style source.
type Store interface {
	style.Source
	Close() error
}

// Seeder is implemented by stores that accept writes.
type Seeder interface {
	Seed(ctx context.Context, t *style.Table) error
}

// Ensure the writable backends implement Seeder.
var (
	_ Seeder = (*redis.Store)(nil)
	_ Seeder = (*mongo.Store)(nil)
	_ Seeder = (*sqlstore.Store)(nil)
)

// Options tunes [OpenWith].
type Options struct {
	Logger *log.Logger

	// Retry governs connection attempts to Redis and MongoDB. The zero
	// value means cache.DefaultBackoff.
	Retry cache.Backoff

	// Fallback serves the built-in table when a remote store cannot be
	// reached. Malformed sources still fail.
	Fallback bool
}

// Open opens the style source named by src. The caller must Close it.
// Every failure is returned, which suits commands that write to the store.
func Open(ctx context.Context, src string, logger *log.Logger) (Store, error) {
	return OpenWith(ctx, src, Options{Logger: logger})
}

// OpenWith opens the style source named by src. The caller must Close it.
func OpenWith(ctx context.Context, src string, opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if err := errors.ValidateStyleSource(src); err != nil {
		return nil, err
	}

	var (
		s   Store
		err error
	)
	switch {
	case src == "":
		s = nopCloser{style.Builtin{}}
	case strings.HasPrefix(src, "file:"):
		var t *style.Table
		if t, err = file.Load(strings.TrimPrefix(src, "file:")); err == nil {
			s = nopCloser{t}
		}
	case strings.HasPrefix(src, "redis://"), strings.HasPrefix(src, "rediss://"):
		s, err = redis.Open(ctx, src, opts.Retry)
	case strings.HasPrefix(src, "mongodb://"), strings.HasPrefix(src, "mongodb+srv://"):
		s, err = mongo.Open(ctx, src, opts.Retry)
	case strings.HasPrefix(src, "libsql:"):
		s, err = openSQL(ctx, strings.TrimPrefix(src, "libsql:"))
	}
	if err != nil {
		if !opts.Fallback || errors.GetCode(err) != errors.ErrCodeNetwork || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("style source unreachable, using built-in styles", "source", Describe(src), "error", err)
		observability.Style().OnStyleFallback(ctx, "source", Describe(src), err)
		return nopCloser{style.Builtin{}}, nil
	}
	logger.Debug("style source opened", "source", Describe(src))
	return s, nil
}

func openSQL(ctx context.Context, dsn string) (Store, error) {
	s, err := sqlstore.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		code := errors.ErrCodeNetwork
		if local(dsn) {
			code = errors.ErrCodeInvalidStyleSource
		}
		return nil, errors.Wrap(code, err, "migrate %s", Describe(dsn))
	}
	return s, nil
}

// local reports whether a libSQL DSN names a file rather than a server.
func local(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || !strings.Contains(dsn, "://")
}

// Describe returns src with any URL credentials removed, for logs.
func Describe(src string) string {
	if src == "" {
		return "builtin"
	}
	scheme, rest, ok := strings.Cut(src, "://")
	if !ok {
		return src
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		if slash := strings.Index(rest, "/"); slash < 0 || at < slash {
			rest = rest[at+1:]
		}
	}
	return scheme + "://" + rest
}

type nopCloser struct{ style.Source }

func (nopCloser) Close() error { return nil }
