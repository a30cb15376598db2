package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pvmviz/pkg/style"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file:" + filepath.Join(t.TempDir(), "styles.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))

	var version int
	require.NoError(t, s.DB().QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version))
	assert.Equal(t, len(migrations), version)
}

func TestMissingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.NodeStyle(ctx, "gateway")
	assert.ErrorIs(t, err, style.ErrNotFound)
	_, err = s.TransitionStyle(ctx)
	assert.ErrorIs(t, err, style.ErrNotFound)
	_, err = s.SpecialNodeStyle(ctx, style.SpecialEnd)
	assert.ErrorIs(t, err, style.ErrNotFound)
	_, err = s.GraphSettings(ctx)
	assert.ErrorIs(t, err, style.ErrNotFound)
}

func TestPutAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	gw := style.Record{
		Shape:         "hexagon",
		Gradient:      style.V("#fffabf:#ffffff", "#3a3a10:#1e1e1e"),
		FontSize:      12,
		GradientAngle: 90,
	}
	require.NoError(t, s.PutNodeStyle(ctx, "gateway", gw))

	got, err := s.NodeStyle(ctx, "gateway")
	require.NoError(t, err)
	assert.Equal(t, gw, got)

	// Upsert replaces the whole row.
	require.NoError(t, s.PutNodeStyle(ctx, "gateway", style.Record{Shape: "diamond"}))
	got, err = s.NodeStyle(ctx, "gateway")
	require.NoError(t, err)
	assert.Equal(t, style.Record{Shape: "diamond"}, got)

	g := style.GraphRecord{RankDir: "LR", RankSep: 0.4, Background: style.V("white", "#000000")}
	require.NoError(t, s.PutGraphSettings(ctx, g))
	gotG, err := s.GraphSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, g, gotG)
}

func TestSeedBuiltins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	builtin := style.BuiltinTable()
	require.NoError(t, s.Seed(ctx, builtin))

	for nodeType, want := range builtin.Nodes {
		got, err := s.NodeStyle(ctx, nodeType)
		require.NoError(t, err, nodeType)
		assert.Equal(t, want, got, nodeType)
	}
	tr, err := s.TransitionStyle(ctx)
	require.NoError(t, err)
	assert.Equal(t, *builtin.Transition, tr)

	start, err := s.SpecialNodeStyle(ctx, style.SpecialStart)
	require.NoError(t, err)
	assert.Equal(t, builtin.Special[style.SpecialStart], start)
}

func TestSeedIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Node styles are written last, so the graph and transition rows are
	// already in the transaction when this fails.
	_, err := s.DB().ExecContext(ctx, "DROP TABLE "+tableNodes)
	require.NoError(t, err)

	err = s.Seed(ctx, style.BuiltinTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), tableNodes)

	_, err = s.GraphSettings(ctx)
	assert.ErrorIs(t, err, style.ErrNotFound)
	_, err = s.TransitionStyle(ctx)
	assert.ErrorIs(t, err, style.ErrNotFound)
	_, err = s.SpecialNodeStyle(ctx, style.SpecialStart)
	assert.ErrorIs(t, err, style.ErrNotFound)
}

func TestResolverOverStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutNodeStyle(ctx, "gateway", style.Record{Shape: "hexagon"}))

	r := style.NewResolver(s, nil)
	e := r.NodeStyle(ctx, style.ModeDark, "gateway")
	assert.Equal(t, "hexagon", e.Shape)
	assert.NotEmpty(t, e.FontName, "unset columns fall back to built-ins")
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x TEXT);\n\n-- only a comment\n;CREATE TABLE b (y TEXT);")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.Contains(t, stmts[1], "CREATE TABLE b")
}
