package mongo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/style"
)

func TestFields(t *testing.T) {
	doc := bson.M{
		"_id":           "abc",
		"node_type":     "gateway",
		"shape":         "diamond",
		"fontsize":      int32(12),
		"penwidth":      1.5,
		"gradientangle": int64(90),
		"label":         "",
		"nested":        bson.M{"x": 1},
		"style":         nil,
	}
	assert.Equal(t, map[string]string{
		"shape":         "diamond",
		"fontsize":      "12",
		"penwidth":      "1.5",
		"gradientangle": "90",
	}, Fields(doc))
}

func TestDocument(t *testing.T) {
	doc := Document("kind", "start", map[string]string{"shape": "circle", "label": "Start"})
	assert.Equal(t, bson.D{
		{Key: "kind", Value: "start"},
		{Key: "label", Value: "Start"},
		{Key: "shape", Value: "circle"},
	}, doc)
}

func TestDocumentRoundTrip(t *testing.T) {
	want := style.BuiltinTable().Special[style.SpecialEnd]

	raw, err := bson.Marshal(Document("kind", "end", want.Fields()))
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got, err := style.RecordFromFields(Fields(doc))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenRejectsBadURI(t *testing.T) {
	_, err := Open(t.Context(), "mongodb://localhost:notaport", cache.Backoff{})
	assert.Error(t, err)
}

func ns(coll string) string { return DefaultDatabase + "." + coll }

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestStoreLookups(t *testing.T) {
	mt := newMock(t)

	mt.Run("node style", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollectionNodes), mtest.FirstBatch,
			bson.D{{Key: "node_type", Value: "gateway"}, {Key: "shape", Value: "diamond"}, {Key: "fontsize", Value: int32(11)}}))

		r, err := s.NodeStyle(mt.Context(), "gateway")
		require.NoError(mt, err)
		assert.Equal(mt, "diamond", r.Shape)
		assert.Equal(mt, 11.0, r.FontSize)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, CollectionNodes, evt.Command.Lookup("find").StringValue())
		nodeType, ok := evt.Command.Lookup("filter", "node_type").StringValueOK()
		assert.True(mt, ok)
		assert.Equal(mt, "gateway", nodeType)
	})

	mt.Run("transition style", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollectionTransition), mtest.FirstBatch,
			bson.D{{Key: "name", Value: "default"}, {Key: "color_light", Value: "#333333"}}))

		r, err := s.TransitionStyle(mt.Context())
		require.NoError(mt, err)
		assert.Equal(mt, "#333333", r.Color.Light)
		assert.Equal(mt, CollectionTransition, mt.GetStartedEvent().Command.Lookup("find").StringValue())
	})

	mt.Run("special node style", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollectionSpecial), mtest.FirstBatch,
			bson.D{{Key: "kind", Value: "end"}, {Key: "label", Value: "Done"}}))

		r, err := s.SpecialNodeStyle(mt.Context(), style.SpecialEnd)
		require.NoError(mt, err)
		assert.Equal(mt, "Done", r.Label)
		kind, _ := mt.GetStartedEvent().Command.Lookup("filter", "kind").StringValueOK()
		assert.Equal(mt, "end", kind)
	})

	mt.Run("graph settings", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollectionGraph), mtest.FirstBatch,
			bson.D{{Key: "name", Value: "default"}, {Key: "rankdir", Value: "LR"}, {Key: "ranksep", Value: 0.6}}))

		g, err := s.GraphSettings(mt.Context())
		require.NoError(mt, err)
		assert.Equal(mt, "LR", g.RankDir)
		assert.Equal(mt, 0.6, g.RankSep)
	})
}

func TestStoreMissingRecord(t *testing.T) {
	mt := newMock(t)

	mt.Run("not found", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(CollectionNodes), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(CollectionGraph), mtest.FirstBatch),
		)

		_, err := s.NodeStyle(mt.Context(), "gateway")
		assert.ErrorIs(mt, err, style.ErrNotFound)
		_, err = s.GraphSettings(mt.Context())
		assert.ErrorIs(mt, err, style.ErrNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized on pvmviz",
		}))

		_, err := s.SpecialNodeStyle(mt.Context(), style.SpecialStart)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, style.ErrNotFound)
		assert.Contains(mt, err.Error(), CollectionSpecial)
	})

	mt.Run("malformed record", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollectionGraph), mtest.FirstBatch,
			bson.D{{Key: "name", Value: "default"}, {Key: "ranksep", Value: "wide"}}))

		_, err := s.GraphSettings(mt.Context())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, style.ErrNotFound)
	})
}

func TestStoreSeed(t *testing.T) {
	mt := newMock(t)
	table := style.BuiltinTable()
	writes := 2 + len(table.Special) + len(table.Nodes)

	mt.Run("upserts every record", func(mt *mtest.T) {
		s := New(mt.Client, "")
		for range writes {
			mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		}
		require.NoError(mt, s.Seed(mt.Context(), table))

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, writes)
		colls := map[string]int{}
		for _, evt := range events {
			assert.Equal(mt, "update", evt.CommandName)
			colls[evt.Command.Lookup("update").StringValue()]++
			upsert, ok := evt.Command.Lookup("updates", "0", "upsert").BooleanOK()
			assert.True(mt, ok && upsert, "replace must upsert")
		}
		assert.Equal(mt, map[string]int{
			CollectionGraph:      1,
			CollectionTransition: 1,
			CollectionSpecial:    len(table.Special),
			CollectionNodes:      len(table.Nodes),
		}, colls)
	})

	mt.Run("stops at the first failed write", func(mt *mtest.T) {
		s := New(mt.Client, "")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "document failed validation"}))

		err := s.Seed(mt.Context(), table)
		require.Error(mt, err)
		assert.True(mt, strings.HasPrefix(err.Error(), "replace "+CollectionGraph), err.Error())
		assert.Len(mt, mt.GetAllStartedEvents(), 1)
	})
}
