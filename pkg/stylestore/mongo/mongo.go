// Package mongo serves style records from MongoDB collections.
//
// Each record kind lives in its own collection. Documents are keyed by
// node_type, kind or name and carry the external schema field names as
// top-level fields:
//
//	{ "node_type": "gateway", "shape": "diamond", "fillcolor_gradient_light": "#fffabf:#ffffff" }
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/matzehuels/pvmviz/pkg/cache"
	pvmerrors "github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// Collection names.
const (
	CollectionNodes      = "diagram_node_type_styles"
	CollectionTransition = "diagram_transition_styles"
	CollectionSpecial    = "diagram_special_node_styles"
	CollectionGraph      = "diagram_graph_settings"
)

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "pvmviz"

const defaultName = "default"

// Store implements [style.Source] on top of MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Ensure Store implements style.Source.
var _ style.Source = (*Store)(nil)

// Open connects to the deployment named by a mongodb:// or mongodb+srv://
// URI and pings the primary.
func Open(ctx context.Context, uri string, retry cache.Backoff) (*Store, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, pvmerrors.Wrap(pvmerrors.ErrCodeInvalidStyleSource, err, "parse mongodb uri")
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, pvmerrors.Wrap(pvmerrors.ErrCodeInvalidStyleSource, err, "connect mongodb")
	}
	err = retry.Retry(ctx, func() error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, pvmerrors.Wrap(pvmerrors.ErrCodeNetwork, err, "ping mongodb")
	}
	return New(client, dbName), nil
}

// New wraps a connected client. An empty dbName means DefaultDatabase.
func New(client *mongo.Client, dbName string) *Store {
	if dbName == "" {
		dbName = DefaultDatabase
	}
	return &Store{client: client, db: client.Database(dbName)}
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) NodeStyle(ctx context.Context, nodeType string) (style.Record, error) {
	return s.record(ctx, CollectionNodes, bson.D{{Key: "node_type", Value: nodeType}})
}

func (s *Store) TransitionStyle(ctx context.Context) (style.Record, error) {
	return s.record(ctx, CollectionTransition, bson.D{{Key: "name", Value: defaultName}})
}

func (s *Store) SpecialNodeStyle(ctx context.Context, kind style.Special) (style.Record, error) {
	return s.record(ctx, CollectionSpecial, bson.D{{Key: "kind", Value: string(kind)}})
}

func (s *Store) GraphSettings(ctx context.Context) (style.GraphRecord, error) {
	doc, err := s.findOne(ctx, CollectionGraph, bson.D{{Key: "name", Value: defaultName}})
	if err != nil {
		return style.GraphRecord{}, err
	}
	r, err := style.GraphRecordFromFields(Fields(doc))
	if err != nil {
		return style.GraphRecord{}, fmt.Errorf("%s: %w", CollectionGraph, err)
	}
	return r, nil
}

func (s *Store) record(ctx context.Context, coll string, filter bson.D) (style.Record, error) {
	doc, err := s.findOne(ctx, coll, filter)
	if err != nil {
		return style.Record{}, err
	}
	r, err := style.RecordFromFields(Fields(doc))
	if err != nil {
		return style.Record{}, fmt.Errorf("%s: %w", coll, err)
	}
	return r, nil
}

func (s *Store) findOne(ctx context.Context, coll string, filter bson.D) (bson.M, error) {
	var doc bson.M
	err := s.db.Collection(coll).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, style.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll, err)
	}
	return doc, nil
}

// Seed upserts every record of t.
func (s *Store) Seed(ctx context.Context, t *style.Table) error {
	if t.Graph != nil {
		if err := s.replace(ctx, CollectionGraph, "name", defaultName, t.Graph.Fields()); err != nil {
			return err
		}
	}
	if t.Transition != nil {
		if err := s.replace(ctx, CollectionTransition, "name", defaultName, t.Transition.Fields()); err != nil {
			return err
		}
	}
	for kind, r := range t.Special {
		if err := s.replace(ctx, CollectionSpecial, "kind", string(kind), r.Fields()); err != nil {
			return err
		}
	}
	for nodeType, r := range t.Nodes {
		if err := s.replace(ctx, CollectionNodes, "node_type", nodeType, r.Fields()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) replace(ctx context.Context, coll, keyField, key string, f map[string]string) error {
	_, err := s.db.Collection(coll).ReplaceOne(ctx,
		bson.D{{Key: keyField, Value: key}},
		Document(keyField, key, f),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", coll, key, err)
	}
	return nil
}

// Fields flattens a stored document into schema fields. Numbers are
// formatted without trailing zeros; _id, key fields, nulls and nested
// values are dropped.
func Fields(doc bson.M) map[string]string {
	f := make(map[string]string, len(doc))
	for k, v := range doc {
		switch k {
		case "_id", "node_type", "kind", "name":
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case int32:
			s = strconv.FormatInt(int64(x), 10)
		case int64:
			s = strconv.FormatInt(x, 10)
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			continue
		}
		if s != "" {
			f[k] = s
		}
	}
	return f
}

// Document builds the stored form of a record: the key field followed by the
// schema fields in lexical order.
func Document(keyField, key string, f map[string]string) bson.D {
	doc := bson.D{{Key: keyField, Value: key}}
	for _, k := range style.SortedKeys(f) {
		doc = append(doc, bson.E{Key: k, Value: f[k]})
	}
	return doc
}
