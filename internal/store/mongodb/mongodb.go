// Package mongodb implements the user store against a MongoDB collection.
// Field names are configurable, so filters and documents are built as
// structured bson values from typed inputs, never by assembling query text.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkgdepot/registry-auth/internal/common"
	"github.com/pkgdepot/registry-auth/internal/store"
)

// Fields maps the logical record fields onto document keys.
type Fields struct {
	Username string
	Password string
	Groups   string
}

// Options configures the backend. All values come from the resolved plugin
// configuration.
type Options struct {
	URI        string
	Database   string
	Collection string
	Fields     Fields
}

// Opener connects one client per session.
type Opener struct {
	opts Options
}

func NewOpener(opts Options) *Opener {
	return &Opener{opts: opts}
}

// Open connects to the configured deployment. The returned session owns the
// client and disconnects it on Close.
func (o *Opener) Open(ctx context.Context) (store.Session, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.opts.URI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to store: %w", err)
	}
	return &session{client: client, opts: o.opts}, nil
}

type session struct {
	client *mongo.Client
	opts   Options
}

func (s *session) collection() *mongo.Collection {
	return s.client.Database(s.opts.Database).Collection(s.opts.Collection)
}

// FindUser fetches at most one matching document, projecting only the three
// configured fields.
func (s *session) FindUser(ctx context.Context, username string) (*store.Record, error) {
	f := s.opts.Fields

	filter := bson.D{{Key: f.Username, Value: username}}
	projection := bson.D{
		{Key: f.Username, Value: 1},
		{Key: f.Password, Value: 1},
		{Key: f.Groups, Value: 1},
	}

	var doc bson.M
	err := s.collection().FindOne(ctx, filter, options.FindOne().SetProjection(projection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error querying store: %w", err)
	}

	rec := &store.Record{Username: username}
	if v, ok := doc[f.Username].(string); ok {
		rec.Username = v
	}
	if v, ok := doc[f.Password].(string); ok {
		rec.Password = v
	}
	rec.Groups = toStringSlice(doc[f.Groups])

	return rec, nil
}

// InsertUser adds one document. A duplicate-key rejection from the unique
// username index maps to common.ErrorDuplicate.
func (s *session) InsertUser(ctx context.Context, rec *store.Record) error {
	f := s.opts.Fields

	doc := bson.D{
		{Key: f.Username, Value: rec.Username},
		{Key: f.Password, Value: rec.Password},
		{Key: f.Groups, Value: rec.Groups},
	}

	if _, err := s.collection().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrorDuplicate
		}
		return fmt.Errorf("error inserting into store: %w", err)
	}
	return nil
}

func (s *session) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Bootstrap creates the unique index on the username field. The
// registration flow's duplicate-key safety net depends on it; the host runs
// this once at startup through the plugin's SetupStore.
func (o *Opener) Bootstrap(ctx context.Context) error {
	sess, err := o.Open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	s := sess.(*session)
	_, err = s.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: o.opts.Fields.Username, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("error creating username index: %w", err)
	}
	return nil
}

// toStringSlice converts the decoded groups value. The driver decodes bson
// arrays as primitive.A of any; anything else yields nil.
func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case primitive.A:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vv
	default:
		return nil
	}
}
