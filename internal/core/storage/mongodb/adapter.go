package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/aevon-lab/eventbook/internal/core/storage"
)

const (
	eventsCollection   = "events"
	bookingsCollection = "bookings"

	defaultDatabase       = "eventbook"
	defaultConnectTimeout = 5 * time.Second
)

var _ storage.Backend = (*Adapter)(nil)

// Options controls how Open connects.
type Options struct {
	// Database overrides the database named in the URI path.
	Database       string
	ConnectTimeout time.Duration
}

// Adapter implements storage.Backend on MongoDB collections.
type Adapter struct {
	client   *mongo.Client
	events   *mongo.Collection
	bookings *mongo.Collection
	now      func() time.Time
	newID    func() string
}

// Open connects to uri, pings the primary within the connect timeout and
// creates the unique indexes the record store relies on.
func Open(ctx context.Context, uri string, opts Options) (*Adapter, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	name := opts.Database
	if name == "" {
		name = databaseName(uri)
	}

	a := newAdapter(client, name)
	if err := a.EnsureIndexes(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("[Mongo] Adapter initialized", "database", name)
	return a, nil
}

func newAdapter(client *mongo.Client, database string) *Adapter {
	db := client.Database(database)
	return &Adapter{
		client:   client,
		events:   db.Collection(eventsCollection),
		bookings: db.Collection(bookingsCollection),
		// BSON dates carry millisecond precision.
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID: func() string { return primitive.NewObjectID().Hex() },
	}
}

// EnsureIndexes creates the slug and (eventId, email) unique indexes.
// Re-creating an identical index is a no-op.
func (a *Adapter) EnsureIndexes(ctx context.Context) error {
	_, err := a.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("events_slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_events_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}

	_, err = a.bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("bookings_event_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_bookings_event_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	slog.Debug("[Mongo] Indexes ensured")
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx, readpref.Primary())
}

func (a *Adapter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()
	return a.client.Disconnect(ctx)
}

// databaseName returns the database in the URI path, or the default.
func databaseName(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}

// mapWriteError turns duplicate key errors into storage.ErrDuplicate.
func mapWriteError(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, duplicateIndex(err))
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// duplicateIndex extracts the index name from an E11000 message.
func duplicateIndex(err error) string {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return ""
	}
	for _, e := range we.WriteErrors {
		_, rest, ok := strings.Cut(e.Message, "index: ")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, " ")
		return name
	}
	return ""
}

func mapReadError(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}
