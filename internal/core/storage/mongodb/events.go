package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

func (a *Adapter) CreateEvent(ctx context.Context, event *v1.Event) error {
	now := a.now()
	doc := event.Clone()
	doc.ID = a.newID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := a.events.InsertOne(ctx, doc); err != nil {
		return mapWriteError(err, "insert event")
	}

	event.ID = doc.ID
	event.CreatedAt = now
	event.UpdatedAt = now

	slog.Debug("[Mongo] Created event", "event_id", event.ID, "slug", event.Slug)
	return nil
}

func (a *Adapter) UpdateEvent(ctx context.Context, event *v1.Event) error {
	now := a.now()

	var stored v1.Event
	err := a.events.FindOneAndUpdate(ctx,
		bson.M{"_id": event.ID},
		bson.M{"$set": eventFields(event, now)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		return mapWriteError(err, "update event")
	}

	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = now
	return nil
}

// eventFields lists every mutable field of event for a $set update.
func eventFields(event *v1.Event, now time.Time) bson.M {
	return bson.M{
		"title":       event.Title,
		"description": event.Description,
		"overview":    event.Overview,
		"image":       event.Image,
		"venue":       event.Venue,
		"location":    event.Location,
		"date":        event.Date,
		"time":        event.Time,
		"mode":        event.Mode,
		"audience":    event.Audience,
		"agenda":      event.Agenda,
		"organizer":   event.Organizer,
		"tags":        event.Tags,
		"slug":        event.Slug,
		"updatedAt":   now,
	}
}

func (a *Adapter) GetEvent(ctx context.Context, id string) (*v1.Event, error) {
	return a.findEvent(ctx, bson.M{"_id": id})
}

func (a *Adapter) GetEventBySlug(ctx context.Context, slug string) (*v1.Event, error) {
	return a.findEvent(ctx, bson.M{"slug": slug})
}

func (a *Adapter) findEvent(ctx context.Context, filter bson.M) (*v1.Event, error) {
	var evt v1.Event
	if err := a.events.FindOne(ctx, filter).Decode(&evt); err != nil {
		return nil, mapReadError(err, "event")
	}
	return &evt, nil
}

// ListEvents returns events newest first. Object ids grow monotonically, so
// _id breaks ties between events created in the same millisecond.
func (a *Adapter) ListEvents(ctx context.Context, limit, offset int) ([]*v1.Event, error) {
	opts := options.Find().SetSort(newestFirst)
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := a.events.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	var events []*v1.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func (a *Adapter) CountEvents(ctx context.Context) (int64, error) {
	n, err := a.events.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func (a *Adapter) DeleteEvent(ctx context.Context, id string) error {
	res, err := a.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
