package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	v1 "github.com/aevon-lab/eventbook/internal/api/v1"
	"github.com/aevon-lab/eventbook/internal/core/storage"
)

func (a *Adapter) CreateBooking(ctx context.Context, booking *v1.Booking) error {
	now := a.now()
	doc := booking.Clone()
	doc.ID = a.newID()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := a.bookings.InsertOne(ctx, doc); err != nil {
		return mapWriteError(err, "insert booking")
	}

	booking.ID = doc.ID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	slog.Debug("[Mongo] Created booking", "booking_id", booking.ID, "event_id", booking.EventID)
	return nil
}

func (a *Adapter) UpdateBooking(ctx context.Context, booking *v1.Booking) error {
	now := a.now()

	var stored v1.Booking
	err := a.bookings.FindOneAndUpdate(ctx,
		bson.M{"_id": booking.ID},
		bson.M{"$set": bson.M{
			"eventId":   booking.EventID,
			"email":     booking.Email,
			"updatedAt": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		return mapWriteError(err, "update booking")
	}

	booking.CreatedAt = stored.CreatedAt
	booking.UpdatedAt = now
	return nil
}

func (a *Adapter) GetBooking(ctx context.Context, id string) (*v1.Booking, error) {
	var b v1.Booking
	if err := a.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, mapReadError(err, "booking")
	}
	return &b, nil
}

func (a *Adapter) ListBookingsByEvent(ctx context.Context, eventID string) ([]*v1.Booking, error) {
	cursor, err := a.bookings.Find(ctx, bson.M{"eventId": eventID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	var bookings []*v1.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

func (a *Adapter) CountBookings(ctx context.Context, eventID string) (int64, error) {
	filter := bson.M{}
	if eventID != "" {
		filter["eventId"] = eventID
	}
	n, err := a.bookings.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (a *Adapter) DeleteBooking(ctx context.Context, id string) error {
	res, err := a.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
