package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	buserrors "busline/internal/buses/errors"
	"busline/pkg/config"
	mongotx "busline/pkg/db/mongo"
	"busline/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Buses"
)

// BusFilter narrows the bus listing. String fields match case-insensitively.
type BusFilter struct {
	Departure string
	Arrival   string
	BusType   string
}

type mongoBusRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BusRepository interface {
	Create(ctx context.Context, bus *model.Bus) error
	FindByID(ctx context.Context, id string) (*model.Bus, error)
	FindAll(ctx context.Context, filter BusFilter, limit int, offset int64) ([]*model.Bus, error)
	Count(ctx context.Context, filter BusFilter) (int64, error)
	Update(ctx context.Context, id string, bus *model.Bus, replaceSeats bool) error
	Delete(ctx context.Context, id string) error
	ReserveSeats(ctx context.Context, id string, seatNumbers []string, marker model.BookedMarker) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBusRepository(cfg *config.Config) BusRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBusRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping the SessionContext would break session
// semantics.
func (r *mongoBusRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBusRepository) Create(ctx context.Context, bus *model.Bus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	bus.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, bus)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return buserrors.ErrDuplicateBusNumber
		}
		return fmt.Errorf("failed to create bus: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		bus.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBusRepository) FindByID(ctx context.Context, id string) (*model.Bus, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", buserrors.ErrInvalidID, id)
	}

	var bus model.Bus
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&bus)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, buserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bus: %w", err)
	}

	return &bus, nil
}

func (r *mongoBusRepository) FindAll(ctx context.Context, filter BusFilter, limit int, offset int64) ([]*model.Bus, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "departure.time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildBusFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find buses: %w", err)
	}
	defer cursor.Close(ctx)

	var buses []*model.Bus
	if err = cursor.All(ctx, &buses); err != nil {
		return nil, fmt.Errorf("failed to decode buses: %w", err)
	}

	return buses, nil
}

func (r *mongoBusRepository) Count(ctx context.Context, filter BusFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildBusFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count buses: %w", err)
	}
	return count, nil
}

func buildBusFilter(filter BusFilter) bson.M {
	query := bson.M{}
	if filter.Departure != "" {
		query["departure.location"] = caseInsensitive(filter.Departure)
	}
	if filter.Arrival != "" {
		query["arrival.location"] = caseInsensitive(filter.Arrival)
	}
	if filter.BusType != "" {
		query["bus_type"] = caseInsensitive(filter.BusType)
	}
	return query
}

// caseInsensitive builds an anchored, escaped regex so filter values are
// matched literally.
func caseInsensitive(value string) primitive.Regex {
	return primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(value) + "$",
		Options: "i",
	}
}

// Update writes the bus attributes. seat_set is written only when
// replaceSeats is set: the in-memory seat array may be stale relative to a
// reservation committed after the caller's read, and writing it back would
// erase booked markers.
func (r *mongoBusRepository) Update(ctx context.Context, id string, bus *model.Bus, replaceSeats bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", buserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"bus_number":    bus.BusNumber,
		"total_seats":   bus.TotalSeats,
		"seats_per_row": bus.SeatsPerRow,
		"price":         bus.Price,
		"departure":     bus.Departure,
		"arrival":       bus.Arrival,
		"amenities":     bus.Amenities,
		"bus_type":      bus.BusType,
	}
	if replaceSeats {
		set["seat_set"] = bus.SeatSet
	}
	update := bson.M{"$set": set}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return buserrors.ErrDuplicateBusNumber
		}
		return fmt.Errorf("failed to update bus: %w", err)
	}
	if result.MatchedCount == 0 {
		return buserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBusRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", buserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete bus: %w", err)
	}
	if result.DeletedCount == 0 {
		return buserrors.ErrNotFound
	}

	return nil
}

// ReserveSeats marks the given seats as booked in a single conditional
// update. The filter only matches when every requested seat is still free,
// so concurrent reservations of the same seat cannot both succeed. A zero
// MatchedCount means the bus is missing, a seat number is unknown, or a
// seat was taken; callers disambiguate by reloading the bus.
func (r *mongoBusRepository) ReserveSeats(ctx context.Context, id string, seatNumbers []string, marker model.BookedMarker) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", buserrors.ErrInvalidID, id)
	}

	elemMatches := make(bson.A, 0, len(seatNumbers))
	for _, seat := range seatNumbers {
		elemMatches = append(elemMatches, bson.M{
			"$elemMatch": bson.M{"seat_number": seat, "booked": nil},
		})
	}

	filter := bson.M{
		"_id":      objectID,
		"seat_set": bson.M{"$all": elemMatches},
	}
	update := bson.M{
		"$set": bson.M{"seat_set.$[elem].booked": marker},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.seat_number": bson.M{"$in": seatNumbers}},
		},
	})

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return buserrors.ErrSeatsNotAvailable
	}

	return nil
}

func (r *mongoBusRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
