// Package mongostore implements the repositories on MongoDB, one collection per entity.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collUsers      = "users"
	collProducts   = "products"
	collOrders     = "orders"
	collDeliveries = "deliveries"

	peerMongo = "mongodb"
)

type Options struct {
	URL          string
	Database     string
	Timeout      time.Duration
	Transactions bool
}

// DB owns the client and applies the per-call timeout to every operation.
type DB struct {
	client       *mongo.Client
	db           *mongo.Database
	timeout      time.Duration
	transactions bool

	log          observability.Logger
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func Connect(ctx context.Context, opts Options, tel observability.Observability) (*DB, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	tel = observability.OrNop(tel)

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.URL).SetTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	return &DB{
		client:       client,
		db:           client.Database(opts.Database),
		timeout:      opts.Timeout,
		transactions: opts.Transactions,
		log:          tel.Logger().With(observability.F("component", "mongostore")),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "phoneNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		collProducts: {
			{Keys: bson.D{{Key: "isListed", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "listedBy", Value: 1}}},
		},
		collOrders: {
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
		},
		collDeliveries: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "deliveryPersonId", Value: 1}}},
		},
	}
	for coll, models := range specs {
		ictx, cancel := context.WithTimeout(ctx, d.timeout)
		_, err := d.db.Collection(coll).Indexes().CreateMany(ictx, models)
		cancel()
		if err != nil {
			return fmt.Errorf("mongostore: create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// WithinTransaction runs fn inside a session transaction when transactions
// are enabled (they need a replica set); otherwise it runs fn directly.
func (d *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.transactions {
		return fn(ctx)
	}
	sess, err := d.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongostore: start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// call runs op under the store timeout and records it as an external request.
func (d *DB) call(ctx context.Context, endpoint string, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := op(ctx)
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrValidation):
		outcome = "rejected"
	default:
		outcome = "error"
		logctx.FromOr(ctx, d.log).Warn("mongo_call_failed",
			observability.F("endpoint", endpoint),
			observability.F("error", err),
		)
	}
	d.extCounter.Add(1,
		observability.L("peer", peerMongo),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	d.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerMongo),
		observability.L("endpoint", endpoint),
	)
	return err
}

// ErrInvalidID is returned for ids that are not hex ObjectIDs.
var ErrInvalidID = apperr.Validation("invalid id")

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return oid, nil
}
