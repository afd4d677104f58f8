package mongostore

import (
	"context"
	"errors"
	"time"

	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeliveryRepository struct{ db *DB }

func NewDeliveryRepository(db *DB) *DeliveryRepository { return &DeliveryRepository{db: db} }

func (r *DeliveryRepository) Insert(ctx context.Context, d *domain.Delivery) error {
	doc, err := newDeliveryDoc(d)
	if err != nil {
		return err
	}
	return r.db.call(ctx, "deliveries.insert", func(ctx context.Context) error {
		_, err := r.db.collection(collDeliveries).InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyAssigned
		}
		return err
	})
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "deliveries.find_by_id", bson.M{"_id": oid})
}

func (r *DeliveryRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	oid, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "deliveries.find_by_order", bson.M{"orderId": oid})
}

func (r *DeliveryRepository) ListByPerson(ctx context.Context, personID string) ([]*domain.Delivery, error) {
	oid, err := parseID(personID)
	if err != nil {
		return nil, err
	}
	var docs []deliveryDoc
	err = r.db.call(ctx, "deliveries.list_by_person", func(ctx context.Context) error {
		cur, err := r.db.collection(collDeliveries).Find(ctx, bson.M{"deliveryPersonId": oid},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Delivery, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// UpdateStatus matches on the expected current status, so two concurrent
// transitions from the same state cannot both succeed.
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.db.call(ctx, "deliveries.update_status", func(ctx context.Context) error {
		res, err := r.db.collection(collDeliveries).UpdateOne(ctx,
			bson.M{"_id": oid, "deliveryStatus": string(from)},
			bson.M{"$set": bson.M{"deliveryStatus": string(to), "updatedAt": time.Now().UTC()}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrInvalidTransition
		}
		return nil
	})
}

func (r *DeliveryRepository) findOne(ctx context.Context, endpoint string, filter bson.M) (*domain.Delivery, error) {
	var doc deliveryDoc
	err := r.db.call(ctx, endpoint, func(ctx context.Context) error {
		err := r.db.collection(collDeliveries).FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}
