package mongostore

import (
	"context"
	"errors"

	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderRepository struct{ db *DB }

func NewOrderRepository(db *DB) *OrderRepository { return &OrderRepository{db: db} }

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	return r.db.call(ctx, "orders.insert", func(ctx context.Context) error {
		_, err := r.db.collection(collOrders).InsertOne(ctx, doc)
		return err
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc orderDoc
	err = r.db.call(ctx, "orders.find_by_id", func(ctx context.Context) error {
		err := r.db.collection(collOrders).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}
