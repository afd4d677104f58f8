package mongostore

import (
	"context"
	"errors"
	"time"

	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository struct{ db *DB }

func NewProductRepository(db *DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	doc, err := newProductDoc(p)
	if err != nil {
		return err
	}
	return r.db.call(ctx, "products.insert", func(ctx context.Context) error {
		_, err := r.db.collection(collProducts).InsertOne(ctx, doc)
		return err
	})
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc productDoc
	err = r.db.call(ctx, "products.find_by_id", func(ctx context.Context) error {
		err := r.db.collection(collProducts).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
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

func (r *ProductRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Product, error) {
	filter := bson.M{}
	if f.ListedOnly {
		filter["isListed"] = true
	}
	if f.ListedBy != "" {
		oid, err := parseID(f.ListedBy)
		if err != nil {
			return nil, err
		}
		filter["listedBy"] = oid
	}

	var docs []productDoc
	err := r.db.call(ctx, "products.list", func(ctx context.Context) error {
		cur, err := r.db.collection(collProducts).Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	v, err := toDecimal128(price)
	if err != nil {
		return err
	}
	return r.update(ctx, "products.update_price", id, nil, bson.M{"$set": bson.M{"price": v}})
}

func (r *ProductRepository) SetListed(ctx context.Context, id string, listed bool) error {
	return r.update(ctx, "products.set_listed", id, nil, bson.M{"$set": bson.M{"isListed": listed}})
}

// DecrementStock matches only documents holding at least qty, so concurrent
// decrements cannot take the quantity below zero.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	err := r.update(ctx, "products.decrement_stock", id,
		bson.M{"quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty}},
	)
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	// Distinguish a missing product from one without enough stock.
	if _, ferr := r.FindByID(ctx, id); ferr != nil {
		return ferr
	}
	return domain.ErrInsufficientStock
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	return r.update(ctx, "products.increment_stock", id, nil, bson.M{"$inc": bson.M{"quantity": qty}})
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return r.db.call(ctx, "products.delete", func(ctx context.Context) error {
		res, err := r.db.collection(collProducts).DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// update applies change to the product matching id and extra, stamping updatedAt.
// It reports ErrNotFound when nothing matched.
func (r *ProductRepository) update(ctx context.Context, endpoint, id string, extra bson.M, change bson.M) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}
	set, _ := change["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now().UTC()
	change["$set"] = set

	return r.db.call(ctx, endpoint, func(ctx context.Context) error {
		res, err := r.db.collection(collProducts).UpdateOne(ctx, filter, change)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
