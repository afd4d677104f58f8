package mongostore

import (
	"context"
	"errors"
	"strings"

	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct{ db *DB }

func NewUserRepository(db *DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	doc, err := newUserDoc(u)
	if err != nil {
		return err
	}
	return r.db.call(ctx, "users.insert", func(ctx context.Context) error {
		_, err := r.db.collection(collUsers).InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "phoneNumber") {
				return domain.ErrDuplicatePhone
			}
			return domain.ErrDuplicateEmail
		}
		return err
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "users.find_by_id", bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "users.find_by_email", bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var docs []userDoc
	err := r.db.call(ctx, "users.list", func(ctx context.Context) error {
		cur, err := r.db.collection(collUsers).Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *UserRepository) findOne(ctx context.Context, endpoint string, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := r.db.call(ctx, endpoint, func(ctx context.Context) error {
		err := r.db.collection(collUsers).FindOne(ctx, filter).Decode(&doc)
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
