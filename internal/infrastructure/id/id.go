package id

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UUIDGenerator issues random UUIDv4 strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// ObjectIDGenerator issues hex-encoded mongo ObjectIDs, the id format the
// mongo store expects.
type ObjectIDGenerator struct{}

func NewObjectIDGenerator() ObjectIDGenerator { return ObjectIDGenerator{} }

func (ObjectIDGenerator) NewID() string { return primitive.NewObjectID().Hex() }
