package user

import (
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
)

var (
	ErrNotFound       = apperr.NotFound("no user found with that id")
	ErrDuplicateEmail = apperr.Validation("duplicate field value: email. please use another value")
	ErrDuplicatePhone = apperr.Validation("duplicate field value: phoneNumber. please use another value")
	ErrInvalidRole    = apperr.Validation("role must be one of customer, inventoryManager, deliveryPerson")
)

type Role string

const (
	RoleCustomer         Role = "customer"
	RoleInventoryManager Role = "inventoryManager"
	RoleDeliveryPerson   Role = "deliveryPerson"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleInventoryManager, RoleDeliveryPerson:
		return true
	}
	return false
}

type Address struct {
	AddressLine1 string
	AddressLine2 string
	City         string
	ZipCode      string
}

type User struct {
	ID           string
	Email        string
	Name         string
	PhoneNumber  string
	PasswordHash string
	Role         Role
	Address      Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func New(id, email, name, phoneNumber, passwordHash string, role Role) (*User, error) {
	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("please provide your email")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("please provide your name")
	}
	if passwordHash == "" {
		return nil, apperr.Validation("please provide a password")
	}

	now := time.Now().UTC()
	return &User{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PhoneNumber:  strings.TrimSpace(phoneNumber),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) HasRole(role Role) bool { return u != nil && u.Role == role }

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
