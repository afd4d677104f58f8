package user

import "context"

// Repository persists users. Insert reports ErrDuplicateEmail or
// ErrDuplicatePhone when a unique field is taken.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
