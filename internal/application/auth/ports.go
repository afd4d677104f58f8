package auth

import (
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
)

// PasswordHasher hashes and checks passwords. Compare returns a non-nil
// error for any mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs and verifies bearer credentials.
type TokenIssuer interface {
	Issue(id application.Caller) (string, time.Time, error)
	Verify(token string) (application.Caller, error)
}
