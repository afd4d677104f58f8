package httppresentation

import (
	"context"
	"net/http"
	"strings"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const cookieJWT = "jwt"

type callerKey struct{}

func contextWithCaller(ctx context.Context, c application.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFromContext(ctx context.Context) application.Caller {
	c, _ := ctx.Value(callerKey{}).(application.Caller)
	return c
}

// protect authenticates the request and, when roles are given, requires the
// caller to hold one of them.
func (s *Server) protect(next http.HandlerFunc, roles ...user.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.svc.Auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := caller.Require(roles...); err != nil {
			s.writeError(w, r, err)
			return
		}

		trace.SpanFromContext(r.Context()).SetAttributes(
			attribute.String("enduser.id", caller.ID),
			attribute.String("enduser.role", string(caller.Role)),
		)
		ctx, _ := logctx.Enrich(r.Context(), s.log, observability.F("user_id", caller.ID))
		next(w, r.WithContext(contextWithCaller(ctx, caller)))
	}
}

// bearerToken reads the credential from the Authorization header, falling
// back to the jwt cookie.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieJWT); err == nil {
		return c.Value
	}
	return ""
}
