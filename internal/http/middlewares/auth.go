package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"task-market.com/task-market/internal/authz"
	apperrors "task-market.com/task-market/internal/errors"
)

const actorKey = "actor"

// Claims are issued by the identity provider. The subject is the user id.
type Claims struct {
	IsAdmin bool `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

type ActorResolver interface {
	ResolveActor(ctx context.Context, subject string, adminClaim bool) (authz.Actor, error)
}

// Auth requires an HS256 bearer token and stores the resolved actor on the
// request context.
func Auth(secret []byte, resolver ActorResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				return reject(apperrors.ErrMissingToken)
			}

			claims, err := parseToken(parts[1], secret)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("token validation failed")
				return reject(apperrors.ErrInvalidToken)
			}

			actor, err := resolver.ResolveActor(c.Request().Context(), claims.Subject, claims.IsAdmin)
			if err != nil {
				if apperrors.IsKind(err, apperrors.KindUnauthenticated) {
					return reject(apperrors.New(apperrors.KindUnauthenticated, "token has no subject"))
				}
				log.Error().Err(err).Str("subject", claims.Subject).Msg("failed to resolve actor")
				return reject(apperrors.Dependency("failed to resolve user", err))
			}

			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func parseToken(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// ActorFrom returns the actor Auth stored on c.
func ActorFrom(c echo.Context) (authz.Actor, bool) {
	actor, ok := c.Get(actorKey).(authz.Actor)
	return actor, ok
}
