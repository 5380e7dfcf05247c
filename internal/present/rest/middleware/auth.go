package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/internal/service"
)

var tracer = otel.Tracer("middleware")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) (string, error) {
	split := strings.Split(header, " ")
	if len(split) != 2 {
		return "", fmt.Errorf("invalid authentication header")
	}
	authType, token := split[0], split[1]
	if authType != "Bearer" {
		return "", fmt.Errorf("only Bearer is acceptable")
	}
	return token, nil
}

// IdentifyIdentity attaches the requester and a fresh owner memo to the request
// context. A bad token leaves the request anonymous.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		ctx = domain.WithOwnerMemo(ctx)

		authHeader := c.Request().Header.Get(domain.AuthorizationHeader)

		if authHeader != "" {
			token, err := BearerToken(authHeader)
			if err != nil {
				span.RecordError(err)
				goto skipCheckAuthorization
			}

			requester, err := s.auth.AuthJwt(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: s.auth.AuthJwt failed"))
				goto skipCheckAuthorization
			}

			ctx = domain.WithRequester(ctx, requester)
			span.SetAttributes(attribute.String("RequesterId", requester.Actor.ID))
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
