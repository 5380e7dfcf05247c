package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/jwt"
)

var tracer = otel.Tracer("auth")

// SecretSource yields the shared token secret currently configured.
type SecretSource interface {
	JWTSecret() string
}

type AuthService struct {
	secrets SecretSource
}

func NewAuthService(secrets SecretSource) *AuthService {
	return &AuthService{
		secrets: secrets,
	}
}

// AuthJwt verifies token and returns the requester it identifies.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (domain.Requester, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	secret := s.secrets.JWTSecret()
	if secret == "" {
		err := domain.ConfigError{Key: "jwt secret"}
		span.RecordError(err)
		return domain.Requester{}, err
	}

	claims, err := jwt.Validate(token, secret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return domain.Requester{}, err
	}

	role := domain.Role(claims.Role)
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleAdmin:
	default:
		err := fmt.Errorf("unknown role %q", claims.Role)
		span.RecordError(err)
		return domain.Requester{}, err
	}

	span.SetAttributes(attribute.String("RequesterId", claims.UserID()))

	return domain.Requester{
		Actor: domain.Actor{
			ID:       claims.UserID(),
			UserName: claims.UserName,
			Email:    claims.Email,
			Role:     role,
		},
		Token: token,
	}, nil
}
