package service

import (
	"context"
	"errors"
	"testing"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/jwt"
)

type staticSecret string

func (s staticSecret) JWTSecret() string { return string(s) }

func TestAuthJwt(t *testing.T) {
	token, err := jwt.Create(jwt.Claims{ID: "u1", UserName: "one", Email: "one@example.com", Role: "admin"}, "secret")
	if err != nil {
		t.Fatal(err)
	}

	requester, err := NewAuthService(staticSecret("secret")).AuthJwt(context.Background(), token)
	if err != nil {
		t.Fatalf("auth failed: %v", err)
	}
	if requester.Actor.ID != "u1" || requester.Actor.Role != domain.RoleAdmin || requester.Token != token {
		t.Fatalf("unexpected requester %+v", requester)
	}
}

func TestAuthJwtDefaultsRole(t *testing.T) {
	token, _ := jwt.Create(jwt.Claims{InternalID: "u2"}, "secret")
	requester, err := NewAuthService(staticSecret("secret")).AuthJwt(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if requester.Actor.ID != "u2" || requester.Actor.Role != domain.RoleUser {
		t.Fatalf("unexpected requester %+v", requester)
	}
}

func TestAuthJwtRejects(t *testing.T) {
	token, _ := jwt.Create(jwt.Claims{ID: "u1"}, "secret")
	if _, err := NewAuthService(staticSecret("other")).AuthJwt(context.Background(), token); err == nil {
		t.Fatal("expected signature error")
	}
	if _, err := NewAuthService(staticSecret("")).AuthJwt(context.Background(), token); !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected config error got %v", err)
	}

	bogus, _ := jwt.Create(jwt.Claims{ID: "u1", Role: "root"}, "secret")
	if _, err := NewAuthService(staticSecret("secret")).AuthJwt(context.Background(), bogus); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}
