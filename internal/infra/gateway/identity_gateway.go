package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/totegamma/catgraph"
	"github.com/totegamma/catgraph/client"
	"github.com/totegamma/catgraph/internal/domain"
)

type IdentityGateway struct {
	client *client.Client
}

func NewIdentityGateway(cl *client.Client) *IdentityGateway {
	return &IdentityGateway{
		client: cl,
	}
}

func (g *IdentityGateway) ListUsers(ctx context.Context, baseURL string) ([]catgraph.User, error) {
	users := []catgraph.User{}
	err := g.do(ctx, http.MethodGet, baseURL, "/users", nil, "", &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (g *IdentityGateway) GetUser(ctx context.Context, baseURL, id string) (catgraph.User, error) {
	var user catgraph.User
	err := g.do(ctx, http.MethodGet, baseURL, "/users/"+url.PathEscape(id), nil, "", &user)
	return user, err
}

func (g *IdentityGateway) Login(ctx context.Context, baseURL string, creds catgraph.Credentials) (catgraph.LoginResponse, error) {
	var res catgraph.LoginResponse
	err := g.do(ctx, http.MethodPost, baseURL, "/auth/login", creds, "", &res)
	return res, err
}

func (g *IdentityGateway) Register(ctx context.Context, baseURL string, input catgraph.UserInput) (catgraph.UserResponse, error) {
	var res catgraph.UserResponse
	err := g.do(ctx, http.MethodPost, baseURL, "/users", input, "", &res)
	return res, err
}

func (g *IdentityGateway) UpdateSelf(ctx context.Context, baseURL, token string, input catgraph.UserInput) (catgraph.UserResponse, error) {
	var res catgraph.UserResponse
	err := g.do(ctx, http.MethodPut, baseURL, "/users", input, token, &res)
	return res, err
}

func (g *IdentityGateway) DeleteSelf(ctx context.Context, baseURL, token string) (catgraph.MessageResponse, error) {
	var res catgraph.MessageResponse
	err := g.do(ctx, http.MethodDelete, baseURL, "/users", nil, token, &res)
	return res, err
}

func (g *IdentityGateway) UpdateUser(ctx context.Context, baseURL, token, id string, input catgraph.UserInput) (catgraph.UserResponse, error) {
	var res catgraph.UserResponse
	err := g.do(ctx, http.MethodPut, baseURL, "/users/"+url.PathEscape(id), input, token, &res)
	return res, err
}

func (g *IdentityGateway) DeleteUser(ctx context.Context, baseURL, token, id string) (catgraph.MessageResponse, error) {
	var res catgraph.MessageResponse
	err := g.do(ctx, http.MethodDelete, baseURL, "/users/"+url.PathEscape(id), nil, token, &res)
	return res, err
}

// do translates client failures into UpstreamError so the service message reaches the caller.
func (g *IdentityGateway) do(ctx context.Context, method, baseURL, path string, body any, token string, out any) error {
	err := g.client.Request(ctx, method, baseURL, path, body, token, out)
	if err == nil {
		return nil
	}

	var serr *client.StatusError
	if errors.As(err, &serr) {
		return domain.UpstreamError{StatusCode: serr.StatusCode, Message: serr.Message}
	}
	if ctx.Err() != nil {
		return domain.UpstreamError{Message: ctx.Err().Error()}
	}
	return domain.UpstreamError{Message: errors.Cause(err).Error()}
}
