package usecase

import (
	"context"

	"github.com/totegamma/catgraph"
	"github.com/totegamma/catgraph/internal/domain"
)

// CatRepository defines storage operations for cats. Implementations return
// domain.NotFoundError when the target row does not exist.
type CatRepository interface {
	Get(ctx context.Context, id string) (domain.Cat, error)
	List(ctx context.Context) ([]domain.Cat, error)
	ListWithin(ctx context.Context, area domain.Polygon) ([]domain.Cat, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Cat, error)
	Create(ctx context.Context, cat domain.Cat) (domain.Cat, error)
	Update(ctx context.Context, id string, patch domain.CatPatch) (domain.Cat, error)
	Delete(ctx context.Context, id string) (domain.Cat, error)
}

// IdentityGateway forwards user operations to the identity service. baseURL is
// resolved by the caller on every call.
type IdentityGateway interface {
	ListUsers(ctx context.Context, baseURL string) ([]catgraph.User, error)
	GetUser(ctx context.Context, baseURL, id string) (catgraph.User, error)
	Login(ctx context.Context, baseURL string, creds catgraph.Credentials) (catgraph.LoginResponse, error)
	Register(ctx context.Context, baseURL string, input catgraph.UserInput) (catgraph.UserResponse, error)
	UpdateSelf(ctx context.Context, baseURL, token string, input catgraph.UserInput) (catgraph.UserResponse, error)
	DeleteSelf(ctx context.Context, baseURL, token string) (catgraph.MessageResponse, error)
	UpdateUser(ctx context.Context, baseURL, token, id string, input catgraph.UserInput) (catgraph.UserResponse, error)
	DeleteUser(ctx context.Context, baseURL, token, id string) (catgraph.MessageResponse, error)
}

// AddressSource yields the identity service base URL currently configured.
type AddressSource interface {
	IdentityServiceURL() string
}

// EventPublisher receives cat mutation events.
type EventPublisher interface {
	PublishCatEvent(ctx context.Context, event domain.CatEvent) error
}
