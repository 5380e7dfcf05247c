package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catgraph"
	"github.com/totegamma/catgraph/internal/domain"
)

// LoginResult is a successful login.
type LoginResult struct {
	Token   string
	Message string
	User    domain.Actor
}

// UserResult pairs the identity service message with the affected user.
type UserResult struct {
	Message string
	User    domain.Actor
}

type UserUsecase struct {
	gateway IdentityGateway
	address AddressSource
}

func NewUserUsecase(gateway IdentityGateway, address AddressSource) *UserUsecase {
	return &UserUsecase{gateway: gateway, address: address}
}

// baseURL is resolved on every call so that a config reload applies immediately.
func (uc *UserUsecase) baseURL() (string, error) {
	url := uc.address.IdentityServiceURL()
	if url == "" {
		return "", domain.ConfigError{Key: "identity service URL"}
	}
	return url, nil
}

func (uc *UserUsecase) List(ctx context.Context) ([]domain.Actor, error) {
	base, err := uc.baseURL()
	if err != nil {
		return nil, err
	}
	users, err := uc.gateway.ListUsers(ctx, base)
	if err != nil {
		return nil, err
	}
	actors := make([]domain.Actor, 0, len(users))
	for _, u := range users {
		actors = append(actors, toActor(u))
	}
	return actors, nil
}

func (uc *UserUsecase) Get(ctx context.Context, id string) (domain.Actor, error) {
	base, err := uc.baseURL()
	if err != nil {
		return domain.Actor{}, err
	}
	user, err := uc.gateway.GetUser(ctx, base, id)
	if err != nil {
		return domain.Actor{}, err
	}
	return toActor(user), nil
}

// ResolveOwner returns the owner of a cat, consulting the per-request memo first.
func (uc *UserUsecase) ResolveOwner(ctx context.Context, ownerID string) (domain.Actor, error) {
	if requester, ok := domain.RequesterFrom(ctx); ok && requester.Actor.ID == ownerID && requester.Actor.Email != "" {
		return requester.Actor, nil
	}

	memo := domain.OwnerMemoFrom(ctx)
	if memo == nil {
		return uc.Get(ctx, ownerID)
	}
	return memo.Resolve(ownerID, func() (domain.Actor, error) {
		return uc.Get(ctx, ownerID)
	})
}

func (uc *UserUsecase) Login(ctx context.Context, creds catgraph.Credentials) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Login")
	defer span.End()

	base, err := uc.baseURL()
	if err != nil {
		return LoginResult{}, err
	}
	res, err := uc.gateway.Login(ctx, base, creds)
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}
	return LoginResult{
		Token:   res.Token,
		Message: res.Message,
		User:    toActor(res.User),
	}, nil
}

func (uc *UserUsecase) Register(ctx context.Context, input catgraph.UserInput) (UserResult, error) {
	base, err := uc.baseURL()
	if err != nil {
		return UserResult{}, err
	}
	res, err := uc.gateway.Register(ctx, base, input)
	if err != nil {
		return UserResult{}, err
	}
	return UserResult{Message: res.Message, User: toActor(res.Data)}, nil
}

// UpdateSelf updates the requester. The identity service derives the subject
// from the token; no id is ever sent.
func (uc *UserUsecase) UpdateSelf(ctx context.Context, input catgraph.UserInput) (UserResult, error) {
	base, err := uc.baseURL()
	if err != nil {
		return UserResult{}, err
	}
	requester, ok := domain.RequesterFrom(ctx)
	if !ok {
		return UserResult{}, domain.ErrUnauthenticated
	}
	res, err := uc.gateway.UpdateSelf(ctx, base, requester.Token, input)
	if err != nil {
		return UserResult{}, err
	}
	return UserResult{Message: res.Message, User: toActor(res.Data)}, nil
}

// DeleteSelf deletes the requester. The service does not echo the user back,
// so the requester's own data is returned.
func (uc *UserUsecase) DeleteSelf(ctx context.Context) (UserResult, error) {
	base, err := uc.baseURL()
	if err != nil {
		return UserResult{}, err
	}
	requester, ok := domain.RequesterFrom(ctx)
	if !ok {
		return UserResult{}, domain.ErrUnauthenticated
	}
	res, err := uc.gateway.DeleteSelf(ctx, base, requester.Token)
	if err != nil {
		return UserResult{}, err
	}
	return UserResult{Message: res.Message, User: requester.Actor}, nil
}

func (uc *UserUsecase) UpdateAsAdmin(ctx context.Context, id string, input catgraph.UserInput) (UserResult, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.UpdateAsAdmin")
	defer span.End()
	span.SetAttributes(attribute.String("UserID", id))

	base, err := uc.baseURL()
	if err != nil {
		return UserResult{}, err
	}
	requester, err := requireAdmin(ctx)
	if err != nil {
		span.RecordError(err)
		return UserResult{}, err
	}
	res, err := uc.gateway.UpdateUser(ctx, base, requester.Token, id, input)
	if err != nil {
		span.RecordError(err)
		return UserResult{}, err
	}
	return UserResult{Message: res.Message, User: toActor(res.Data)}, nil
}

// DeleteAsAdmin fetches the target first, because the service does not echo deleted users.
func (uc *UserUsecase) DeleteAsAdmin(ctx context.Context, id string) (UserResult, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.DeleteAsAdmin")
	defer span.End()
	span.SetAttributes(attribute.String("UserID", id))

	base, err := uc.baseURL()
	if err != nil {
		return UserResult{}, err
	}
	requester, err := requireAdmin(ctx)
	if err != nil {
		span.RecordError(err)
		return UserResult{}, err
	}
	target, err := uc.gateway.GetUser(ctx, base, id)
	if err != nil {
		span.RecordError(err)
		return UserResult{}, err
	}
	res, err := uc.gateway.DeleteUser(ctx, base, requester.Token, id)
	if err != nil {
		span.RecordError(err)
		return UserResult{}, err
	}
	return UserResult{Message: res.Message, User: toActor(target)}, nil
}

// CheckToken reports the requester carried by a valid token.
func (uc *UserUsecase) CheckToken(ctx context.Context) (UserResult, error) {
	requester, ok := domain.RequesterFrom(ctx)
	if !ok {
		return UserResult{}, domain.ErrUnauthenticated
	}
	return UserResult{Message: "Token is valid", User: requester.Actor}, nil
}

func requireAdmin(ctx context.Context) (domain.Requester, error) {
	requester, ok := domain.RequesterFrom(ctx)
	if !ok {
		return domain.Requester{}, domain.ErrUnauthenticated
	}
	if !requester.Actor.Role.IsElevated() {
		return domain.Requester{}, domain.PermissionDeniedError{Reason: "user is not an admin"}
	}
	return requester, nil
}

// toActor normalises an identity service user right after it is received.
func toActor(u catgraph.User) domain.Actor {
	u.Normalize()
	return domain.Actor{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     domain.Role(u.Role),
	}
}
