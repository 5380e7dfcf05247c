package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/totegamma/catgraph"
	"github.com/totegamma/catgraph/internal/domain"
)

type userResolver struct {
	actor domain.Actor
}

func (r *userResolver) ID() graphql.ID {
	return graphql.ID(r.actor.ID)
}

func (r *userResolver) UserName() string {
	return r.actor.UserName
}

func (r *userResolver) Email() string {
	return r.actor.Email
}

type tokenMessageResolver struct {
	token   *string
	message string
	user    domain.Actor
}

func (r *tokenMessageResolver) Token() *string {
	return r.token
}

func (r *tokenMessageResolver) Message() string {
	return r.message
}

func (r *tokenMessageResolver) User() *userResolver {
	return &userResolver{actor: r.user}
}

type userMessageResolver struct {
	message string
	user    domain.Actor
}

func (r *userMessageResolver) Message() string {
	return r.message
}

func (r *userMessageResolver) User() *userResolver {
	return &userResolver{actor: r.user}
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	users, err := r.user.List(ctx)
	if err != nil {
		return nil, toError(ctx, err)
	}
	out := make([]*userResolver, 0, len(users))
	for _, u := range users {
		out = append(out, &userResolver{actor: u})
	}
	return out, nil
}

func (r *Resolver) UserByID(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	user, err := r.user.Get(ctx, string(args.ID))
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userResolver{actor: user}, nil
}

func (r *Resolver) CheckToken(ctx context.Context) (*tokenMessageResolver, error) {
	res, err := r.user.CheckToken(ctx)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &tokenMessageResolver{message: res.Message, user: res.User}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Credentials catgraph.Credentials }) (*tokenMessageResolver, error) {
	res, err := r.user.Login(ctx, args.Credentials)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &tokenMessageResolver{token: &res.Token, message: res.Message, user: res.User}, nil
}

func (r *Resolver) Register(ctx context.Context, args struct{ User catgraph.UserInput }) (*userMessageResolver, error) {
	res, err := r.user.Register(ctx, args.User)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userMessageResolver{message: res.Message, user: res.User}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct{ User catgraph.UserInput }) (*userMessageResolver, error) {
	res, err := r.user.UpdateSelf(ctx, args.User)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userMessageResolver{message: res.Message, user: res.User}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context) (*userMessageResolver, error) {
	res, err := r.user.DeleteSelf(ctx)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userMessageResolver{message: res.Message, user: res.User}, nil
}

func (r *Resolver) UpdateUserAsAdmin(ctx context.Context, args struct {
	ID   graphql.ID
	User catgraph.UserInput
}) (*userMessageResolver, error) {
	res, err := r.user.UpdateAsAdmin(ctx, string(args.ID), args.User)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userMessageResolver{message: res.Message, user: res.User}, nil
}

func (r *Resolver) DeleteUserAsAdmin(ctx context.Context, args struct{ ID graphql.ID }) (*userMessageResolver, error) {
	res, err := r.user.DeleteAsAdmin(ctx, string(args.ID))
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userMessageResolver{message: res.Message, user: res.User}, nil
}
