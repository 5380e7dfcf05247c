package graphql

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/totegamma/catgraph/internal/usecase"
	"github.com/totegamma/catgraph/schemas"
)

// Resolver is the root of both Query and Mutation.
type Resolver struct {
	cat  *usecase.CatUsecase
	user *usecase.UserUsecase
}

func NewResolver(cat *usecase.CatUsecase, user *usecase.UserUsecase) *Resolver {
	return &Resolver{
		cat:  cat,
		user: user,
	}
}

// NewSchema binds the resolver to the embedded schema document.
func NewSchema(resolver *Resolver, maxParallelism int) (*graphql.Schema, error) {
	opts := []graphql.SchemaOpt{}
	if maxParallelism > 0 {
		opts = append(opts, graphql.MaxParallelism(maxParallelism))
	}
	return graphql.ParseSchema(schemas.Schema(), resolver, opts...)
}
