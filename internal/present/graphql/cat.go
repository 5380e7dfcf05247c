package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/internal/usecase"
)

type coordinatesInput struct {
	Lat float64
	Lng float64
}

func (c coordinatesInput) point() domain.Point {
	return domain.Point{Lat: c.Lat, Lng: c.Lng}
}

type locationInput struct {
	Type        string
	Coordinates []float64
}

func (l locationInput) point() (domain.Point, error) {
	if l.Type != domain.PointType {
		return domain.Point{}, domain.ValidationError{Field: "location.type", Reason: "must be Point"}
	}
	return domain.PointFromCoordinates(l.Coordinates)
}

type catInput struct {
	CatName   string
	Weight    float64
	Birthdate DateTime
	Location  locationInput
	Filename  string
}

type catModify struct {
	CatName   *string
	Weight    *float64
	Birthdate *DateTime
	Location  *locationInput
	Filename  *string
}

func (m catModify) patch() (domain.CatPatch, error) {
	patch := domain.CatPatch{
		Name:     m.CatName,
		Weight:   m.Weight,
		Filename: m.Filename,
	}
	if m.Birthdate != nil {
		patch.Birthdate = &m.Birthdate.Time
	}
	if m.Location != nil {
		p, err := m.Location.point()
		if err != nil {
			return domain.CatPatch{}, err
		}
		patch.Location = &p
	}
	return patch, nil
}

type catResolver struct {
	cat   domain.Cat
	users *usecase.UserUsecase
}

func (r *catResolver) ID() graphql.ID {
	return graphql.ID(r.cat.ID)
}

func (r *catResolver) CatName() string {
	return r.cat.Name
}

func (r *catResolver) Weight() float64 {
	return r.cat.Weight
}

func (r *catResolver) Birthdate() DateTime {
	return DateTime{r.cat.Birthdate}
}

func (r *catResolver) Filename() string {
	return r.cat.Filename
}

func (r *catResolver) Location() *locationResolver {
	return &locationResolver{point: r.cat.Location}
}

// Owner is fetched from the identity service, at most once per user and request.
func (r *catResolver) Owner(ctx context.Context) (*userResolver, error) {
	owner, err := r.users.ResolveOwner(ctx, r.cat.OwnerID)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &userResolver{actor: owner}, nil
}

type locationResolver struct {
	point domain.Point
}

func (r *locationResolver) Type() string {
	return domain.PointType
}

func (r *locationResolver) Coordinates() []float64 {
	return r.point.Coordinates()
}

func (r *Resolver) wrapCats(cats []domain.Cat) []*catResolver {
	out := make([]*catResolver, 0, len(cats))
	for _, c := range cats {
		out = append(out, &catResolver{cat: c, users: r.user})
	}
	return out
}

func (r *Resolver) Cats(ctx context.Context) ([]*catResolver, error) {
	cats, err := r.cat.List(ctx)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return r.wrapCats(cats), nil
}

func (r *Resolver) CatByID(ctx context.Context, args struct{ ID graphql.ID }) (*catResolver, error) {
	cat, err := r.cat.Get(ctx, string(args.ID))
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &catResolver{cat: cat, users: r.user}, nil
}

func (r *Resolver) CatsByArea(ctx context.Context, args struct {
	TopRight   coordinatesInput
	BottomLeft coordinatesInput
}) ([]*catResolver, error) {
	cats, err := r.cat.ListByArea(ctx, domain.Region{
		TopRight:   args.TopRight.point(),
		BottomLeft: args.BottomLeft.point(),
	})
	if err != nil {
		return nil, toError(ctx, err)
	}
	return r.wrapCats(cats), nil
}

func (r *Resolver) CatsByOwner(ctx context.Context, args struct{ OwnerID graphql.ID }) ([]*catResolver, error) {
	cats, err := r.cat.ListByOwner(ctx, string(args.OwnerID))
	if err != nil {
		return nil, toError(ctx, err)
	}
	return r.wrapCats(cats), nil
}

func (r *Resolver) CreateCat(ctx context.Context, args struct{ Input catInput }) (*catResolver, error) {
	location, err := args.Input.Location.point()
	if err != nil {
		return nil, toError(ctx, err)
	}
	cat, err := r.cat.Create(ctx, domain.CatInput{
		Name:      args.Input.CatName,
		Weight:    args.Input.Weight,
		Filename:  args.Input.Filename,
		Birthdate: args.Input.Birthdate.Time,
		Location:  location,
	})
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &catResolver{cat: cat, users: r.user}, nil
}

func (r *Resolver) UpdateCat(ctx context.Context, args struct {
	ID    graphql.ID
	Input catModify
}) (*catResolver, error) {
	patch, err := args.Input.patch()
	if err != nil {
		return nil, toError(ctx, err)
	}
	cat, err := r.cat.Update(ctx, string(args.ID), patch)
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &catResolver{cat: cat, users: r.user}, nil
}

func (r *Resolver) DeleteCat(ctx context.Context, args struct{ ID graphql.ID }) (*catResolver, error) {
	cat, err := r.cat.Delete(ctx, string(args.ID))
	if err != nil {
		return nil, toError(ctx, err)
	}
	return &catResolver{cat: cat, users: r.user}, nil
}
