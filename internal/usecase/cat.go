package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/policy"
)

var tracer = otel.Tracer("usecase")

type CatUsecase struct {
	repo   CatRepository
	events EventPublisher
}

// NewCatUsecase builds the cat resolver core. events may be nil.
func NewCatUsecase(repo CatRepository, events EventPublisher) *CatUsecase {
	return &CatUsecase{repo: repo, events: events}
}

func (uc *CatUsecase) Get(ctx context.Context, id string) (domain.Cat, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *CatUsecase) List(ctx context.Context) ([]domain.Cat, error) {
	cats, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Cat{}
	}
	return cats, nil
}

func (uc *CatUsecase) ListByArea(ctx context.Context, region domain.Region) ([]domain.Cat, error) {
	if err := region.TopRight.Validate(); err != nil {
		return nil, err
	}
	if err := region.BottomLeft.Validate(); err != nil {
		return nil, err
	}
	cats, err := uc.repo.ListWithin(ctx, region.Polygon())
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Cat{}
	}
	return cats, nil
}

func (uc *CatUsecase) ListByOwner(ctx context.Context, ownerID string) ([]domain.Cat, error) {
	cats, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Cat{}
	}
	return cats, nil
}

// Create stores a new cat owned by the requester and returns it as stored.
func (uc *CatUsecase) Create(ctx context.Context, input domain.CatInput) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Usecase.Create")
	defer span.End()

	requester, ok := domain.RequesterFrom(ctx)
	if !ok {
		return domain.Cat{}, domain.ErrUnauthenticated
	}
	if err := input.Validate(); err != nil {
		return domain.Cat{}, err
	}

	created, err := uc.repo.Create(ctx, domain.Cat{
		Name:      input.Name,
		Weight:    input.Weight,
		OwnerID:   requester.Actor.ID,
		Filename:  input.Filename,
		Birthdate: input.Birthdate,
		Location:  input.Location,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Cat{}, domain.InternalError{Op: "cat not created", Err: err}
	}
	span.SetAttributes(attribute.String("CatID", created.ID))

	cat, err := uc.repo.Get(ctx, created.ID)
	if err != nil {
		span.RecordError(err)
		return domain.Cat{}, errors.Wrap(err, "CatUsecase.Create: re-fetch failed")
	}

	uc.publish(ctx, domain.CatCreated, cat, requester.Actor.ID)
	return cat, nil
}

// Update applies patch to the cat if the requester owns it or is an admin.
func (uc *CatUsecase) Update(ctx context.Context, id string, patch domain.CatPatch) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Usecase.Update")
	defer span.End()
	span.SetAttributes(attribute.String("CatID", id))

	requester, current, err := uc.authorize(ctx, id, policy.ActionUpdate)
	if err != nil {
		span.RecordError(err)
		return domain.Cat{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Cat{}, err
	}
	if patch.Empty() {
		return current, nil
	}

	cat, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Cat{}, err
		}
		return domain.Cat{}, domain.InternalError{Op: "cat not updated", Err: err}
	}

	uc.publish(ctx, domain.CatUpdated, cat, requester.Actor.ID)
	return cat, nil
}

// Delete removes the cat if the requester owns it or is an admin, returning what was removed.
func (uc *CatUsecase) Delete(ctx context.Context, id string) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Usecase.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("CatID", id))

	requester, _, err := uc.authorize(ctx, id, policy.ActionDelete)
	if err != nil {
		span.RecordError(err)
		return domain.Cat{}, err
	}

	cat, err := uc.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Cat{}, err
		}
		return domain.Cat{}, domain.InternalError{Op: "cat not deleted", Err: err}
	}

	uc.publish(ctx, domain.CatDeleted, cat, requester.Actor.ID)
	return cat, nil
}

// authorize loads the cat and checks the requester against CatPolicy.
// The owner of a cat never changes, so the decision stays valid until the write.
func (uc *CatUsecase) authorize(ctx context.Context, id string, action policy.Action) (domain.Requester, domain.Cat, error) {
	requester, ok := domain.RequesterFrom(ctx)
	if !ok {
		return domain.Requester{}, domain.Cat{}, domain.ErrUnauthenticated
	}

	current, err := uc.repo.Get(ctx, id)
	if err != nil {
		return domain.Requester{}, domain.Cat{}, err
	}

	subject := policy.Subject{ID: requester.Actor.ID, Role: string(requester.Actor.Role)}
	owner := policy.Subject{ID: current.OwnerID}
	if policy.Decide(&subject, owner, action) != policy.ALLOW {
		return domain.Requester{}, domain.Cat{}, domain.PermissionDeniedError{Reason: "user is not the owner of the cat"}
	}
	return requester, current, nil
}

func (uc *CatUsecase) publish(ctx context.Context, typ domain.CatEventType, cat domain.Cat, actorID string) {
	if uc.events == nil {
		return
	}
	event := domain.CatEvent{
		Type:    typ,
		Cat:     cat,
		ActorID: actorID,
		At:      time.Now().UTC(),
	}
	if err := uc.events.PublishCatEvent(ctx, event); err != nil {
		slog.ErrorContext(
			ctx, "failed to publish cat event",
			slog.String("error", err.Error()),
			slog.String("type", string(typ)),
			slog.String("module", "usecase"),
		)
	}
}
