package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/catgraph/internal/domain"
	"github.com/totegamma/catgraph/internal/infra/database/models"
)

var tracer = otel.Tracer("repository")

// withinClause keeps points on the polygon edge, matching the in-memory store.
const withinClause = "ST_Covers(ST_GeomFromText(?, 4326), ST_SetSRID(ST_MakePoint(longitude, latitude), 4326))"

type CatRepository struct {
	db *gorm.DB
}

func NewCatRepository(db *gorm.DB) *CatRepository {
	return &CatRepository{db: db}
}

func (r *CatRepository) Get(ctx context.Context, id string) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.Get")
	defer span.End()
	span.SetAttributes(attribute.String("CatID", id))

	var row models.Cat
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Cat{}, domain.NotFoundError{Resource: "cat"}
		}
		span.RecordError(err)
		return domain.Cat{}, errors.Wrap(err, "failed to get cat")
	}
	return toDomain(row), nil
}

func (r *CatRepository) List(ctx context.Context) ([]domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.List")
	defer span.End()

	var rows []models.Cat
	err := r.db.WithContext(ctx).Order("c_date asc").Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list cats")
	}
	return toDomainList(rows), nil
}

func (r *CatRepository) ListWithin(ctx context.Context, area domain.Polygon) ([]domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.ListWithin")
	defer span.End()

	wkt := area.WKT()
	span.SetAttributes(attribute.String("Area", wkt))

	var rows []models.Cat
	err := r.db.WithContext(ctx).Where(withinClause, wkt).Order("c_date asc").Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list cats within area")
	}
	return toDomainList(rows), nil
}

func (r *CatRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.ListByOwner")
	defer span.End()
	span.SetAttributes(attribute.String("OwnerID", ownerID))

	var rows []models.Cat
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("c_date asc").Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list cats by owner")
	}
	return toDomainList(rows), nil
}

func (r *CatRepository) Create(ctx context.Context, cat domain.Cat) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.Create")
	defer span.End()

	row := fromDomain(cat)
	row.ID = uuid.NewString()

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		return domain.Cat{}, errors.Wrap(err, "failed to create cat")
	}
	return toDomain(row), nil
}

// Update writes only the present fields. The row must still exist at write time;
// a concurrent delete yields NotFoundError instead of an empty result.
func (r *CatRepository) Update(ctx context.Context, id string, patch domain.CatPatch) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.Update")
	defer span.End()
	span.SetAttributes(attribute.String("CatID", id))

	values := patchValues(patch)
	if len(values) == 0 {
		return r.Get(ctx, id)
	}

	var row models.Cat
	result := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		span.RecordError(result.Error)
		return domain.Cat{}, errors.Wrap(result.Error, "failed to update cat")
	}
	if result.RowsAffected == 0 {
		return domain.Cat{}, domain.NotFoundError{Resource: "cat"}
	}
	return toDomain(row), nil
}

func (r *CatRepository) Delete(ctx context.Context, id string) (domain.Cat, error) {
	ctx, span := tracer.Start(ctx, "Cat.Repository.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("CatID", id))

	var row models.Cat
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&row)
	if result.Error != nil {
		span.RecordError(result.Error)
		return domain.Cat{}, errors.Wrap(result.Error, "failed to delete cat")
	}
	if result.RowsAffected == 0 {
		return domain.Cat{}, domain.NotFoundError{Resource: "cat"}
	}
	return toDomain(row), nil
}

func patchValues(patch domain.CatPatch) map[string]any {
	values := map[string]any{}
	if patch.Name != nil {
		values["cat_name"] = *patch.Name
	}
	if patch.Weight != nil {
		values["weight"] = *patch.Weight
	}
	if patch.Filename != nil {
		values["filename"] = *patch.Filename
	}
	if patch.Birthdate != nil {
		values["birthdate"] = patch.Birthdate.UTC()
	}
	if patch.Location != nil {
		values["longitude"] = patch.Location.Lng
		values["latitude"] = patch.Location.Lat
	}
	return values
}

func fromDomain(cat domain.Cat) models.Cat {
	return models.Cat{
		ID:        cat.ID,
		CatName:   cat.Name,
		Weight:    cat.Weight,
		OwnerID:   cat.OwnerID,
		Filename:  cat.Filename,
		Birthdate: cat.Birthdate.UTC(),
		Longitude: cat.Location.Lng,
		Latitude:  cat.Location.Lat,
	}
}

func toDomain(row models.Cat) domain.Cat {
	return domain.Cat{
		ID:        row.ID,
		Name:      row.CatName,
		Weight:    row.Weight,
		OwnerID:   row.OwnerID,
		Filename:  row.Filename,
		Birthdate: row.Birthdate,
		Location:  domain.Point{Lng: row.Longitude, Lat: row.Latitude},
	}
}

func toDomainList(rows []models.Cat) []domain.Cat {
	cats := make([]domain.Cat, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, toDomain(row))
	}
	return cats
}
