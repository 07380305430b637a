package catalog

import (
	"context"
	"errors"

	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the purchasable catalog.
type Repository interface {
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	ListPublishedProducts(ctx context.Context, limit int) ([]models.Product, error)
	ListPublishedCourses(ctx context.Context, limit int) ([]models.Course, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *repository) ListPublishedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	query := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListPublishedCourses(ctx context.Context, limit int) ([]models.Course, error) {
	var courses []models.Course
	query := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
