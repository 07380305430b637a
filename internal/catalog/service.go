package catalog

import (
	"context"
	"fmt"

	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Item is the checkout-facing view of a purchasable catalog entry.
type Item struct {
	ID        string
	Name      string
	Kind      enums.ItemKind
	UnitPrice decimal.Decimal
	AssetRef  *string
}

// Service exposes the storefront catalog reads plus item resolution for
// checkout.
type Service interface {
	ListProducts(ctx context.Context, limit int) ([]ProductDTO, error)
	ListCourses(ctx context.Context, limit int) ([]CourseDTO, error)
	ResolveItem(ctx context.Context, itemID string) (*Item, error)
}

// ProductDTO is the public listing shape for a 3-D model.
type ProductDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	PreviewURL  string          `json:"preview_url,omitempty"`
}

// CourseDTO is the public listing shape for a course.
type CourseDTO struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, limit int) ([]ProductDTO, error) {
	products, err := s.repo.ListPublishedProducts(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			UnitPrice:   p.UnitPrice,
			PreviewURL:  p.PreviewURL,
		})
	}
	return out, nil
}

func (s *service) ListCourses(ctx context.Context, limit int) ([]CourseDTO, error) {
	courses, err := s.repo.ListPublishedCourses(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses")
	}
	out := make([]CourseDTO, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseDTO{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			UnitPrice:   c.UnitPrice,
		})
	}
	return out, nil
}

// ResolveItem classifies an item id against the catalog. Courses win over
// products on (unexpected) id collisions; an unknown id is a validation
// error surfaced before any gateway call.
func (s *service) ResolveItem(ctx context.Context, itemID string) (*Item, error) {
	if itemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	course, err := s.repo.FindCourseByID(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if course != nil {
		return &Item{
			ID:        course.ID,
			Name:      course.Title,
			Kind:      enums.ItemKindCourse,
			UnitPrice: course.UnitPrice,
		}, nil
	}

	product, err := s.repo.FindProductByID(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product != nil {
		assetRef := product.AssetRef
		return &Item{
			ID:        product.ID,
			Name:      product.Name,
			Kind:      enums.ItemKindModel,
			UnitPrice: product.UnitPrice,
			AssetRef:  &assetRef,
		}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item %q", itemID))
}
