package category

import (
	"context"
	"net/http"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Category is the API response model for a category.
type Category struct {
	ID        string `json:"id" doc:"Category UUID"`
	Name      string `json:"name" doc:"Category name"`
	CreatedAt string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromDomain(c *domain.Category) Category {
	return Category{ID: c.ID.String(), Name: c.Name, CreatedAt: c.CreatedAt.Format(time.RFC3339)}
}

type categoryService interface {
	CreateCategory(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Category, error)
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, ownerID, id uuid.UUID, patch service.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error
}

type OwnerHeader struct {
	OwnerID string `header:"X-Owner-ID" required:"true" doc:"Owner UUID resolved by the authenticating proxy"`
}

type ByIDInput struct {
	OwnerHeader
	ID string `path:"id" doc:"Category UUID"`
}

type CategoryBody struct {
	Name string `json:"name" required:"true" minLength:"1" doc:"Category name"`
}

type CreateCategoryInput struct {
	OwnerHeader
	Body CategoryBody
}

type UpdateCategoryInput struct {
	ByIDInput
	Body CategoryBody
}

type CategoryOutput struct {
	Body Category
}

type ListCategoriesOutput struct {
	Body struct {
		Categories []Category `json:"categories" doc:"Categories ordered by name"`
	}
}

type DeleteCategoryOutput struct{}

// Handler serves the /v1/categories endpoints.
type Handler struct {
	CategoryService categoryService
}

func NewHandler(svc categoryService) *Handler {
	return &Handler{CategoryService: svc}
}

func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/v1/categories",
		Summary:       "Create category",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "get-category",
		Method:      http.MethodGet,
		Path:        "/v1/categories/{id}",
		Summary:     "Get category",
		Tags:        []string{"Categories"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "update-category",
		Method:      http.MethodPut,
		Path:        "/v1/categories/{id}",
		Summary:     "Rename category",
		Tags:        []string{"Categories"},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "delete-category",
		Method:        http.MethodDelete,
		Path:          "/v1/categories/{id}",
		Summary:       "Delete category",
		Description:   "Deletes a category that no transaction, goal or recurring definition references.",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}

func (h *Handler) ids(input *ByIDInput) (ownerID, id uuid.UUID, err error) {
	if ownerID, err = apierror.Owner(input.OwnerID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = apierror.UUID("id", input.ID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return ownerID, id, nil
}

func (h *Handler) create(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	c, err := h.CategoryService.CreateCategory(ctx, ownerID, input.Body.Name)
	if err != nil {
		return nil, apierror.From(err, "failed to create category")
	}
	return &CategoryOutput{Body: fromDomain(c)}, nil
}

func (h *Handler) list(ctx context.Context, input *OwnerHeader) (*ListCategoriesOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	categories, err := h.CategoryService.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, apierror.From(err, "failed to list categories")
	}
	out := &ListCategoriesOutput{}
	out.Body.Categories = make([]Category, len(categories))
	for i, c := range categories {
		out.Body.Categories[i] = fromDomain(c)
	}
	return out, nil
}

func (h *Handler) get(ctx context.Context, input *ByIDInput) (*CategoryOutput, error) {
	ownerID, id, err := h.ids(input)
	if err != nil {
		return nil, err
	}
	c, err := h.CategoryService.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to get category")
	}
	return &CategoryOutput{Body: fromDomain(c)}, nil
}

func (h *Handler) update(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	ownerID, id, err := h.ids(&input.ByIDInput)
	if err != nil {
		return nil, err
	}
	c, err := h.CategoryService.UpdateCategory(ctx, ownerID, id, service.CategoryPatch{Name: omit.From(input.Body.Name)})
	if err != nil {
		return nil, apierror.From(err, "failed to update category")
	}
	return &CategoryOutput{Body: fromDomain(c)}, nil
}

func (h *Handler) delete(ctx context.Context, input *ByIDInput) (*DeleteCategoryOutput, error) {
	ownerID, id, err := h.ids(input)
	if err != nil {
		return nil, err
	}
	if err := h.CategoryService.DeleteCategory(ctx, ownerID, id); err != nil {
		return nil, apierror.From(err, "failed to delete category")
	}
	return &DeleteCategoryOutput{}, nil
}
