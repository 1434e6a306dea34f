package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"khata/internal/core"
	"khata/internal/storage"
)

// CategoryService manages expense categories. Seeded default categories
// cannot be deleted and never lose their default flag.
type CategoryService struct {
	repo *storage.Repository
}

func NewCategoryService(repo *storage.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create adds a custom (non-default) category, unique by name inside its
// organization.
func (s *CategoryService) Create(ctx context.Context, category core.ExpenseCategory) (core.ExpenseCategory, error) {
	category.IsDefault = false
	if err := category.Validate(); err != nil {
		return core.ExpenseCategory{}, err
	}

	var created core.ExpenseCategory
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetOrganization(ctx, category.OrganizationID); err != nil {
			return err
		}
		if _, err := q.GetCategoryByName(ctx, category.OrganizationID, category.Name); err == nil {
			return fmt.Errorf("%w: category %q already exists in organization %d",
				core.ErrDuplicate, category.Name, category.OrganizationID)
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		var err error
		created, err = q.CreateCategory(ctx, category)
		return err
	})
	if err != nil {
		return core.ExpenseCategory{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Created expense category",
		"category_id", created.ID,
		"organization_id", created.OrganizationID,
		"name", created.Name)

	return created, nil
}

// Update renames a category. The owning organization and the default flag
// are immutable.
func (s *CategoryService) Update(ctx context.Context, category core.ExpenseCategory) (core.ExpenseCategory, error) {
	if err := category.Validate(); err != nil {
		return core.ExpenseCategory{}, err
	}

	var updated core.ExpenseCategory
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetCategory(ctx, category.ID)
		if err != nil {
			return err
		}
		category.OrganizationID = existing.OrganizationID
		category.IsDefault = existing.IsDefault

		if other, err := q.GetCategoryByName(ctx, category.OrganizationID, category.Name); err == nil && other.ID != category.ID {
			return fmt.Errorf("%w: category %q already exists in organization %d",
				core.ErrDuplicate, category.Name, category.OrganizationID)
		} else if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}

		updated = category
		return q.UpdateCategory(ctx, category)
	})
	if err != nil {
		return core.ExpenseCategory{}, fmt.Errorf("update category: %w", err)
	}

	slog.InfoContext(ctx, "Updated expense category", "category_id", updated.ID, "name", updated.Name)
	return updated, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.ExpenseCategory, error) {
	return s.repo.Queries().GetCategory(ctx, id)
}

func (s *CategoryService) GetByName(ctx context.Context, orgID int64, name string) (core.ExpenseCategory, error) {
	return s.repo.Queries().GetCategoryByName(ctx, orgID, name)
}

func (s *CategoryService) ListByOrganization(ctx context.Context, orgID int64) ([]core.ExpenseCategory, error) {
	if _, err := s.repo.Queries().GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.Queries().ListCategoriesByOrganization(ctx, orgID)
}

func (s *CategoryService) ListDefaults(ctx context.Context, orgID int64) ([]core.ExpenseCategory, error) {
	return s.repo.Queries().ListDefaultCategories(ctx, orgID)
}

// Delete removes a custom category. Default categories refuse deletion.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		category, err := q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if category.IsDefault {
			return fmt.Errorf("%w: default category %q cannot be deleted",
				core.ErrInvalidArgument, category.Name)
		}
		return q.DeleteCategory(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Deleted expense category", "category_id", id)
	return nil
}

// EnsureSameOrganization verifies a category belongs to the given
// organization.
func (s *CategoryService) EnsureSameOrganization(ctx context.Context, categoryID, orgID int64) error {
	category, err := s.repo.Queries().GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.OrganizationID != orgID {
		return core.ErrCrossOrganization
	}
	return nil
}
