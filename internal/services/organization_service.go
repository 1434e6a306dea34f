package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"khata/internal/core"
	"khata/internal/storage"
)

// defaultExpenseCategories are seeded for every new organization and
// flagged non-deletable.
var defaultExpenseCategories = []string{
	"Utilities",
	"Rent",
	"Salaries",
	"Office Supplies",
	"Marketing",
	"Travel",
	"Maintenance",
	"Insurance",
	"Miscellaneous",
}

// OrganizationService manages organizations and seeds their default
// expense categories.
type OrganizationService struct {
	repo *storage.Repository
}

func NewOrganizationService(repo *storage.Repository) *OrganizationService {
	return &OrganizationService{repo: repo}
}

// Create validates the organization, enforces the process-wide unique name
// and seeds the default categories in the same atomic unit as the insert.
func (s *OrganizationService) Create(ctx context.Context, org core.Organization) (core.Organization, error) {
	if err := org.Validate(); err != nil {
		return core.Organization{}, err
	}

	var created core.Organization
	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetOrganizationByName(ctx, org.Name); err == nil {
			return fmt.Errorf("%w: organization %q already exists", core.ErrDuplicate, org.Name)
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		var err error
		created, err = q.CreateOrganization(ctx, org)
		if err != nil {
			return err
		}

		for _, name := range defaultExpenseCategories {
			_, err := q.CreateCategory(ctx, core.ExpenseCategory{
				OrganizationID: created.ID,
				Name:           name,
				IsDefault:      true,
			})
			if err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.Organization{}, fmt.Errorf("create organization: %w", err)
	}

	slog.InfoContext(ctx, "Created organization",
		"organization_id", created.ID,
		"name", created.Name,
		"default_categories", len(defaultExpenseCategories))

	return created, nil
}

// Update modifies an existing organization. The unique-name rule still
// applies against every other organization.
func (s *OrganizationService) Update(ctx context.Context, org core.Organization) (core.Organization, error) {
	if err := org.Validate(); err != nil {
		return core.Organization{}, err
	}

	err := s.repo.ExecTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetOrganization(ctx, org.ID); err != nil {
			return err
		}
		if existing, err := q.GetOrganizationByName(ctx, org.Name); err == nil && existing.ID != org.ID {
			return fmt.Errorf("%w: organization %q already exists", core.ErrDuplicate, org.Name)
		} else if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}
		return q.UpdateOrganization(ctx, org)
	})
	if err != nil {
		return core.Organization{}, fmt.Errorf("update organization: %w", err)
	}

	slog.InfoContext(ctx, "Updated organization", "organization_id", org.ID, "name", org.Name)
	return org, nil
}

func (s *OrganizationService) Get(ctx context.Context, id int64) (core.Organization, error) {
	return s.repo.Queries().GetOrganization(ctx, id)
}

func (s *OrganizationService) GetByName(ctx context.Context, name string) (core.Organization, error) {
	return s.repo.Queries().GetOrganizationByName(ctx, name)
}

func (s *OrganizationService) List(ctx context.Context) ([]core.Organization, error) {
	return s.repo.Queries().ListOrganizations(ctx)
}

// Delete removes the organization; its contacts, categories and their
// transactions cascade away with it.
func (s *OrganizationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Queries().DeleteOrganization(ctx, id); err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	slog.InfoContext(ctx, "Deleted organization", "organization_id", id)
	return nil
}
