// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package portal implements the policy portal operations shared by the
// HTTP handlers and the command-line tool: browsing, creating, editing and
// deleting policies and categories, and rendering policy documents.
package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"policyportal/internal/models"
	"policyportal/internal/store"
)

// Default names and templates for new policies.
const (
	UntitledPolicyName = "Untitled Policy"
	blankTemplate      = "# Untitled Policy\n\nCreated in %s folder.\nStart writing your policy here..."
)

var (
	// ErrNameRequired is returned when a policy or category name is blank.
	ErrNameRequired = errors.New("name is required")
	// ErrUnknownCategory is returned when a policy is moved to a missing category.
	ErrUnknownCategory = errors.New("unknown category")
)

// PolicyRepository persists policies.
type PolicyRepository interface {
	List(ctx context.Context) ([]models.Policy, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Policy, error)
	FindByID(ctx context.Context, id int64) (*models.Policy, error)
	Create(ctx context.Context, name, content string, categoryID *string) (*models.Policy, error)
	Update(ctx context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, name, icon string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// Service is the portal application layer.
type Service struct {
	policies   PolicyRepository
	categories CategoryRepository
	renderer   *Renderer
}

// NewService creates a Service.
func NewService(policies PolicyRepository, categories CategoryRepository, renderer *Renderer) *Service {
	return &Service{policies: policies, categories: categories, renderer: renderer}
}

// Renderer returns the document renderer used by the service.
func (s *Service) Renderer() *Renderer {
	return s.renderer
}

// Group is one category with its policies, as shown in the sidebar.
type Group struct {
	Category models.Category
	Policies []models.Policy
}

// Library returns every category with its policies in category order.
// Policies without a category, or whose category is missing, are listed
// under General.
func (s *Service) Library(ctx context.Context) ([]Group, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	pols, err := s.policies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}

	index := make(map[string]int, len(cats))
	groups := make([]Group, 0, len(cats))
	for _, c := range cats {
		index[c.ID] = len(groups)
		groups = append(groups, Group{Category: c, Policies: []models.Policy{}})
	}
	if _, ok := index[models.GeneralCategoryID]; !ok {
		index[models.GeneralCategoryID] = len(groups)
		groups = append(groups, Group{
			Category: models.Category{ID: models.GeneralCategoryID, Name: "General", Icon: models.DefaultCategoryIcon},
			Policies: []models.Policy{},
		})
	}

	for _, p := range pols {
		id := models.GeneralCategoryID
		if p.CategoryID != nil {
			if _, ok := index[*p.CategoryID]; ok {
				id = *p.CategoryID
			}
		}
		g := &groups[index[id]]
		g.Policies = append(g.Policies, p)
	}
	for i := range groups {
		groups[i].Category.PolicyCount = len(groups[i].Policies)
	}
	return groups, nil
}

// Policies returns all policies, newest first.
func (s *Service) Policies(ctx context.Context) ([]models.Policy, error) {
	return s.policies.List(ctx)
}

// Policy returns a policy or an error wrapping store.ErrNotFound.
func (s *Service) Policy(ctx context.Context, id int64) (*models.Policy, error) {
	p, err := s.policies.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find policy %d: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("policy %d: %w", id, store.ErrNotFound)
	}
	return p, nil
}

// NewBlankPolicy creates an "Untitled Policy" in categoryID. An empty or
// unknown category falls back to General.
func (s *Service) NewBlankPolicy(ctx context.Context, categoryID string) (*models.Policy, error) {
	cat, err := s.resolveCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf(blankTemplate, cat.Name)
	p, err := s.policies.Create(ctx, UntitledPolicyName, content, &cat.ID)
	if err != nil {
		return nil, fmt.Errorf("create blank policy: %w", err)
	}
	return p, nil
}

// CreateNamedPolicy creates a policy in General whose content is its title.
func (s *Service) CreateNamedPolicy(ctx context.Context, name string) (*models.Policy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.CreatePolicy(ctx, name, "# "+name, models.GeneralCategoryID)
}

// CreatePolicy creates a policy with explicit content. An empty category
// means General; an unknown one is rejected.
func (s *Service) CreatePolicy(ctx context.Context, name, content, categoryID string) (*models.Policy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if categoryID == "" {
		categoryID = models.GeneralCategoryID
	}
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	p, err := s.policies.Create(ctx, name, content, &categoryID)
	if err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	return p, nil
}

// UpdatePolicy applies a partial update and returns the stored policy.
func (s *Service) UpdatePolicy(ctx context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		patch.Name = &name
	}
	if patch.CategoryID != nil {
		if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if patch.IsEmpty() {
		return s.Policy(ctx, id)
	}
	p, err := s.policies.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update policy %d: %w", id, err)
	}
	return p, nil
}

// DeletePolicy removes a policy.
func (s *Service) DeletePolicy(ctx context.Context, id int64) error {
	if err := s.policies.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete policy %d: %w", id, err)
	}
	return nil
}

// Categories returns all categories with their policy counts.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// AddCategory creates a category. An empty icon uses the default folder icon.
func (s *Service) AddCategory(ctx context.Context, name, icon string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}
	c, err := s.categories.Create(ctx, name, icon)
	if err != nil {
		return nil, fmt.Errorf("add category %q: %w", name, err)
	}
	return c, nil
}

// DeleteCategory removes an empty category. Non-empty categories are
// refused with a *store.CategoryInUseError.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

func (s *Service) resolveCategory(ctx context.Context, id string) (*models.Category, error) {
	if id != "" {
		c, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find category %q: %w", id, err)
		}
		if c != nil {
			return c, nil
		}
	}
	c, err := s.categories.FindByID(ctx, models.GeneralCategoryID)
	if err != nil {
		return nil, fmt.Errorf("find general category: %w", err)
	}
	if c == nil {
		return &models.Category{ID: models.GeneralCategoryID, Name: "General", Icon: models.DefaultCategoryIcon}, nil
	}
	return c, nil
}

func (s *Service) requireCategory(ctx context.Context, id string) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find category %q: %w", id, err)
	}
	if c == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return nil
}

// UserMessage maps a service error to the text shown to portal users.
func UserMessage(err error) string {
	var inUse *store.CategoryInUseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &inUse):
		return fmt.Sprintf("Cannot delete category. It contains %d policies. Please move or delete them first.", inUse.Policies)
	case errors.Is(err, store.ErrProtectedCategory):
		return "The General category cannot be deleted."
	case errors.Is(err, ErrNameRequired):
		return "Please enter a name."
	case errors.Is(err, ErrUnknownCategory):
		return "The selected category does not exist."
	case errors.Is(err, store.ErrDuplicate):
		return "A category with that name already exists."
	case errors.Is(err, store.ErrNotFound):
		return "The requested item no longer exists."
	default:
		return "Something went wrong. Please try again."
	}
}
