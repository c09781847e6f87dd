package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

type UpdateCompanyRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type CompanyService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
	GetCompany(ctx context.Context, id uuid.UUID) (CompanyResponse, error)
	ListCompanies(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (CompanyResponse, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

var slugSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a url-safe identifier from the company name
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSanitizer.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// --- Implementation ---

func (s *companyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if slug == "" {
		return CompanyResponse{}, errors.New("company name yields an empty slug")
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return CompanyResponse{}, errors.New("company slug already exists")
	}

	company := model.Company{
		Name:   req.Name,
		Slug:   slug,
		Active: true,
	}
	if err := s.repo.Create(ctx, &company); err != nil {
		return CompanyResponse{}, fmt.Errorf("failed to create company: %w", err)
	}

	return toCompanyResponse(company), nil
}

func (s *companyService) GetCompany(ctx context.Context, id uuid.UUID) (CompanyResponse, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CompanyResponse{}, errors.New("company not found")
	}
	return toCompanyResponse(*company), nil
}

func (s *companyService) ListCompanies(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	companies, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch companies: %w", err)
	}

	result := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		result = append(result, toCompanyResponse(c))
	}
	return result, total, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (CompanyResponse, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CompanyResponse{}, errors.New("company not found")
	}

	if req.Name != "" {
		company.Name = req.Name
	}
	if req.Active != nil {
		company.Active = *req.Active
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return CompanyResponse{}, fmt.Errorf("failed to update company: %w", err)
	}
	return toCompanyResponse(*company), nil
}

// --- Helpers ---

func toCompanyResponse(c model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Slug:      c.Slug,
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
