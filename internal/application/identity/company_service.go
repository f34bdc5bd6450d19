package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
)

// CompanyService serves company reads. System administrators see every
// company; everyone else only their own.
type CompanyService struct {
	companyRepo identity.CompanyRepository
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo identity.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// List returns the companies visible to the caller
func (s *CompanyService) List(ctx context.Context) ([]CompanyInfo, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok || !tc.Scoped() {
		return nil, shared.ErrUnauthorized
	}

	if tc.Bypass {
		companies, err := s.companyRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		infos := make([]CompanyInfo, 0, len(companies))
		for i := range companies {
			infos = append(infos, companyInfo(&companies[i]))
		}
		return infos, nil
	}

	company, err := s.companyRepo.FindByGUID(ctx, tc.CompanyGUID)
	if err != nil {
		return nil, err
	}
	return []CompanyInfo{companyInfo(company)}, nil
}

// Get returns one company by GUID, enforcing visibility
func (s *CompanyService) Get(ctx context.Context, guid uuid.UUID) (*CompanyInfo, error) {
	tc, ok := tenant.FromContext(ctx)
	if !ok || !tc.Scoped() {
		return nil, shared.ErrUnauthorized
	}

	if !tc.Bypass && tc.CompanyGUID != guid {
		return nil, shared.ErrForbidden
	}

	company, err := s.companyRepo.FindByGUID(ctx, guid)
	if err != nil {
		return nil, err
	}
	info := companyInfo(company)
	return &info, nil
}
