package production

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/production"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/domain/workflow"
	"github.com/mfg/backend/internal/infrastructure/logger"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncService reconciles full snapshots sent by shop-floor agents.
//
// A snapshot is authoritative for its entity type: records it carries are
// inserted, updated or reactivated; active rows it omits are cascade
// soft-deleted with one shared generation. The whole reconciliation,
// including the audit entry, runs in a single transaction.
type SyncService struct {
	db         *tenant.TenantDB
	batchLimit int
}

// NewSyncService creates a new SyncService
func NewSyncService(db *tenant.TenantDB, batchLimit int) *SyncService {
	return &SyncService{db: db, batchLimit: batchLimit}
}

// SyncProjects reconciles a project snapshot
func (s *SyncService) SyncProjects(ctx context.Context, items []ProjectSyncItem) (*SyncResult, error) {
	return reconcile(s, ctx, production.TypeProject, items)
}

// SyncComponents reconciles a component snapshot
func (s *SyncService) SyncComponents(ctx context.Context, items []ComponentSyncItem) (*SyncResult, error) {
	return reconcile(s, ctx, production.TypeComponent, items)
}

// SyncAssemblies reconciles an assembly snapshot
func (s *SyncService) SyncAssemblies(ctx context.Context, items []AssemblySyncItem) (*SyncResult, error) {
	return reconcile(s, ctx, production.TypeAssembly, items)
}

// SyncPieces reconciles a piece snapshot
func (s *SyncService) SyncPieces(ctx context.Context, items []PieceSyncItem) (*SyncResult, error) {
	return reconcile(s, ctx, production.TypePiece, items)
}

// SyncArticles reconciles an article snapshot
func (s *SyncService) SyncArticles(ctx context.Context, items []ArticleSyncItem) (*SyncResult, error) {
	return reconcile(s, ctx, production.TypeArticle, items)
}

func reconcile[T syncItem](s *SyncService, ctx context.Context, t production.EntityType, items []T) (*SyncResult, error) {
	if s.batchLimit > 0 && len(items) > s.batchLimit {
		return nil, shared.ErrPayloadTooLarge
	}

	tc, ok := tenant.FromContext(ctx)
	if !ok || !tc.Scoped() {
		return nil, tenant.ErrCompanyIDRequired
	}

	company, err := batchCompany(tc, items)
	if err != nil {
		return nil, err
	}

	var result SyncResult
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := loadExisting(tx, t, company)
		if err != nil {
			return err
		}

		if err := validateReferences(tx, t, company, items); err != nil {
			return err
		}

		for _, item := range items {
			guid := item.ItemGUID()
			ex, known := existing[guid]
			switch {
			case !known:
				if err := tx.Create(item.entity()).Error; err != nil {
					return err
				}
				result.Inserted++
			case ex.IsActive:
				if err := applyUpdates(tx, t, guid, item.updates()); err != nil {
					return err
				}
				result.Updated++
			default:
				values := item.updates()
				values["is_active"] = true
				values["deleted_at"] = nil
				if err := applyUpdates(tx, t, guid, values); err != nil {
					return err
				}
				result.Updated++
			}
		}

		deleted, err := deleteAbsent(tx, t, items, existing)
		if err != nil {
			return err
		}

		auditCtx := tc
		auditCtx.CompanyGUID = company
		return writeAudit(tx, auditCtx, workflow.ActionSync, syncAuditValue(t, result, deleted))
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Sync completed",
		zap.String("entity_type", string(t)),
		zap.Int("batch_size", len(items)),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated))
	return &result, nil
}

// batchCompany resolves the company the snapshot belongs to. Scoped
// callers may only sync their own rows; bypass callers must send a batch
// that names exactly one company.
func batchCompany[T syncItem](tc tenant.Context, items []T) (uuid.UUID, error) {
	if !tc.Bypass {
		for _, item := range items {
			if item.ItemCompanyGUID() != tc.CompanyGUID {
				return uuid.Nil, shared.ErrForbidden
			}
		}
		if err := checkDuplicates(items); err != nil {
			return uuid.Nil, err
		}
		return tc.CompanyGUID, nil
	}

	if len(items) == 0 {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Empty batch requires a company-scoped caller")
	}
	company := items[0].ItemCompanyGUID()
	for _, item := range items {
		if item.ItemCompanyGUID() != company {
			return uuid.Nil, shared.ErrForbidden
		}
	}
	if err := checkDuplicates(items); err != nil {
		return uuid.Nil, err
	}
	return company, nil
}

func checkDuplicates[T syncItem](items []T) error {
	seen := make(map[uuid.UUID]int, len(items))
	for idx, item := range items {
		guid := item.ItemGUID()
		if guid == uuid.Nil {
			return shared.NewReferentialError(idx, "missing guid")
		}
		if first, dup := seen[guid]; dup {
			return shared.NewDomainErrorf("CONFLICT",
				"Duplicate guid %s at records %d and %d", guid, first, idx)
		}
		seen[guid] = idx
	}
	return nil
}

// loadExisting reads every row of the type for the company, active or
// not, keyed by guid.
func loadExisting(tx *gorm.DB, t production.EntityType, company uuid.UUID) (map[uuid.UUID]production.Record, error) {
	var rows []production.Record
	if err := tx.Table(t.Table()).
		Where("company_guid = ?", company).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	existing := make(map[uuid.UUID]production.Record, len(rows))
	for _, row := range rows {
		existing[row.GUID] = row
	}
	return existing, nil
}

// validateReferences checks every parent reference of every record:
// the parent must exist in the same company, be active, and sit in the
// same lineage the record claims for the levels above it.
func validateReferences[T syncItem](tx *gorm.DB, t production.EntityType, company uuid.UUID, items []T) error {
	refs := production.ParentRefs(t)
	if len(refs) == 0 {
		return nil
	}

	parents := make(map[production.EntityType]map[uuid.UUID]production.Record, len(refs))
	for _, ref := range refs {
		wanted := make([]uuid.UUID, 0, len(items))
		dedup := make(map[uuid.UUID]struct{}, len(items))
		for _, item := range items {
			if v := item.Parent(ref.Column); v != nil && *v != uuid.Nil {
				if _, ok := dedup[*v]; !ok {
					dedup[*v] = struct{}{}
					wanted = append(wanted, *v)
				}
			}
		}
		loaded := make(map[uuid.UUID]production.Record, len(wanted))
		if len(wanted) > 0 {
			var rows []production.Record
			if err := tx.Table(ref.Type.Table()).
				Where("guid IN ? AND company_guid = ?", wanted, company).
				Find(&rows).Error; err != nil {
				return err
			}
			for _, row := range rows {
				loaded[row.GUID] = row
			}
		}
		parents[ref.Type] = loaded
	}

	for idx, item := range items {
		for j, ref := range refs {
			v := item.Parent(ref.Column)
			if v == nil || *v == uuid.Nil {
				if !ref.Optional {
					return shared.NewReferentialError(idx, "missing %s", ref.Column)
				}
				continue
			}
			parent, ok := parents[ref.Type][*v]
			if !ok {
				return shared.NewReferentialError(idx, "%s %s not found", ref.Type, *v)
			}
			if !parent.IsActive {
				return shared.NewReferentialError(idx, "%s %s is inactive", ref.Type, *v)
			}
			// Lineage consistency: the parent's own ancestry must match
			// what the record claims for the levels above it.
			for _, above := range refs[:j] {
				pv := parent.ParentGUID(above.Column)
				iv := item.Parent(above.Column)
				if pv != nil && iv != nil && *pv != *iv {
					return shared.NewReferentialError(idx,
						"%s %s belongs to a different %s", ref.Type, *v, above.Type)
				}
			}
		}
	}
	return nil
}

func applyUpdates(tx *gorm.DB, t production.EntityType, guid uuid.UUID, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	return tx.Table(t.Table()).
		Where("guid = ?", guid).
		Updates(values).Error
}

// deleteAbsent cascade soft-deletes every active row the snapshot no
// longer carries, all under one generation.
func deleteAbsent[T syncItem](tx *gorm.DB, t production.EntityType, items []T, existing map[uuid.UUID]production.Record) (int, error) {
	present := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		present[item.ItemGUID()] = struct{}{}
	}

	var absent []uuid.UUID
	for guid, row := range existing {
		if !row.IsActive {
			continue
		}
		if _, ok := present[guid]; !ok {
			absent = append(absent, guid)
		}
	}
	if len(absent) == 0 {
		return 0, nil
	}

	generation := time.Now().UTC().Truncate(time.Microsecond)
	if err := deactivateRows(tx, t.Table(), "guid", absent, generation); err != nil {
		return 0, err
	}
	if err := cascadeDeactivate(tx, t, absent, generation); err != nil {
		return 0, err
	}
	return len(absent), nil
}

func syncAuditValue(t production.EntityType, result SyncResult, deleted int) string {
	v, _ := json.Marshal(map[string]interface{}{
		"entity_type": string(t),
		"inserted":    result.Inserted,
		"updated":     result.Updated,
		"deleted":     deleted,
	})
	return string(v)
}
