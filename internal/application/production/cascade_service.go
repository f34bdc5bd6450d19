package production

import (
	"context"
	"encoding/json"
	"errors"
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

// CascadeService soft-deletes and restores hierarchy subtrees.
//
// A delete stamps the root and every active descendant with one shared
// generation timestamp. A restore reads the root's generation back and
// reactivates only the descendants stamped with it, so rows that were
// already inactive before the delete stay inactive.
type CascadeService struct {
	db *tenant.TenantDB
}

// NewCascadeService creates a new CascadeService
func NewCascadeService(db *tenant.TenantDB) *CascadeService {
	return &CascadeService{db: db}
}

// SoftDelete deactivates an entity and its whole active subtree.
// Re-deleting an already inactive entity re-stamps the root with a fresh
// generation; descendants deactivated earlier keep their own. A row that
// exists under another company is reported as forbidden, matching the
// read path.
func (s *CascadeService) SoftDelete(ctx context.Context, t production.EntityType, guid uuid.UUID) error {
	if !t.Valid() {
		return shared.ErrInvalidInput
	}

	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrCompanyIDRequired
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := loadRecord(tx, t, guid); err != nil {
			return err
		}

		generation := time.Now().UTC().Truncate(time.Microsecond)

		if err := deactivateRows(tx, t.Table(), "guid", []uuid.UUID{guid}, generation); err != nil {
			return err
		}
		if err := cascadeDeactivate(tx, t, []uuid.UUID{guid}, generation); err != nil {
			return err
		}

		return writeAudit(tx, tc, workflow.ActionDelete, auditValue(t, guid, generation))
	})
	if errors.Is(err, shared.ErrNotFound) {
		return s.classifyMiss(ctx, t, guid)
	}
	if err != nil {
		return err
	}

	logger.L(ctx).Info("Cascade soft delete completed",
		zap.String("entity_type", string(t)),
		zap.String("guid", guid.String()))
	return nil
}

// Restore reactivates an entity and the descendants deactivated by the
// same delete. Restoring an already active entity is a no-op. The
// immediate parent must be active; restoring under an inactive parent
// would resurrect an orphaned subtree. A row that exists under another
// company is reported as forbidden, matching the read path.
func (s *CascadeService) Restore(ctx context.Context, t production.EntityType, guid uuid.UUID) error {
	if !t.Valid() {
		return shared.ErrInvalidInput
	}

	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrCompanyIDRequired
	}

	var noop bool
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		rec, err := loadRecord(tx, t, guid)
		if err != nil {
			return err
		}
		if rec.IsActive {
			noop = true
			return nil
		}
		if rec.DeletedAt == nil {
			return shared.ErrInvalidState
		}

		if err := checkParentActive(tx, t, rec); err != nil {
			return err
		}

		generation := rec.DeletedAt.UTC()

		if err := reactivateRows(tx, t.Table(), "guid", []uuid.UUID{guid}, generation); err != nil {
			return err
		}
		if err := cascadeReactivate(tx, t, []uuid.UUID{guid}, generation); err != nil {
			return err
		}

		return writeAudit(tx, tc, workflow.ActionRestore, auditValue(t, guid, generation))
	})
	if errors.Is(err, shared.ErrNotFound) {
		return s.classifyMiss(ctx, t, guid)
	}
	if err != nil {
		return err
	}
	if noop {
		return nil
	}

	logger.L(ctx).Info("Cascade restore completed",
		zap.String("entity_type", string(t)),
		zap.String("guid", guid.String()))
	return nil
}

// classifyMiss decides how to report a scoped lookup miss. The unscoped
// probe distinguishes a row held by another company, which is rejected
// as forbidden, from a row that exists nowhere. Under the database
// policies the probe cannot see foreign rows either, so the miss stays
// a plain not found there.
func (s *CascadeService) classifyMiss(ctx context.Context, t production.EntityType, guid uuid.UUID) error {
	var count int64
	if err := s.db.Unscoped().WithContext(ctx).
		Table(t.Table()).
		Where("guid = ?", guid).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrForbidden
	}
	return shared.ErrNotFound
}

// loadRecord reads the type-independent projection of one row
func loadRecord(tx *gorm.DB, t production.EntityType, guid uuid.UUID) (*production.Record, error) {
	var rec production.Record
	if err := tx.Table(t.Table()).Where("guid = ?", guid).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// checkParentActive verifies the immediate parent of rec is active.
// The last non-nil parent reference is the immediate parent; a project
// has none and is always restorable.
func checkParentActive(tx *gorm.DB, t production.EntityType, rec *production.Record) error {
	refs := production.ParentRefs(t)
	for i := len(refs) - 1; i >= 0; i-- {
		parentGUID := rec.ParentGUID(refs[i].Column)
		if parentGUID == nil {
			continue
		}
		parent, err := loadRecord(tx, refs[i].Type, *parentGUID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrConflict
			}
			return err
		}
		if !parent.IsActive {
			return shared.ErrConflict
		}
		return nil
	}
	return nil
}

// cascadeDeactivate walks the child edges of t and deactivates every
// active descendant of the given parents, stamping all of them with the
// same generation.
func cascadeDeactivate(tx *gorm.DB, t production.EntityType, parents []uuid.UUID, generation time.Time) error {
	if len(parents) == 0 {
		return nil
	}
	for _, link := range production.ChildLinks(t) {
		var children []uuid.UUID
		if err := tx.Table(link.Table).
			Where(link.ForeignKey+" IN ? AND is_active = ?", parents, true).
			Pluck("guid", &children).Error; err != nil {
			return err
		}
		if len(children) == 0 {
			continue
		}
		if err := deactivateRows(tx, link.Table, "guid", children, generation); err != nil {
			return err
		}
		if err := cascadeDeactivate(tx, link.Type, children, generation); err != nil {
			return err
		}
	}
	return nil
}

// cascadeReactivate walks the child edges of t and reactivates only the
// descendants whose deleted_at matches the generation being restored.
func cascadeReactivate(tx *gorm.DB, t production.EntityType, parents []uuid.UUID, generation time.Time) error {
	if len(parents) == 0 {
		return nil
	}
	for _, link := range production.ChildLinks(t) {
		var children []uuid.UUID
		if err := tx.Table(link.Table).
			Where(link.ForeignKey+" IN ? AND is_active = ? AND deleted_at = ?", parents, false, generation).
			Pluck("guid", &children).Error; err != nil {
			return err
		}
		if len(children) == 0 {
			continue
		}
		if err := reactivateRows(tx, link.Table, "guid", children, generation); err != nil {
			return err
		}
		if err := cascadeReactivate(tx, link.Type, children, generation); err != nil {
			return err
		}
	}
	return nil
}

func deactivateRows(tx *gorm.DB, table, column string, guids []uuid.UUID, generation time.Time) error {
	return tx.Table(table).
		Where(column+" IN ?", guids).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": generation,
			"updated_at": time.Now(),
		}).Error
}

func reactivateRows(tx *gorm.DB, table, column string, guids []uuid.UUID, generation time.Time) error {
	return tx.Table(table).
		Where(column+" IN ? AND deleted_at = ?", guids, generation).
		Updates(map[string]interface{}{
			"is_active":  true,
			"deleted_at": nil,
			"updated_at": time.Now(),
		}).Error
}

// writeAudit records the operation in the workflow log inside the same
// transaction, so a rollback takes the audit row with it.
func writeAudit(tx *gorm.DB, tc tenant.Context, action workflow.ActionType, value string) error {
	// companies carries no company_guid column, so the lookup needs a
	// session without the tenant scope. NewDB keeps the transaction.
	var companyName string
	if err := tx.Session(&gorm.Session{NewDB: true}).Table("companies").
		Select("name").
		Where("guid = ?", tc.CompanyGUID).
		Scan(&companyName).Error; err != nil {
		return err
	}

	entry := workflow.NewEntry(tc.CompanyGUID, companyName, action, value)
	if tc.UserGUID != nil {
		entry.WithUser(*tc.UserGUID, tc.UserName)
	}
	if tc.APIKeyGUID != nil {
		entry.WithAPIKey(*tc.APIKeyGUID, tc.UserName)
	}
	if tc.WorkstationGUID != nil {
		entry.WithWorkstation(*tc.WorkstationGUID, tc.WorkstationName)
	}
	return tx.Create(entry).Error
}

func auditValue(t production.EntityType, guid uuid.UUID, generation time.Time) string {
	v, _ := json.Marshal(map[string]string{
		"entity_type": string(t),
		"guid":        guid.String(),
		"generation":  generation.Format(time.RFC3339Nano),
	})
	return string(v)
}
