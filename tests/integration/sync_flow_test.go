// End-to-end reconciliation of sync snapshots against a real postgres
// database, including the implicit cascade deletion of absent rows and
// the selective restore that follows it.
package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appproduction "github.com/mfg/backend/internal/application/production"
	"github.com/mfg/backend/internal/domain/production"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"github.com/mfg/backend/tests/testutil"
)

type syncFixture struct {
	*isolationFixture
	Sync    *appproduction.SyncService
	Cascade *appproduction.CascadeService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := newIsolationFixture(t)
	tenant.EnableAutoCompanyFilter(f.AppDB, false)
	tdb := tenant.NewTenantDB(f.AppDB)

	return &syncFixture{
		isolationFixture: f,
		Sync:             appproduction.NewSyncService(tdb, 1000),
		Cascade:          appproduction.NewCascadeService(tdb),
	}
}

func projectItem(company uuid.UUID, code string) appproduction.ProjectSyncItem {
	return appproduction.ProjectSyncItem{
		GUID:        uuid.New(),
		CompanyGUID: company,
		Code:        code,
	}
}

func TestSyncFlow_FullReplacement(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newSyncFixture(t)
	ctx := testutil.ScopedContext(f.CompanyA)

	first := []appproduction.ProjectSyncItem{
		projectItem(f.CompanyA, "PRJ-1"),
		projectItem(f.CompanyA, "PRJ-2"),
		projectItem(f.CompanyA, "PRJ-3"),
	}
	result, err := f.Sync.SyncProjects(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	// A second snapshot that drops PRJ-3 and renames PRJ-2
	second := []appproduction.ProjectSyncItem{
		first[0],
		{GUID: first[1].GUID, CompanyGUID: f.CompanyA, Code: "PRJ-2-RENAMED"},
	}
	result, err = f.Sync.SyncProjects(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.Updated)

	var activeCodes []string
	require.NoError(t, f.DB.DB.Raw(
		"SELECT code FROM projects WHERE company_guid = ? AND is_active ORDER BY code",
		f.CompanyA).Scan(&activeCodes).Error)
	assert.Equal(t, []string{"PRJ-1", "PRJ-2-RENAMED"}, activeCodes)

	var deletedAt []string
	require.NoError(t, f.DB.DB.Raw(
		"SELECT deleted_at::text FROM projects WHERE guid = ?", first[2].GUID).
		Scan(&deletedAt).Error)
	require.Len(t, deletedAt, 1)
	assert.NotEmpty(t, deletedAt[0], "Absent row carries its deletion generation")
}

func TestSyncFlow_ReactivationCountsAsUpdated(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newSyncFixture(t)
	ctx := testutil.ScopedContext(f.CompanyA)

	item := projectItem(f.CompanyA, "PRJ-1")
	_, err := f.Sync.SyncProjects(ctx, []appproduction.ProjectSyncItem{item})
	require.NoError(t, err)

	require.NoError(t, f.Cascade.SoftDelete(ctx, production.TypeProject, item.GUID))

	result, err := f.Sync.SyncProjects(ctx, []appproduction.ProjectSyncItem{item})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Updated)

	var active bool
	require.NoError(t, f.DB.DB.Raw(
		"SELECT is_active FROM projects WHERE guid = ?", item.GUID).Scan(&active).Error)
	assert.True(t, active)
}

func TestSyncFlow_ChildCascadeSharesGeneration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newSyncFixture(t)
	ctx := testutil.ScopedContext(f.CompanyA)

	project := projectItem(f.CompanyA, "PRJ-1")
	_, err := f.Sync.SyncProjects(ctx, []appproduction.ProjectSyncItem{project})
	require.NoError(t, err)

	components := []appproduction.ComponentSyncItem{
		{GUID: uuid.New(), CompanyGUID: f.CompanyA, ProjectGUID: project.GUID, Code: "CMP-1", Quantity: 1},
		{GUID: uuid.New(), CompanyGUID: f.CompanyA, ProjectGUID: project.GUID, Code: "CMP-2", Quantity: 2},
	}
	_, err = f.Sync.SyncComponents(ctx, components)
	require.NoError(t, err)

	// An empty snapshot deletes every active component of the company
	result, err := f.Sync.SyncComponents(ctx, []appproduction.ComponentSyncItem{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	var generations []string
	require.NoError(t, f.DB.DB.Raw(
		"SELECT DISTINCT deleted_at::text FROM components WHERE company_guid = ?",
		f.CompanyA).Scan(&generations).Error)
	assert.Len(t, generations, 1, "All rows of one reconciliation share a generation")
}

func TestSyncFlow_MissingParentRejectsWholeBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newSyncFixture(t)
	ctx := testutil.ScopedContext(f.CompanyA)

	batch := []appproduction.ComponentSyncItem{
		{GUID: uuid.New(), CompanyGUID: f.CompanyA, ProjectGUID: uuid.New(), Code: "CMP-ORPHAN"},
	}
	_, err := f.Sync.SyncComponents(ctx, batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0")

	var count int64
	require.NoError(t, f.DB.DB.Raw(
		"SELECT COUNT(*) FROM components WHERE company_guid = ?", f.CompanyA).
		Scan(&count).Error)
	assert.Zero(t, count, "Failed reconciliation leaves no partial writes")
}

func TestSyncFlow_AuditEntryWritten(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	f := newSyncFixture(t)
	ctx := testutil.ScopedContext(f.CompanyA)

	_, err := f.Sync.SyncProjects(ctx, []appproduction.ProjectSyncItem{
		projectItem(f.CompanyA, "PRJ-1"),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.DB.DB.Raw(
		"SELECT COUNT(*) FROM workflows WHERE company_guid = ? AND action_type = 'sync'",
		f.CompanyA).Scan(&count).Error)
	assert.EqualValues(t, 1, count)
}
