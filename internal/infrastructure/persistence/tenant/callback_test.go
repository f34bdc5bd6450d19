package tenant

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallback_AddsCompanyFilter(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)
	companyGUID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE "scoped_models"\."company_guid" = \$1`).
		WithArgs(companyGUID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"guid", "company_guid", "name"}))

	var results []scopedModel
	err := db.WithContext(scopedCtx(companyGUID)).Find(&results).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallback_SkipsWhenFilterPresent(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)
	companyGUID := uuid.New()

	// Only one company_guid condition should appear
	mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE company_guid = \$1`).
		WithArgs(companyGUID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"guid", "company_guid", "name"}))

	var results []scopedModel
	err := db.WithContext(scopedCtx(companyGUID)).
		Where("company_guid = ?", companyGUID.String()).
		Find(&results).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallback_BypassSkipsFilter(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)

	mock.ExpectQuery(`SELECT \* FROM "scoped_models"`).
		WillReturnRows(sqlmock.NewRows([]string{"guid", "company_guid", "name"}))

	var results []scopedModel
	err := db.WithContext(bypassCtx()).Find(&results).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallback_RequiredErrorsWithoutIdentity(t *testing.T) {
	db, _, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)

	var results []scopedModel
	err := db.WithContext(context.Background()).Find(&results).Error

	assert.ErrorIs(t, err, ErrCompanyIDRequired)
}

func TestCallback_OptionalPassesWithoutIdentity(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, false)

	mock.ExpectQuery(`SELECT \* FROM "scoped_models"`).
		WillReturnRows(sqlmock.NewRows([]string{"guid", "company_guid", "name"}))

	var results []scopedModel
	err := db.WithContext(context.Background()).Find(&results).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type unscopedModel struct {
	ID   uint
	Name string
}

func (unscopedModel) TableName() string {
	return "unscoped_models"
}

func TestCallback_IgnoresTablesWithoutCompanyColumn(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)

	mock.ExpectQuery(`SELECT \* FROM "unscoped_models"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	var results []unscopedModel
	err := db.WithContext(context.Background()).Find(&results).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallback_AppliesToUpdates(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)
	companyGUID := uuid.New()

	mock.ExpectExec(`UPDATE "scoped_models" SET .+company_guid.+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.WithContext(scopedCtx(companyGUID)).
		Model(&scopedModel{}).
		Where("name = ?", "old").
		Update("name", "new").Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisableAutoCompanyFilter(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	EnableAutoCompanyFilter(db, true)
	DisableAutoCompanyFilter(db)

	mock.ExpectQuery(`SELECT \* FROM "scoped_models"`).
		WillReturnRows(sqlmock.NewRows([]string{"guid", "company_guid", "name"}))

	var results []scopedModel
	err := db.WithContext(context.Background()).Find(&results).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
