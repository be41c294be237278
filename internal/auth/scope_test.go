package auth

import (
	"testing"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func swapMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		conn.Close()
	})

	return mock
}

func TestAuthorizeBranchScopeBranchUser(t *testing.T) {
	sess := Session{UserID: 3, Role: models.RoleManager, BranchID: uintPtr(5)}

	assert.NoError(t, AuthorizeBranchScope(sess, 5))
	assert.True(t, apperr.IsKind(AuthorizeBranchScope(sess, 6), apperr.KindForbidden))
}

func TestAuthorizeBranchScopeFranchisorOwnBranch(t *testing.T) {
	mock := swapMockDB(t)
	sess := Session{UserID: 1, Role: models.RoleFranchisor}

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id"}).AddRow(1, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id"}).AddRow(5, 1))

	assert.NoError(t, AuthorizeBranchScope(sess, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizeBranchScopeFranchisorForeignBranch(t *testing.T) {
	mock := swapMockDB(t)
	sess := Session{UserID: 1, Role: models.RoleFranchisor}

	// Caller runs franchise 1; branch 9 belongs to franchise 2.
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id"}).AddRow(1, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id"}).AddRow(9, 2))

	err := AuthorizeBranchScope(sess, 9)
	require.Error(t, err)

	// Reads as missing rather than forbidden so foreign ids stay opaque.
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFranchiseIDFromBranch(t *testing.T) {
	mock := swapMockDB(t)
	sess := Session{UserID: 4, Role: models.RoleBranchOwner, BranchID: uintPtr(5)}

	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id"}).AddRow(5, 7))

	id, err := SessionFranchiseID(sess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}
