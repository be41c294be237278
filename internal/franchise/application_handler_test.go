package franchise

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/auth"
	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T, sess auth.Session) (*fiber.App, sqlmock.Sqlmock) {
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

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return c.Status(appErr.Kind.HTTPStatus()).JSON(fiber.Map{
					"error": appErr.Message,
					"kind":  appErr.Kind,
				})
			}
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session", sess)
		return c.Next()
	})
	app.Put("/applications/:id/approve", ApproveApplicationHandler())
	app.Put("/applications/:id/reject", RejectApplicationHandler())

	return app, mock
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func franchisorSession() auth.Session {
	return auth.Session{UserID: 1, Email: "hq@brand.example", Role: models.RoleFranchisor}
}

func expectApplicationRead(mock sqlmock.Sqlmock, status models.BranchStatus) {
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id"}).AddRow(1, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1 AND franchise_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id", "name", "status"}).
			AddRow(7, 1, "Harbor Branch", string(status)))
}

func TestApproveApplicationGuardsOnPendingStatus(t *testing.T) {
	app, mock := newTestApp(t, franchisorSession())

	expectApplicationRead(mock, models.BranchPending)

	// The activate is conditional on the row still being PENDING.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "branches" SET (.+) WHERE id = \$\d+ AND status = \$\d+`).
		WithArgs("", string(models.BranchActive), sqlmock.AnyArg(), 7, string(models.BranchPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest("PUT", "/applications/7/approve", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(models.BranchActive), body["status"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveApplicationLostRaceToRejectIsConflict(t *testing.T) {
	app, mock := newTestApp(t, franchisorSession())

	// The application read PENDING, but a concurrent reject landed first.
	// The rejection must survive: no activate, 409 back to the caller.
	expectApplicationRead(mock, models.BranchPending)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "branches" SET (.+) WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id", "status", "rejection_reason"}).
			AddRow(7, 1, string(models.BranchRejected), "site unsuitable"))

	resp, err := app.Test(httptest.NewRequest("PUT", "/applications/7/approve", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(apperr.KindConflict), body["kind"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveApplicationLostRaceToApproveIsIdempotent(t *testing.T) {
	app, mock := newTestApp(t, franchisorSession())

	expectApplicationRead(mock, models.BranchPending)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "branches" SET (.+) WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id", "status"}).
			AddRow(7, 1, string(models.BranchActive)))

	resp, err := app.Test(httptest.NewRequest("PUT", "/applications/7/approve", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectApplicationLostRaceToApproveIsConflict(t *testing.T) {
	app, mock := newTestApp(t, franchisorSession())

	expectApplicationRead(mock, models.BranchPending)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "branches" SET (.+) WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "branches" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "franchise_id", "status"}).
			AddRow(7, 1, string(models.BranchActive)))

	req := httptest.NewRequest("PUT", "/applications/7/reject", jsonBody(t, map[string]string{"reason": "site unsuitable"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	assert.NoError(t, mock.ExpectationsWereMet())
}
