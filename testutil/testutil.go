// Package testutil builds throwaway databases and HTTP requests for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vnkhanh/survey-hub/config"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

const TestJWTSecret = "test-secret"

// SetupTestDB opens a private in-memory sqlite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "migrate test database")
	return db
}

// TestConfig returns a config suitable for building the router in tests.
func TestConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:             "0",
		DBDriver:         config.DriverSQLite,
		JWTSecret:        TestJWTSecret,
		JWTTTL:           time.Hour,
		CORSOrigins:      []string{"http://localhost:4200"},
		SubmitRatePerMin: 1000,
		LoginRatePerMin:  1000,
		CreateRatePerMin: 1000,
		LogLevel:         "error",
		ExportDir:        t.TempDir(),
	}
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	u := &models.User{Name: strings.Split(email, "@")[0], Email: email, Password: hash}
	require.NoError(t, db.Create(u).Error)
	return u
}

// TokenFor signs a bearer token for u with the test secret.
func TokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := utils.NewTokenIssuer(TestJWTSecret, time.Hour).GenerateToken(u.ID, u.Email)
	require.NoError(t, err)
	return tok
}

// MakeRequest runs one request through h. body is JSON-encoded unless nil.
func MakeRequest(t *testing.T, h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Bearer returns an Authorization header map for token.
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// DecodeJSON unmarshals the recorder body into v.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
