package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/skillbridge/backend/internal/auth/middleware"
	"github.com/skillbridge/backend/internal/auth/service"
	"github.com/skillbridge/backend/internal/config"
	"github.com/skillbridge/backend/internal/handlers"
	"github.com/skillbridge/backend/internal/models"
	"github.com/skillbridge/backend/internal/repositories"
	"github.com/skillbridge/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testLogger *zap.Logger
)

// setupTestRouter creates a router wired the same way as cmd/main.go
func setupTestRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger) chi.Router {
	tokenGen := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	userRepo := repositories.NewUserRepository(db, logger)
	lessonRepo := repositories.NewLessonRepository(db, logger)

	authSvc := services.NewAuthService(userRepo, tokenGen, logger)
	learnerSvc := services.NewLearnerService(userRepo, lessonRepo, services.NewQRCertificateEncoder(), false, logger)
	adminSvc := services.NewAdminService(lessonRepo, userRepo, logger)

	noLimit := func(next http.Handler) http.Handler { return next }
	authMiddleware := middleware.AuthMiddleware(tokenGen, userRepo, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handlers.NewLessonHandler(learnerSvc, logger).RegisterRoutes(r)
		r.Route("/users", func(r chi.Router) {
			handlers.NewAuthHandler(authSvc, cfg.JWT.AccessTokenExpiry, logger).RegisterRoutes(r, noLimit)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				handlers.NewLearnerHandler(learnerSvc, logger).RegisterRoutes(r)
			})
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RoleMiddleware(models.RoleAdmin))
			handlers.NewAdminHandler(adminSvc, logger).RegisterRoutes(r)
		})
	})

	return r
}

// migrateTestSchema applies the project migrations to the test database
func migrateTestSchema(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Println("Skipping integration tests in short mode")
		os.Exit(0)
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := cfg.DSN()
	if dsn == "" {
		fmt.Println("TEST_DB_HOST is not set, skipping integration tests")
		os.Exit(0)
	}

	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	if err := migrateTestSchema(testDB); err != nil {
		panic(fmt.Sprintf("Failed to migrate test database: %v", err))
	}

	testRouter = setupTestRouter(testDB, cfg, testLogger)

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

// cleanupTestData removes all test data
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"certificates", "progress_entries", "lessons", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err, "Failed to cleanup %s", table)
	}
}

// seedAdmin inserts an admin account directly, there is no API for promoting users
func seedAdmin(t *testing.T, db *sql.DB, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, track, created_at) VALUES (?, ?, ?, ?, ?, '', ?)`,
		uuid.New().String(), "Admin", email, string(hash), models.RoleAdmin, time.Now().UTC(),
	)
	require.NoError(t, err, "Failed to seed admin")
}

func call(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func login(t *testing.T, email, password string) string {
	t.Helper()
	w, body := call(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %v", body)
	return body["token"].(string)
}

func createApprovedLesson(t *testing.T, adminToken, track, title string) string {
	t.Helper()
	w, body := call(t, http.MethodPost, "/api/admin/lessons", adminToken,
		map[string]any{"track": track, "title": title, "content": title + " content"})
	require.Equal(t, http.StatusCreated, w.Code, "create lesson failed: %v", body)
	id := body["lesson"].(map[string]any)["id"].(string)

	w, body = call(t, http.MethodPatch, "/api/admin/lessons/"+id+"/approve", adminToken, map[string]bool{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, "approve lesson failed: %v", body)
	return id
}

func TestIntegration_LearnerJourney(t *testing.T) {
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	seedAdmin(t, testDB, "admin@example.com", "admin-pass")
	adminToken := login(t, "admin@example.com", "admin-pass")

	first := createApprovedLesson(t, adminToken, "coding", "Variables")
	second := createApprovedLesson(t, adminToken, "coding", "Loops")
	w, _ := call(t, http.MethodPost, "/api/admin/lessons", adminToken,
		map[string]any{"track": "coding", "title": "Draft", "content": "unreviewed"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Public catalogue only shows approved lessons
	w, body := call(t, http.MethodGet, "/api/lessons/coding", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["lessons"], 2)

	// Register and login
	w, body = call(t, http.MethodPost, "/api/users/register", "",
		map[string]string{"name": "Ada", "email": "ada@example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code, "%v", body)
	w, _ = call(t, http.MethodPost, "/api/users/register", "",
		map[string]string{"name": "Ada", "email": "ada@example.com", "password": "secret"})
	assert.Equal(t, http.StatusConflict, w.Code)
	token := login(t, "ada@example.com", "secret")

	// Dashboard requires a track
	w, _ = call(t, http.MethodGet, "/api/users/dashboard", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Quiz assigns coding
	w, body = call(t, http.MethodPost, "/api/users/quiz", token, map[string]any{
		"answers": []map[string]string{{"questionId": "q1", "answer": "coding"}, {"questionId": "q2", "answer": "design"}, {"questionId": "q3", "answer": "coding"}},
	})
	require.Equal(t, http.StatusOK, w.Code, "%v", body)
	assert.Equal(t, "coding", body["track"])

	w, _ = call(t, http.MethodPost, "/api/users/quiz", token, map[string]any{
		"answers": []map[string]string{{"questionId": "q1", "answer": "design"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Learners cannot reach admin routes
	w, _ = call(t, http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Complete the first lesson
	w, body = call(t, http.MethodPost, "/api/users/lesson/"+first+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "%v", body)
	assert.Equal(t, true, body["newlyCompleted"])
	assert.Equal(t, false, body["allCompleted"])
	assert.Nil(t, body["certificateUrl"])

	w, body = call(t, http.MethodGet, "/api/users/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), body["progressPercentage"])

	// Completing the last lesson mints a certificate
	w, body = call(t, http.MethodPost, "/api/users/lesson/"+second+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "%v", body)
	assert.Equal(t, true, body["allCompleted"])
	require.NotNil(t, body["certificateUrl"])
	assert.Contains(t, body["certificateUrl"], "data:image/png;base64,")

	// Repeating a completion keeps progress but mints another certificate
	w, body = call(t, http.MethodPost, "/api/users/lesson/"+second+"/complete", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["newlyCompleted"])

	w, body = call(t, http.MethodGet, "/api/users/certificates", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["certificates"], 2)

	w, body = call(t, http.MethodGet, "/api/users/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["progressPercentage"])

	// Admin user listing redacts credentials
	w, body = call(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := body["users"].([]any)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u.(map[string]any), "passwordHash")
	}
}

func TestIntegration_ConcurrentCompletionsKeepAllProgress(t *testing.T) {
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	seedAdmin(t, testDB, "admin@example.com", "admin-pass")
	adminToken := login(t, "admin@example.com", "admin-pass")

	lessonIDs := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		lessonIDs = append(lessonIDs, createApprovedLesson(t, adminToken, "design", fmt.Sprintf("Lesson %d", i)))
	}

	w, _ := call(t, http.MethodPost, "/api/users/register", "",
		map[string]string{"name": "Bob", "email": "bob@example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code)
	token := login(t, "bob@example.com", "secret")
	w, _ = call(t, http.MethodPost, "/api/users/quiz", token, map[string]any{
		"answers": []map[string]string{{"questionId": "q1", "answer": "none"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var wg sync.WaitGroup
	for _, id := range lessonIDs {
		wg.Add(1)
		go func(lessonID string) {
			defer wg.Done()
			call(t, http.MethodPost, "/api/users/lesson/"+lessonID+"/complete", token, nil)
		}(id)
	}
	wg.Wait()

	w, body := call(t, http.MethodGet, "/api/users/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["progressPercentage"])
}

func TestIntegration_Unauthenticated(t *testing.T) {
	w, _ := call(t, http.MethodGet, "/api/users/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, http.MethodGet, "/api/admin/lessons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, http.MethodGet, "/api/users/dashboard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntegration_CompletionsWithSaturatedPool(t *testing.T) {
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	seedAdmin(t, testDB, "admin@example.com", "admin-pass")
	adminToken := login(t, "admin@example.com", "admin-pass")

	lessonIDs := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		lessonIDs = append(lessonIDs, createApprovedLesson(t, adminToken, "design", fmt.Sprintf("Lesson %d", i)))
	}

	w, _ := call(t, http.MethodPost, "/api/users/register", "",
		map[string]string{"name": "Cleo", "email": "cleo@example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code)
	token := login(t, "cleo@example.com", "secret")
	w, _ = call(t, http.MethodPost, "/api/users/quiz", token, map[string]any{
		"answers": []map[string]string{{"questionId": "q1", "answer": "none"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// More completions in flight than pooled connections
	testDB.SetMaxOpenConns(2)
	defer testDB.SetMaxOpenConns(0)

	codes := make([]int, len(lessonIDs))
	var wg sync.WaitGroup
	for i, id := range lessonIDs {
		wg.Add(1)
		go func(i int, lessonID string) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			req := httptest.NewRequest(http.MethodPost, "/api/users/lesson/"+lessonID+"/complete", nil).WithContext(ctx)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			testRouter.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i, id)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "completion of lesson %d", i)
	}

	w, body := call(t, http.MethodGet, "/api/users/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["progressPercentage"])
}
