package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/infra/config"
	"github.com/coursehub/coursehub-api/internal/repository"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

const testSecret = "routes-test-signing-secret"

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		App: config.AppSettings{Name: "coursehub-test", Env: "test"},
		JWT: config.JWTSettings{
			Secret:   testSecret,
			TokenTTL: time.Hour,
		},
		Lockout: config.LockoutSettings{
			MaxAttempts:  5,
			LockDuration: 15 * time.Minute,
		},
		Catalog: config.CatalogSettings{CacheTTL: time.Minute},
		CORS:    config.CORSSettings{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, account domain.Account) (*domain.Account, error) {
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return nil, repository.ErrConflict
		}
	}
	r.nextID++
	account.ID = fmt.Sprintf("acc-%d", r.nextID)
	stored := account
	r.accounts[account.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *stubAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	if account, ok := r.accounts[id]; ok {
		copy := *account
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			copy := *account
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubAccountRepo) UpdateDetails(_ context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Email != nil {
		for otherID, other := range r.accounts {
			if otherID != id && other.Email == *update.Email {
				return nil, repository.ErrConflict
			}
		}
		account.Email = *update.Email
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	copy := *account
	return &copy, nil
}

func (r *stubAccountRepo) RecordFailedAttempt(_ context.Context, id string, threshold int, lockFor time.Duration) (*domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	account.FailedAttempts++
	if threshold > 0 && account.FailedAttempts >= threshold {
		lockedUntil := time.Now().UTC().Add(lockFor)
		account.LockedUntil = &lockedUntil
	}
	copy := *account
	return &copy, nil
}

func (r *stubAccountRepo) ResetLockout(_ context.Context, id string, lastLogin time.Time) error {
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.FailedAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &lastLogin
	return nil
}

type stubCourseRepo struct {
	courses map[string]*domain.Course
	nextID  int
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: make(map[string]*domain.Course)}
}

func (r *stubCourseRepo) Create(_ context.Context, course domain.Course) (*domain.Course, error) {
	r.nextID++
	course.ID = fmt.Sprintf("course-%d", r.nextID)
	stored := course
	r.courses[course.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *stubCourseRepo) GetByID(_ context.Context, id string) (*domain.Course, error) {
	if course, ok := r.courses[id]; ok {
		copy := *course
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubCourseRepo) List(_ context.Context) ([]domain.Course, error) {
	result := make([]domain.Course, 0, len(r.courses))
	for _, course := range r.courses {
		result = append(result, *course)
	}
	return result, nil
}

type stubCatalogCache struct {
	courses []domain.Course
	valid   bool
}

func (c *stubCatalogCache) GetCourses(_ context.Context) ([]domain.Course, bool, error) {
	if !c.valid {
		return nil, false, nil
	}
	return c.courses, true, nil
}

func (c *stubCatalogCache) SetCourses(_ context.Context, courses []domain.Course, _ time.Duration) error {
	c.courses = courses
	c.valid = true
	return nil
}

func (c *stubCatalogCache) Invalidate(_ context.Context) error {
	c.courses = nil
	c.valid = false
	return nil
}

type stubEnrollmentRepo struct {
	enrollments map[string]*domain.Enrollment
	nextID      int
}

func newStubEnrollmentRepo() *stubEnrollmentRepo {
	return &stubEnrollmentRepo{enrollments: make(map[string]*domain.Enrollment)}
}

func (r *stubEnrollmentRepo) Create(_ context.Context, enrollment domain.Enrollment) (*domain.Enrollment, error) {
	for _, existing := range r.enrollments {
		if existing.AccountID == enrollment.AccountID && existing.CourseID == enrollment.CourseID {
			return nil, repository.ErrConflict
		}
	}
	r.nextID++
	enrollment.ID = fmt.Sprintf("enr-%d", r.nextID)
	stored := enrollment
	r.enrollments[enrollment.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *stubEnrollmentRepo) GetByAccountAndCourse(_ context.Context, accountID, courseID string) (*domain.Enrollment, error) {
	for _, enrollment := range r.enrollments {
		if enrollment.AccountID == accountID && enrollment.CourseID == courseID {
			copy := *enrollment
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubEnrollmentRepo) ListByAccount(_ context.Context, accountID string) ([]domain.Enrollment, error) {
	result := make([]domain.Enrollment, 0)
	for _, enrollment := range r.enrollments {
		if enrollment.AccountID == accountID {
			result = append(result, *enrollment)
		}
	}
	return result, nil
}

func (r *stubEnrollmentRepo) UpdateProgress(_ context.Context, id string, progress int, completed bool) (*domain.Enrollment, error) {
	enrollment, ok := r.enrollments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	enrollment.Progress = progress
	enrollment.Completed = completed
	enrollment.UpdatedAt = time.Now().UTC()
	copy := *enrollment
	return &copy, nil
}

type testEnv struct {
	engine   *gin.Engine
	accounts *stubAccountRepo
	courses  *stubCourseRepo
	auth     *usecase.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := zap.NewNop()

	accounts := newStubAccountRepo()
	courses := newStubCourseRepo()
	enrollments := newStubEnrollmentRepo()
	cache := &stubCatalogCache{}

	authService := usecase.NewAuthService(cfg, accounts, log)
	courseService := usecase.NewCourseService(courses, cache, cfg.Catalog.CacheTTL, log)
	enrollmentService := usecase.NewEnrollmentService(enrollments, courses, log)

	engine := Register(Dependencies{
		Config: cfg,
		Logger: log,
		Services: ServiceSet{
			Auth:        authService,
			Courses:     courseService,
			Enrollments: enrollmentService,
		},
	})

	return &testEnv{engine: engine, accounts: accounts, courses: courses, auth: authService}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("register response missing token")
	}
	return token
}

func TestRegisterLoginAndIdentity(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "secret1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %v", body["user"])
	}
	if user["email"] != "ada@example.com" {
		t.Fatalf("expected normalized email, got %v", user["email"])
	}
	if user["role"] != "user" {
		t.Fatalf("expected default role user, got %v", user["role"])
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	token := decodeBody(t, rec)["token"].(string)

	for _, path := range []string{"/api/auth/user", "/api/auth/me"} {
		rec = env.do(t, http.MethodGet, path, nil, map[string]string{"x-auth-token": token})
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s returned %d: %s", path, rec.Code, rec.Body.String())
		}
		identity := decodeBody(t, rec)["user"].(map[string]any)
		if identity["name"] != "Ada" {
			t.Fatalf("expected name Ada, got %v", identity["name"])
		}
	}

	// Bearer form works too.
	rec = env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer auth returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPublicViewNeverLeaksSecrets(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com", "secret1")

	for _, rec := range []*httptest.ResponseRecorder{
		env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "ada@example.com", "password": "secret1",
		}, nil),
		env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{"x-auth-token": token}),
	} {
		raw := rec.Body.String()
		for _, forbidden := range []string{"password", "hash", "failed", "locked"} {
			if strings.Contains(strings.ToLower(raw), forbidden) {
				t.Fatalf("response leaks %q: %s", forbidden, raw)
			}
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Imposter", "email": "ADA@example.com", "password": "secret2",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"email": "ada@example.com", "password": "secret1"},
		{"name": "Ada", "password": "secret1"},
		{"name": "Ada", "email": "not-an-email", "password": "secret1"},
		{"name": "Ada", "email": "ada@example.com", "password": "short"},
	}
	for _, payload := range cases {
		rec := env.do(t, http.MethodPost, "/api/auth/register", payload, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: expected 400, got %d: %s", payload, rec.Code, rec.Body.String())
		}
	}
}

func TestLoginFailuresAndLockout(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com", "secret1")

	// Unknown account and wrong password are indistinguishable.
	for _, payload := range []map[string]string{
		{"email": "ghost@example.com", "password": "whatever"},
		{"email": "ada@example.com", "password": "wrong"},
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/login", payload, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("payload %v: expected 401, got %d: %s", payload, rec.Code, rec.Body.String())
		}
	}

	// Four more failures push the account over the threshold.
	for i := 0; i < 4; i++ {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "ada@example.com", "password": "wrong",
		}, nil)
		if rec.Code != http.StatusUnauthorized && rec.Code != http.StatusLocked {
			t.Fatalf("attempt %d: unexpected status %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	// Even the correct password is rejected while the lock holds.
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	}, nil)
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	retryAfter, ok := body["retryAfter"].(float64)
	if !ok || retryAfter <= 0 {
		t.Fatalf("expected positive retryAfter, got %v", body["retryAfter"])
	}
	if retryAfter > 15*60 {
		t.Fatalf("retryAfter exceeds the lock window: %v", retryAfter)
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/user", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{
		"x-auth-token": "not.a.jwt",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{
		"Authorization": "Token something",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: expected 401, got %d", rec.Code)
	}

	// Token signed with the right key but already expired.
	claims := jwt.MapClaims{
		"uid":  "acc-1",
		"role": "user",
		"exp":  time.Now().Add(-time.Hour).Unix(),
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	rec = env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{
		"x-auth-token": expired,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTokenForVanishedAccountIsRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com", "secret1")

	delete(env.accounts.accounts, "acc-1")

	rec := env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{"x-auth-token": token})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for vanished account, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogoutIsStateless(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com", "secret1")

	rec := env.do(t, http.MethodGet, "/api/auth/logout", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The token itself stays valid until it expires.
	rec = env.do(t, http.MethodGet, "/api/auth/user", nil, map[string]string{"x-auth-token": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("token should survive logout, got %d", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com", "secret1")

	rec := env.do(t, http.MethodPut, "/api/auth/updatedetails", map[string]string{
		"name": "Ada Lovelace",
	}, map[string]string{"x-auth-token": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["name"] != "Ada Lovelace" {
		t.Fatalf("expected updated name, got %v", user["name"])
	}

	rec = env.do(t, http.MethodPut, "/api/auth/updatedetails", map[string]string{"name": "Nobody"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCourseCatalogAndEnrollment(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com", "secret1")

	adminAccount, err := env.accounts.GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("lookup account: %v", err)
	}
	env.accounts.accounts[adminAccount.ID].Role = domain.RoleAdmin
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	}, nil)
	adminToken := decodeBody(t, rec)["token"].(string)

	studentToken := env.register(t, "Grace", "grace@example.com", "secret1")

	// Catalog writes are admin only.
	rec = env.do(t, http.MethodPost, "/api/courses", map[string]any{
		"title": "Systems", "instructor": "Ritchie", "duration": 10,
	}, map[string]string{"x-auth-token": studentToken})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student create: expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/courses", map[string]any{
		"title": "Systems", "instructor": "Ritchie", "duration": 10,
	}, map[string]string{"x-auth-token": adminToken})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	course := decodeBody(t, rec)["course"].(map[string]any)
	courseID := course["id"].(string)

	// Catalog listing is public.
	rec = env.do(t, http.MethodGet, "/api/courses", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if count := decodeBody(t, rec)["count"].(float64); count != 1 {
		t.Fatalf("expected 1 course, got %v", count)
	}

	rec = env.do(t, http.MethodGet, "/api/courses/"+courseID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/courses/missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: expected 404, got %d", rec.Code)
	}

	// Enrollment flow.
	rec = env.do(t, http.MethodPost, "/api/courses/"+courseID+"/enroll", nil, map[string]string{
		"x-auth-token": studentToken,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/courses/"+courseID+"/enroll", nil, map[string]string{
		"x-auth-token": studentToken,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat enroll: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, "/api/courses/"+courseID+"/progress", map[string]int{
		"progress": 100,
	}, map[string]string{"x-auth-token": studentToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	enrollment := decodeBody(t, rec)["enrollment"].(map[string]any)
	if enrollment["completed"] != true {
		t.Fatalf("expected completed at 100%%, got %v", enrollment["completed"])
	}

	rec = env.do(t, http.MethodGet, "/api/courses/user/courses", nil, map[string]string{
		"x-auth-token": studentToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("my courses: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if count := decodeBody(t, rec)["count"].(float64); count != 1 {
		t.Fatalf("expected 1 enrolled course, got %v", count)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
}
