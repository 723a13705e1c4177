package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobtrackhq/jobtrack/internal/config"
	"github.com/jobtrackhq/jobtrack/internal/token"
)

var jobCols = []string{"id", "company", "position", "status", "created_by", "created_at", "updated_at"}
var userCols = []string{"id", "name", "email", "password_hash", "created_at"}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret-for-integration",
		JWTExpireHours: 1,
	}
}

func postJSON(t *testing.T, client *http.Client, url, bearer string, payload interface{}) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func decodeToken(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("decode token: %v", err)
	}
	return out.Token
}

// TestAPI_OwnershipOpacity runs the full scenario: Ann registers and creates
// a job; Bob registers and tries to fetch it. Bob must get a 404 that is
// indistinguishable from a nonexistent job.
func TestAPI_OwnershipOpacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()

	// Ann registers.
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ann", "ann@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Ann", "ann@x.com", "h", now))

	// Ann creates a job; the mutation is audit logged.
	mock.ExpectQuery(`INSERT INTO jobs`).
		WithArgs("Acme", "Eng", "pending", 1).
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow(42, "Acme", "Eng", "pending", 1, now, now))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "create", "job", 42, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Bob registers.
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Bob", "bob@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "Bob", "bob@x.com", "h", now))

	// Bob fetches Ann's job: the owner-scoped query finds nothing.
	mock.ExpectQuery(`SELECT id, company, position, status, created_by, created_at, updated_at\s+FROM jobs\s+WHERE id = \$1 AND created_by = \$2`).
		WithArgs(42, 2).
		WillReturnRows(sqlmock.NewRows(jobCols))

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()
	client := srv.Client()

	annResp := postJSON(t, client, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "secret123",
	})
	if annResp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: got %d, want 201", annResp.StatusCode)
	}
	annToken := decodeToken(t, annResp)

	createResp := postJSON(t, client, srv.URL+"/api/v1/jobs", annToken, map[string]string{
		"company": "Acme", "position": "Eng",
	})
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create job status: got %d, want 201", createResp.StatusCode)
	}
	var created struct {
		Job struct {
			ID        int `json:"id"`
			CreatedBy int `json:"created_by"`
		} `json:"job"`
	}
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if created.Job.CreatedBy != 1 {
		t.Errorf("created_by: got %d, want 1", created.Job.CreatedBy)
	}

	bobResp := postJSON(t, client, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"name": "Bob", "email": "bob@x.com", "password": "secret456",
	})
	bobToken := decodeToken(t, bobResp)

	req, _ := http.NewRequest("GET", srv.URL+"/api/v1/jobs/42", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	fetchResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer fetchResp.Body.Close()
	if fetchResp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-owner fetch status: got %d, want 404", fetchResp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_LoginThenListJobs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// bcrypt hash of "secret123" at min cost, produced by the register path
	// in real deployments; here the row is seeded directly.
	hash := mustHash(t, "secret123")
	now := time.Now()

	mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at`).
		WithArgs("ann@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Ann", "ann@x.com", hash, now))

	mock.ExpectQuery(`SELECT id, company, position, status, created_by, created_at, updated_at\s+FROM jobs\s+WHERE created_by = \$1`).
		WithArgs(1, 50, 0).
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow(1, "Acme", "Eng", "pending", 1, now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM jobs WHERE created_by = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()
	client := srv.Client()

	loginResp := postJSON(t, client, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email": "ann@x.com", "password": "secret123",
	})
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	tok := decodeToken(t, loginResp)

	req, _ := http.NewRequest("GET", srv.URL+"/api/v1/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	listResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("list status: got %d, want 200", listResp.StatusCode)
	}
	var out struct {
		Jobs  []json.RawMessage `json:"jobs"`
		Count int               `json:"count"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if out.Count != 1 || len(out.Jobs) != 1 {
		t.Errorf("unexpected list: count=%d jobs=%d", out.Count, len(out.Jobs))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_ExpiredToken(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := testConfig()
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	// Same secret, TTL already in the past.
	expired, err := token.NewService([]byte(cfg.JWTSecret), -time.Minute).Issue(1)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	req, _ := http.NewRequest("GET", srv.URL+"/api/v1/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
}

func TestAPI_UnmatchedRoute(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/nope")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out["message"] == "" {
		t.Errorf("expected JSON error body, got: %v", out)
	}
}

func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

func TestAPI_Ready(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, testConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}
