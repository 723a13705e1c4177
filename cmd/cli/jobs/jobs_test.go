package jobs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jobtrackhq/jobtrack/cmd/cli/config"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

// setupCLI points the CLI at srv and stores a token in a throwaway home dir.
func setupCLI(t *testing.T, srv *httptest.Server) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOBTRACK_API_URL", srv.URL)
	if err := config.SaveToken("test-token"); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

func TestListJobs_TableOutput(t *testing.T) {
	now := time.Now()
	resp := map[string]interface{}{
		"jobs": []models.Job{
			{ID: 1, Company: "Acme", Position: "Eng", Status: "pending", CreatedAt: now},
			{ID: 2, Company: "Globex", Position: "SRE", Status: "interview", CreatedAt: now},
		},
		"count": 2,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/jobs" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	setupCLI(t, srv)

	cmd := listJobsCmd()
	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "Acme") || !strings.Contains(out, "Globex") {
		t.Fatalf("expected companies in output, got: %s", out)
	}
	if !strings.Contains(out, "2 application(s)") {
		t.Fatalf("expected count line, got: %s", out)
	}
}

func TestCreateJob_SendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/v1/jobs" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if in["company"] != "Acme" || in["position"] != "Eng" {
			t.Fatalf("unexpected payload: %v", in)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"job": models.Job{ID: 42, Company: "Acme", Position: "Eng", Status: "pending"},
		})
	}))
	defer srv.Close()

	setupCLI(t, srv)

	cmd := createJobCmd()
	_ = cmd.Flags().Set("company", "Acme")
	_ = cmd.Flags().Set("position", "Eng")

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "Created job 42") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestGetJob_NotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := getJobCmd()
	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{"1"})
	})

	if !strings.Contains(out, "please login first") {
		t.Fatalf("expected login hint, got: %s", out)
	}
}
