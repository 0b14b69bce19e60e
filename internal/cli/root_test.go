package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := NewRootCommandWithIO(strings.NewReader(""), out, out)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigCommandRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	if _, err := execute(t, "config", "set", "ui.poll_interval", "5s"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	out, err := execute(t, "config", "get", "ui.poll_interval")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if strings.TrimSpace(out) != "5s" {
		t.Fatalf("unexpected config get output: %q", out)
	}
}

func TestConfigSetRejectsBadValue(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := execute(t, "config", "set", "ui.theme", "neon"); err == nil {
		t.Fatal("expected invalid theme to fail")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "stewardagent") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestEventsCommandRendersTable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[
			{"event_type":"rule_breached","entity_id":"R_001","timestamp":"2026-01-02T10:00:00","explanation":"DQ rule breached on stg_loan_applications.verified_income"},
			{"event_type":"risk_assessed","entity_id":"BT_001","timestamp":"2026-01-02T10:00:05"}
		]`))
	}))
	defer srv.Close()

	out, err := execute(t, "events", "--server", srv.URL)
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	for _, want := range []string{"rule_breached", "R_001", "risk_assessed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEventsCommandTypeFilter(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"event_type":"rule_breached","entity_id":"R_001"},
			{"event_type":"risk_assessed","entity_id":"BT_001"}
		]`))
	}))
	defer srv.Close()

	out, err := execute(t, "events", "--server", srv.URL, "--type", "risk_assessed")
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	if strings.Contains(out, "rule_breached") {
		t.Fatalf("expected rule_breached filtered out, got:\n%s", out)
	}
}

func TestInvestigationsCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/investigations" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[
			{"id":"inv-1","focus_term":"BT_001","start_time":"2026-01-02T10:00:00",
			 "events":[
			   {"event_type":"rule_breached","entity_id":"R_001","entity_name":"Income positive check"},
			   {"event_type":"risk_assessed","entity_id":"BT_001","metrics":{"risk_score":0.47}}
			 ]}
		]`))
	}))
	defer srv.Close()

	out, err := execute(t, "investigations", "--server", srv.URL)
	if err != nil {
		t.Fatalf("investigations failed: %v", err)
	}
	for _, want := range []string{"BT_001", "Income positive check", "0.47", "Scanning"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestApproveCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{"status":"approved"}`))
	}))
	defer srv.Close()

	if _, err := execute(t, "approve", "pr-007", "--server", srv.URL); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/approve_pr/pr-007" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}
