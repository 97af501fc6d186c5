package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestAskCmd(t *testing.T) {
	var gotQuestion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ask" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Question string `json:"question"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotQuestion = body.Question

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"generated_sql":"SELECT 1","sql_results":[{"n":1}],"analysis":"one row"}`))
	}))
	defer srv.Close()

	cmd := rootCmd()
	cmd.SetArgs([]string{"--url", srv.URL, "ask", "--summary", "how many rows?"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if gotQuestion != "how many rows?" {
		t.Fatalf("expected question to be forwarded, got %q", gotQuestion)
	}
	for _, want := range []string{"SQL: SELECT 1", "Rows: 1", "Analysis: one row"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAskCmdSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"language model request failed","message":"quota exceeded"}`))
	}))
	defer srv.Close()

	cmd := rootCmd()
	cmd.SetArgs([]string{"--url", srv.URL, "ask", "anything"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestIngestCmdTransformsAfterLastFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "jan.xlsx")
	second := filepath.Join(dir, "feb.xls")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("workbook"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var (
		mu    sync.Mutex
		files []string
		skips []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file: %v", err)
			return
		}
		mu.Lock()
		files = append(files, header.Filename)
		skips = append(skips, r.URL.Query().Get("skip_transform"))
		mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"file":"` + header.Filename + `","rows":2}`))
	}))
	defer srv.Close()

	cmd := rootCmd()
	cmd.SetArgs([]string{"--url", srv.URL, "ingest", first, second})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if strings.Join(files, ",") != "jan.xlsx,feb.xls" {
		t.Fatalf("unexpected uploads %v", files)
	}
	if skips[0] != "true" || skips[1] != "" {
		t.Fatalf("expected transform only after last file, got %v", skips)
	}
	if strings.Count(out, `"rows": 2`) != 2 {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestIngestCmdMissingFile(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"--url", "http://127.0.0.1:0", "ingest", filepath.Join(t.TempDir(), "nope.xlsx")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTransformCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transform" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"run_id":"01J","rows":5}`))
	}))
	defer srv.Close()

	cmd := rootCmd()
	cmd.SetArgs([]string{"--url", srv.URL, "transform"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, `"run_id": "01J"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
