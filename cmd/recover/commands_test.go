package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/internal/config"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRepairCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"stdin", `{"a": "hel`, []string{"repair"}, `{"a": "hel"}`},
		{"dash reads stdin", `[1, [2` + "\n", []string{"repair", "-"}, `[1, [2]]` + "\n"},
		{"valid input unchanged", `{"ok": true}`, []string{"repair"}, `{"ok": true}`},
		{"crlf kept after the repair", `{"a": [1` + "\r\n", []string{"repair"}, `{"a": [1]}` + "\r\n"},
		{"string cut at a newline", `{"a": "line` + "\n", []string{"repair"}, `{"a": "line"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("repair error = %v", err)
			}
			if got != tt.want {
				t.Errorf("repair output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepairCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.txt")
	if err := os.WriteFile(path, []byte(`{"questions": [{"q": "Define osm`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, _, err := run(t, "", "repair", path)
	if err != nil {
		t.Fatalf("repair error = %v", err)
	}
	if want := `{"questions": [{"q": "Define osm"}]}`; got != want {
		t.Errorf("repair output = %q, want %q", got, want)
	}

	if _, _, err := run(t, "", "repair", filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for a missing file, got %v", err)
	}
}

func TestRepairCommand_WellFormedFileRoundTrips(t *testing.T) {
	content := "{\n  \"title\": \"Term 1\",\n  \"marks\": [10, 20]\n}\n"
	path := filepath.Join(t.TempDir(), "paper.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, _, err := run(t, "", "repair", path)
	if err != nil {
		t.Fatalf("repair error = %v", err)
	}
	if diff := cmp.Diff(content, got); diff != "" {
		t.Errorf("repair changed a well-formed file (-want +got):\n%s", diff)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		want        interface{}
		wantOutcome string
	}{
		{"strict", `{"a": 1}`, []string{"parse"}, map[string]interface{}{"a": 1.0}, "strict"},
		{"repaired", `{"a": [1, 2`, []string{"parse"}, map[string]interface{}{"a": []interface{}{1.0, 2.0}}, "repaired"},
		{"fallback", `nope`, []string{"parse", "--fallback", `{"empty": true}`}, map[string]interface{}{"empty": true}, "failed"},
		{"default fallback is null", `nope`, []string{"parse"}, nil, "failed"},
		{"lenient", `{a: 'b', // note` + "\n" + `}`, []string{"parse", "--lenient"}, map[string]interface{}{"a": "b"}, "lenient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("parse error = %v", err)
			}
			var got interface{}
			if err := json.Unmarshal([]byte(stdout), &got); err != nil {
				t.Fatalf("output is not JSON: %q", stdout)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse mismatch (-want +got):\n%s", diff)
			}
			if !strings.Contains(stderr, "outcome: "+tt.wantOutcome) {
				t.Errorf("stderr = %q, want outcome %s", stderr, tt.wantOutcome)
			}
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	if _, _, err := run(t, `{}`, "parse", "--fallback", `{bad`); err == nil {
		t.Error("expected error for an invalid --fallback")
	}
	if _, _, err := run(t, `{}`, "parse", "a.txt", "b.txt"); err == nil {
		t.Error("expected error for more than one file")
	}
}

func TestBuildGenerator(t *testing.T) {
	if _, err := buildGenerator(&config.Config{}, nil); !errors.Is(err, config.ErrNotConfigured) {
		t.Errorf("buildGenerator() without keys error = %v, want ErrNotConfigured", err)
	}

	generator, err := buildGenerator(&config.Config{
		APIKeys:         []string{"k1", "k2"},
		Models:          []string{"gemini-2.0-flash"},
		BaseURL:         "http://127.0.0.1:0",
		MaxOutputTokens: 1024,
		Timeout:         time.Minute,
	}, nil)
	if err != nil {
		t.Fatalf("buildGenerator() error = %v", err)
	}
	if generator == nil {
		t.Fatal("expected a generator")
	}
}

func TestBuildGenerator_RetriesStreamRefusedOnce(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	var keys []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get("x-goog-api-key"))
		mu.Unlock()
		if !strings.HasSuffix(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, `{"error": {"code": 503, "status": "UNAVAILABLE"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"candidates": [{"content": {"parts": [{"text": "{\"title\": \"Term 2\"}"}]}, "finishReason": "STOP"}]}` + "\n\n"))
	}))
	defer upstream.Close()

	generator, err := buildGenerator(&config.Config{
		APIKeys:         []string{"only-key"},
		Models:          []string{"gemini-2.0-flash"},
		BaseURL:         upstream.URL,
		MaxOutputTokens: 256,
		Timeout:         time.Minute,
	}, nil)
	if err != nil {
		t.Fatalf("buildGenerator() error = %v", err)
	}

	type paper struct {
		Title string `json:"title"`
	}
	got, response, err := client.GenerateStructured(context.Background(), generator, "make a paper", paper{Title: "fallback"})
	if err != nil {
		t.Fatalf("GenerateStructured() error = %v", err)
	}
	if got.Title != "Term 2" {
		t.Errorf("Title = %q, want the retried stream's value", got.Title)
	}
	if response.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", response.FinishReason)
	}
	if calls.Load() != 2 {
		t.Errorf("upstream calls = %d, want 2 (one refusal, one retry)", calls.Load())
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"only-key", "only-key"}, keys); diff != "" {
		t.Errorf("API keys sent (-want +got):\n%s", diff)
	}
}
