package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/csheth/souljournal/internal/tuitest"
)

func TestSoulJournalSubmitsAndPersists(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary and drives it in a pty")
	}

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sentiment":   "POSITIVE",
			"summary":     "Sunlight lifted the day.",
			"prompt":      "Where else did you find warmth?",
			"key_phrases": []string{"sunshine"},
		})
	}))
	defer server.Close()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	home := t.TempDir()
	dataDir := filepath.Join(home, "journal")

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--data-dir", dataDir, "--endpoint", server.URL},
		Dir:     cmdDir,
		Env:     []string{"HOME=" + home},
		Width:   100,
		Height:  40,
		Steps: []tuitest.Step{
			tuitest.Await("Today's Entry"),
			tuitest.Press(tuitest.KeyCtrlS),
			tuitest.Await("Please write something first."),
			tuitest.Type("Grateful for sunshine"),
			tuitest.Await("21/5000"),
			tuitest.Press(tuitest.KeyCtrlS),
			tuitest.Await("Sunlight lifted the day."),
			tuitest.Press(tuitest.KeyCtrlS),
			tuitest.Await("before submitting again."),
			tuitest.Press(tuitest.KeyCtrlC),
		},
		Timeout:        20 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if !rec.Contains("Grateful for sunshine...") {
		t.Fatalf("history preview never rendered:\n%s", rec.Plain())
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected exactly one analysis request, got %d", got)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "journal_entries.json"))
	if err != nil {
		t.Fatalf("history not persisted: %v", err)
	}
	var history []map[string]any
	if err := json.Unmarshal(data, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0]["entry"] != "Grateful for sunshine" {
		t.Fatalf("unexpected history: %s", data)
	}

	logData, err := os.ReadFile(filepath.Join(dataDir, "souljournal.log"))
	if err != nil {
		t.Fatalf("log not written: %v", err)
	}
	if !strings.Contains(string(logData), "[jobs] succeeded") {
		t.Fatalf("job lifecycle missing from log:\n%s", logData)
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "souljournal-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
