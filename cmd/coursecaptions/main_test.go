package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"coursecaptions/internal/config"
	"coursecaptions/internal/testsupport"
)

const lectureVTT = "WEBVTT\n\n00:00.000 --> 00:01.000\nHello\n\n00:01.000 --> 00:02.000\nWorld\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLITestEnv writes a config pointing at fake course and Google hosts.
// captions maps caption file names to their content; missing names 404.
func setupCLITestEnv(t *testing.T, captions map[string]string, members ...string) *cliTestEnv {
	t.Helper()

	files := make(map[string]string, len(members))
	for _, member := range members {
		files[member] = "transcript"
	}
	archive := testsupport.ZipArchive(t, files)
	courseHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/go-basics/")
		if name == "transcripts.zip" {
			_, _ = w.Write(archive)
			return
		}
		if caption, ok := captions[name]; ok {
			_, _ = w.Write([]byte(caption))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(courseHost.Close)

	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		parts := make([]string, 0, len(r.Form["q"]))
		for _, text := range r.Form["q"] {
			parts = append(parts, `{"translatedText":"`+strings.ToUpper(text)+`"}`)
		}
		_, _ = w.Write([]byte(`{"data":{"translations":[` + strings.Join(parts, ",") + `]}}`))
	}))
	t.Cleanup(google.Close)

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t,
		testsupport.WithSourceURL(courseHost.URL),
		testsupport.WithGoogleURL(google.URL),
	)
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRootCommandShowsHelp(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, out, "translate-file")
}

func TestLanguagesCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"languages"}, "")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	requireContains(t, out, "Spanish")
	requireContains(t, out, "es")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Provider: google")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "target_language")
	requireContains(t, out, "****")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestTranslateAndStatus(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"01-intro.vtt": lectureVTT}, "01-intro.txt")

	out, _, err := runCLI(t, []string{"translate", "go-basics"}, env.configPath)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	requireContains(t, out, "Translated 1, skipped 0, failed 0 of 1 lectures")

	data, err := os.ReadFile(filepath.Join(env.cfg.CaptionDir("go-basics"), "01-intro.es.srt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	requireContains(t, string(data), "HELLO")

	out, _, err = runCLI(t, []string{"translate", "go-basics"}, env.configPath)
	if err != nil {
		t.Fatalf("second translate: %v", err)
	}
	requireContains(t, out, "skipped 1")

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "go-basics")

	out, _, err = runCLI(t, []string{"status", "go-basics"}, env.configPath)
	if err != nil {
		t.Fatalf("status course: %v", err)
	}
	requireContains(t, out, "01-intro.txt")
	requireContains(t, out, "skipped")
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"status", "go-basics", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status json: %v", err)
	}
	requireContains(t, out, `"member": "01-intro.txt"`)
}

func TestTranslateReportsFailedLectures(t *testing.T) {
	env := setupCLITestEnv(t, nil, "01-intro.txt")

	out, _, err := runCLI(t, []string{"translate", "go-basics", "--json"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 lectures failed") {
		t.Fatalf("expected failure count error, got %v", err)
	}
	requireContains(t, out, `"kind": "not_found"`)
}

func TestTranslateRejectsUnknownProvider(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	_, _, err := runCLI(t, []string{"translate", "go-basics", "--provider", "deepl"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "translation.provider") {
		t.Fatalf("expected provider validation error, got %v", err)
	}
}

func TestTranslateRejectsConcurrencyOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	for _, value := range []string{"0", "65"} {
		_, _, err := runCLI(t, []string{"translate", "go-basics", "--concurrency", value}, env.configPath)
		if err == nil || !strings.Contains(err.Error(), "--concurrency must be between 1 and 64") {
			t.Fatalf("expected concurrency validation error for %s, got %v", value, err)
		}
	}
}

func TestTranslateFileCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	input := filepath.Join(t.TempDir(), "lesson.vtt")
	if err := os.WriteFile(input, []byte(lectureVTT), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := runCLI(t, []string{"translate-file", input, "--target", "fr"}, env.configPath)
	if err != nil {
		t.Fatalf("translate-file: %v", err)
	}
	requireContains(t, out, "Wrote 2 cues (fr)")
	data, err := os.ReadFile(strings.TrimSuffix(input, ".vtt") + ".fr.srt")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	requireContains(t, string(data), "00:00:01,000 --> 00:00:02,000\nWORLD")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Google Translate:")
	requireContains(t, out, "[OK]")

	env.cfg.Google.APIKey = ""
	t.Setenv("GOOGLE_TRANSLATE_API_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail without an api key")
	}
	requireContains(t, out, "[FAIL]")
}

func TestTestNotifyCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify without topic: %v", err)
	}
	requireContains(t, out, "Notifications disabled")

	var titles []string
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		titles = append(titles, r.Header.Get("Title"))
	}))
	defer ntfy.Close()
	env.cfg.Notifications.NtfyTopic = ntfy.URL + "/coursecaptions"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err = runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if len(titles) != 1 || titles[0] != "coursecaptions test" {
		t.Fatalf("unexpected ntfy requests %v", titles)
	}
}

func TestLogsCommandFiltersByCourse(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	logPath := filepath.Join(env.cfg.Paths.LogDir, "coursecaptions.log")
	content := `{"level":"INFO","msg":"course run started","course":"go-basics"}
{"level":"INFO","msg":"course run started","course":"rust-intro"}
{"level":"WARN","msg":"course run finished with failures","course":"go-basics"}
`
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--course", "go-basics", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "course run finished with failures")
	if strings.Contains(out, "rust-intro") || strings.Count(out, "\n") != 1 {
		t.Fatalf("unexpected logs output %q", out)
	}
}
