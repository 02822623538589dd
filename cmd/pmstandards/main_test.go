package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		seedFixture, seedReset, logLevel = "", false, ""
		if f := rootCmd.Flags().Lookup("version"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeedCommand(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	t.Setenv("PMSTD_STORE_URL", "redis://"+mr.Addr()+"/0")
	t.Setenv("PMSTD_PRETTY_LOG", "false")
	t.Setenv("REDIS_CONNECT_TIMEOUT", "1s")

	fixture := filepath.Join(dir, "pm_data.json")
	data := `{"topics": {"risk_management": {"title": "Risk"}}, "scenarios": {}}`
	if err := os.WriteFile(fixture, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	envFile := filepath.Join(dir, "missing.env")

	out, err := execute(t, "seed", "--env-file", envFile, "--log-level", "error", "--fixture", fixture)
	if err != nil {
		t.Fatalf("seed error = %v (output %q)", err, out)
	}
	if !strings.Contains(out, "topics:    1 created, 0 updated, 0 unchanged") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "seed", "--env-file", envFile, "--log-level", "error", "--fixture", fixture)
	if err != nil {
		t.Fatalf("second seed error = %v", err)
	}
	if !strings.Contains(out, "topics:    0 created, 0 updated, 1 unchanged") {
		t.Errorf("second run output = %q", out)
	}
}

func TestSeedCommandMissingFixture(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	t.Setenv("PMSTD_STORE_URL", "redis://"+mr.Addr()+"/0")

	_, err := execute(t, "seed", "--env-file", filepath.Join(dir, ".env"), "--log-level", "error",
		"--fixture", filepath.Join(dir, "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "no fixture at") {
		t.Errorf("seed error = %v, want missing fixture", err)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	_, err := execute(t, "seed", "--env-file", filepath.Join(t.TempDir(), ".env"), "--log-level", "verbose")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if !strings.Contains(out, "version dev (commit=none") {
		t.Errorf("output = %q", out)
	}
}
