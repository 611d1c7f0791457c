package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dexrun/internal/sorter"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("DEXRUN_SERVER", "")
	t.Setenv("DEXRUN_LOCALE", "")
	t.Setenv("DEXRUN_LOG", "")

	dir := t.TempDir()
	c, err := parseConfig("test", nil, dir)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if c.ServerURL != DefaultServerURL || c.serverPinned {
		t.Errorf("ServerURL = %q pinned=%v", c.ServerURL, c.serverPinned)
	}
	if c.Locale != "en" {
		t.Errorf("Locale = %q", c.Locale)
	}
	if !c.Live {
		t.Error("Live should default on")
	}
	if c.DBPath != filepath.Join(dir, "dexrun.db") {
		t.Errorf("DBPath = %q", c.DBPath)
	}
	if c.InitialSort != nil {
		t.Errorf("InitialSort = %v, want nil", *c.InitialSort)
	}
}

func TestParseConfigFlagsAndEnv(t *testing.T) {
	t.Setenv("DEXRUN_SERVER", "http://env:5000")
	t.Setenv("DEXRUN_LOCALE", "sv")
	t.Setenv("DEXRUN_LOG", "/tmp/dexrun.log")

	tests := []struct {
		name       string
		args       []string
		wantServer string
		wantLocale string
		wantSort   *sorter.Column
	}{
		{"env", nil, "http://env:5000", "sv", nil},
		{"flags win", []string{"-server", "http://flag:1", "-locale", "de", "-sort", "count"}, "http://flag:1", "de", ptr(sorter.ColumnCount)},
		{"sort by number", []string{"-sort", "2"}, "http://env:5000", "sv", ptr(sorter.ColumnName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseConfig("test", tt.args, t.TempDir())
			if err != nil {
				t.Fatalf("parseConfig() error = %v", err)
			}
			if c.ServerURL != tt.wantServer || !c.serverPinned {
				t.Errorf("ServerURL = %q pinned=%v, want %q", c.ServerURL, c.serverPinned, tt.wantServer)
			}
			if c.Locale != tt.wantLocale {
				t.Errorf("Locale = %q, want %q", c.Locale, tt.wantLocale)
			}
			if c.LogPath != "/tmp/dexrun.log" {
				t.Errorf("LogPath = %q", c.LogPath)
			}
			if (c.InitialSort == nil) != (tt.wantSort == nil) || (c.InitialSort != nil && *c.InitialSort != *tt.wantSort) {
				t.Errorf("InitialSort = %v, want %v", c.InitialSort, tt.wantSort)
			}
		})
	}
}

func TestParseConfigRejectsUnknownSort(t *testing.T) {
	_, err := parseConfig("test", []string{"-sort", "level"}, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "invalid -sort") {
		t.Fatalf("err = %v, want invalid -sort", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nDEXRUN_TEST_A=\"quoted\"\nDEXRUN_TEST_B = plain\nnot a pair\nDEXRUN_TEST_C=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEXRUN_TEST_A", "")
	t.Setenv("DEXRUN_TEST_B", "")
	t.Setenv("DEXRUN_TEST_C", "already-set")

	loadDotEnv(path)

	if got := os.Getenv("DEXRUN_TEST_A"); got != "quoted" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("DEXRUN_TEST_B"); got != "plain" {
		t.Errorf("B = %q", got)
	}
	if got := os.Getenv("DEXRUN_TEST_C"); got != "already-set" {
		t.Errorf("C = %q, env should win over .env", got)
	}
}

func TestOnboardingSettingsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	got, err := loadOnboardingSettings(dir)
	if err != nil || got.Completed {
		t.Fatalf("missing file: %+v, %v", got, err)
	}

	want := OnboardingSettings{Completed: true, ServerURL: "http://pi.local:5000"}
	if err := saveOnboardingSettings(dir, want); err != nil {
		t.Fatal(err)
	}
	got, err = loadOnboardingSettings(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestValidateServerURL(t *testing.T) {
	for _, ok := range []string{"http://localhost:5000", "https://tracker.example.com"} {
		if err := validateServerURL(ok); err != nil {
			t.Errorf("validateServerURL(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"localhost:5000", "ftp://x", "http://"} {
		if err := validateServerURL(bad); err == nil {
			t.Errorf("validateServerURL(%q) accepted", bad)
		}
	}
}

func ptr[T any](v T) *T { return &v }
