package config

import (
	"os"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		"VOLUMED_PORT",
		"VOLUMED_BIND",
		"VOLUMED_DEVICE",
		"VOLUMED_LOG_LEVEL",
		"VOLUMED_STATE_FILE",
	} {
		t.Setenv(e, "")
		os.Unsetenv(e)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	origArgs := os.Args
	os.Args = []string{"volumed"}
	defer func() { os.Args = origArgs }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Port != 8080 || cfg.BindAddr != "0.0.0.0" || cfg.Device != "auto" ||
		cfg.LogLevel != "info" || cfg.StateFile != "/var/lib/alsa/asound.state" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOLUMED_PORT", "1234")
	t.Setenv("VOLUMED_BIND", "127.0.0.1")
	t.Setenv("VOLUMED_DEVICE", "hw:1")
	t.Setenv("VOLUMED_LOG_LEVEL", "debug")
	origArgs := os.Args
	os.Args = []string{"volumed"}
	defer func() { os.Args = origArgs }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Port != 1234 || cfg.BindAddr != "127.0.0.1" || cfg.Device != "hw:1" || cfg.LogLevel != "debug" {
		t.Fatalf("env override failed: %+v", cfg)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOLUMED_PORT", "1111")
	t.Setenv("VOLUMED_DEVICE", "hw:1")
	origArgs := os.Args
	os.Args = []string{"volumed", "--port", "9090", "--device", "hw:2", "--log-level", "error"}
	defer func() { os.Args = origArgs }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Port != 9090 || cfg.Device != "hw:2" || cfg.LogLevel != "error" {
		t.Fatalf("flag override failed: %+v", cfg)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VOLUMED_PORT", "not-a-port")
	origArgs := os.Args
	os.Args = []string{"volumed"}
	defer func() { os.Args = origArgs }()

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid VOLUMED_PORT")
	}
}

func TestHelpText(t *testing.T) {
	help := HelpText()
	for _, want := range []string{"-port", "-bind", "-device", "-log-level", "-state-file"} {
		if !strings.Contains(help, want) {
			t.Errorf("HelpText() missing %q:\n%s", want, help)
		}
	}
}
