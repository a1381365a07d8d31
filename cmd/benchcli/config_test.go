package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClientConfigDefaults(t *testing.T) {
	cfg, err := loadClientConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Bench.SocketPath != "/tmp/ipcbench.sock" {
		t.Fatalf("unexpected socket path: %q", cfg.Bench.SocketPath)
	}
	if cfg.Bench.Iterations != 100 || cfg.Bench.Warmup != 3 {
		t.Fatalf("unexpected run counts: %+v", cfg.Bench)
	}
	if cfg.Bench.Limits.MaxSegments == 0 {
		t.Fatalf("limits not defaulted: %+v", cfg.Bench.Limits)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
}

func TestLoadClientConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
socket_path = "/run/bench.sock"
client_name = "lab-a"
iterations = 7
warmup = 0
metrics_addr = "127.0.0.1:9901"
max_segments = 8
`)
	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Bench.SocketPath != "/run/bench.sock" {
		t.Fatalf("unexpected socket path: %q", cfg.Bench.SocketPath)
	}
	if cfg.Bench.ClientName != "lab-a" {
		t.Fatalf("unexpected client name: %q", cfg.Bench.ClientName)
	}
	if cfg.Bench.Iterations != 7 || cfg.Bench.Warmup != 0 {
		t.Fatalf("unexpected run counts: %+v", cfg.Bench)
	}
	if cfg.MetricsAddr != "127.0.0.1:9901" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
	if cfg.Bench.Limits.MaxSegments != 8 {
		t.Fatalf("unexpected max segments: %d", cfg.Bench.Limits.MaxSegments)
	}
	if cfg.Bench.Limits.MaxSegmentBytes == 0 {
		t.Fatalf("unrelated limit lost its default")
	}
}

func TestLoadClientConfigRejectsBadIterations(t *testing.T) {
	path := writeConfig(t, `iterations = 0`)
	if _, err := loadClientConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
