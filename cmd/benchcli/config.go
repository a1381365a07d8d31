package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/ipcbench/internal/bench"
	"github.com/danmuck/ipcbench/internal/protocol"
)

type fileConfig struct {
	SocketPath      string `toml:"socket_path"`
	ClientName      string `toml:"client_name"`
	Iterations      int    `toml:"iterations"`
	Warmup          int    `toml:"warmup"`
	MetricsAddr     string `toml:"metrics_addr"`
	MaxSegments     uint64 `toml:"max_segments"`
	MaxSegmentBytes uint64 `toml:"max_segment_bytes"`
}

type clientConfig struct {
	Bench       bench.Config
	MetricsAddr string
}

func defaultClientConfig() clientConfig {
	cfg := clientConfig{}
	cfg.Bench.SocketPath = "/tmp/ipcbench.sock"
	cfg.Bench.ClientName = "benchcli"
	cfg.Bench.Iterations = 100
	cfg.Bench.Warmup = 3
	cfg.Bench.Limits = protocol.DefaultLimits()
	return cfg
}

func loadClientConfig(path string) (clientConfig, error) {
	cfg := defaultClientConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return clientConfig{}, fmt.Errorf("load client config: %w", err)
	}

	if meta.IsDefined("socket_path") {
		p := strings.TrimSpace(raw.SocketPath)
		if p != "" {
			cfg.Bench.SocketPath = p
		}
	}
	if meta.IsDefined("client_name") {
		n := strings.TrimSpace(raw.ClientName)
		if n != "" {
			cfg.Bench.ClientName = n
		}
	}
	if meta.IsDefined("iterations") {
		if raw.Iterations <= 0 {
			return clientConfig{}, fmt.Errorf("iterations must be positive, got %d", raw.Iterations)
		}
		cfg.Bench.Iterations = raw.Iterations
	}
	if meta.IsDefined("warmup") {
		if raw.Warmup < 0 {
			return clientConfig{}, fmt.Errorf("warmup must not be negative, got %d", raw.Warmup)
		}
		cfg.Bench.Warmup = raw.Warmup
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("max_segments") {
		cfg.Bench.Limits.MaxSegments = raw.MaxSegments
	}
	if meta.IsDefined("max_segment_bytes") {
		cfg.Bench.Limits.MaxSegmentBytes = raw.MaxSegmentBytes
	}
	return cfg, nil
}
