package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/ipcbench/internal/server"
)

type fileConfig struct {
	SocketPath      string `toml:"socket_path"`
	ServerName      string `toml:"server_name"`
	PartSizes       []int  `toml:"part_sizes"`
	WriteChunkBytes int    `toml:"write_chunk_bytes"`
}

func defaultServerConfig() server.Config {
	return server.Config{
		SocketPath: "/tmp/ipcbench.sock",
		ServerName: "benchsrv",
		PartSizes:  []int{1_000_000, 200_000},
	}
}

func loadServerConfig(path string) (server.Config, error) {
	cfg := defaultServerConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return server.Config{}, fmt.Errorf("load server config: %w", err)
	}

	if meta.IsDefined("socket_path") {
		p := strings.TrimSpace(raw.SocketPath)
		if p != "" {
			cfg.SocketPath = p
		}
	}
	if meta.IsDefined("server_name") {
		n := strings.TrimSpace(raw.ServerName)
		if n != "" {
			cfg.ServerName = n
		}
	}
	if meta.IsDefined("part_sizes") {
		if len(raw.PartSizes) == 0 {
			return server.Config{}, fmt.Errorf("part_sizes must not be empty")
		}
		for _, size := range raw.PartSizes {
			if size < 0 {
				return server.Config{}, fmt.Errorf("part size must not be negative, got %d", size)
			}
		}
		cfg.PartSizes = raw.PartSizes
	}
	if meta.IsDefined("write_chunk_bytes") {
		if raw.WriteChunkBytes < 0 {
			return server.Config{}, fmt.Errorf("write_chunk_bytes must not be negative, got %d", raw.WriteChunkBytes)
		}
		cfg.ChunkBytes = raw.WriteChunkBytes
	}
	return cfg, nil
}
