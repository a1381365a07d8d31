package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/ipcbench/internal/bench"
	"github.com/danmuck/ipcbench/internal/logging"
	"github.com/danmuck/ipcbench/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to a toml config file")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := loadClientConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchcli: %v\n", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		observability.RegisterMetrics()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "benchcli: metrics listener: %v\n", err)
			}
		}()
	}

	runner, err := bench.NewRunner(cfg.Bench)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchcli: %v\n", err)
		os.Exit(1)
	}
	sum, err := runner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchcli: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("exchanges: %d\n", sum.Count)
	fmt.Printf("rtt min/mean/max: %v / %v / %v\n", sum.Min, sum.Mean, sum.Max)
	fmt.Printf("payload: %d bytes in %d segments\n", sum.TotalBytes, sum.Segments)
}
