// Command swimmer-bench runs pool workload scenarios and reports throughput,
// pool statistics, and process memory usage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/caelunshun/swimmer/internal/workload"
	"github.com/caelunshun/swimmer/pkg/jsonpool"
	"github.com/caelunshun/swimmer/pkg/logger"
)

var version = "0.1.0"

func main() {
	var configFile, logLevel string

	root := &cobra.Command{
		Use:   "swimmer-bench",
		Short: "Benchmark harness for swimmer object pools",
		Long: `swimmer-bench runs configurable checkout/return workloads against swimmer
pools and reports throughput, hit rates, and memory usage. Scenarios come
from a YAML config file or from flags for one-off runs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: logLevel, Encoding: "console"})
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to scenario config file (YAML)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(versionCmd())
	root.AddCommand(runCmd(&configFile))
	root.AddCommand(configCmd(&configFile))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("swimmer-bench v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func runCmd(configFile *string) *cobra.Command {
	flags := workload.DefaultConfig()
	var output string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run workload scenarios",
		Long: `Run the scenarios from the config file, or a single scenario built from
flags when no config file is given. Results are printed as JSON, or written
to a file with --output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := loadScenarios(*configFile, flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logger.Get()
			results := make([]*workload.Result, 0, len(scenarios))
			for _, cfg := range scenarios {
				result, err := workload.Run(ctx, cfg, log)
				if err != nil {
					return fmt.Errorf("scenario %q: %w", cfg.Name, err)
				}
				results = append(results, result)
			}
			return writeReport(results, output)
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "write the JSON report to this file instead of stdout")
	cmd.Flags().IntVar(&flags.Goroutines, "goroutines", flags.Goroutines, "concurrent workers")
	cmd.Flags().IntVar(&flags.Cycles, "cycles", flags.Cycles, "checkout/return cycles per worker")
	cmd.Flags().IntVar(&flags.PayloadBytes, "payload-bytes", flags.PayloadBytes, "size of each pooled buffer")
	cmd.Flags().IntVar(&flags.StartingSize, "starting-size", flags.StartingSize, "values to pre-populate")
	cmd.Flags().IntVar(&flags.LocalCapacity, "local-capacity", flags.LocalCapacity, "per-worker unsynchronized cache size (0 disables)")
	cmd.Flags().IntVar(&flags.LockFreeStore, "lock-free-store", flags.LockFreeStore, "lock-free shared store capacity (0 uses the mutex store)")
	return cmd
}

func configCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective scenario configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := loadScenarios(*configFile, workload.DefaultConfig())
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(map[string]any{"scenarios": scenarios})
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

// loadScenarios reads scenarios from the config file, or falls back to the
// single flag-built scenario when no file is given.
func loadScenarios(configFile string, fallback workload.Config) ([]workload.Config, error) {
	if configFile == "" {
		return []workload.Config{fallback}, nil
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("SWIMMER")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configFile, err)
	}

	var scenarios []workload.Config
	if err := v.UnmarshalKey("scenarios", &scenarios); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", configFile, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("config %s defines no scenarios", configFile)
	}
	for i := range scenarios {
		if err := scenarios[i].Validate(); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

func writeReport(results []*workload.Result, output string) error {
	data, err := jsonpool.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("report written", zap.String("path", output))
	return nil
}
