package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/kvsd/pkg/config"
	"github.com/cuemby/kvsd/pkg/events"
	"github.com/cuemby/kvsd/pkg/interpreter"
	"github.com/cuemby/kvsd/pkg/job"
	"github.com/cuemby/kvsd/pkg/kvstore"
	"github.com/cuemby/kvsd/pkg/log"
	"github.com/cuemby/kvsd/pkg/metrics"
	"github.com/cuemby/kvsd/pkg/pool"
	"github.com/cuemby/kvsd/pkg/snapshot"
	"github.com/cuemby/kvsd/pkg/walker"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kvsd [dir] [max_backups] [max_threads]",
	Short: "kvsd - a concurrent in-memory key-value store driven by a command language",
	Long: `kvsd runs either interactively, reading commands from standard input, or
as a batch processor over a directory of .job files, each producing a
companion .out file and, on BACKUP, numbered .bck snapshot files.`,
	Args: cobra.MaximumNArgs(3),
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Address to serve Prometheus metrics on (disabled if empty)")
	rootCmd.PersistentFlags().String("config", "", "Optional YAML file with default dir/max_backups/max_threads/metrics_addr settings (its log_level and log_json are not applied)")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr)
	}

	store := kvstore.New()
	metrics.RegisterComponent("store", true, "")
	collector := metrics.NewCollector(store)
	collector.Start()
	defer collector.Stop()

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	snapMgr := snapshot.NewManager(log.WithComponent("snapshot"), broker)

	if cfg.Dir == "" {
		return runInteractive(store, snapMgr)
	}
	return runBatch(cfg, store, snapMgr, broker)
}

// resolveConfig merges an optional --config file with positional
// arguments, which always win: `kvsd` (interactive), `kvsd <dir>
// <max_backups>` (one worker), or `kvsd <dir> <max_backups>
// <max_threads>`.
func resolveConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	var base config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("kvsd: %w", err)
		}
		base = loaded
	}

	override := config.Config{}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		override.LogLevel = level
	}
	if json, _ := cmd.Flags().GetBool("log-json"); json {
		override.LogJSON = json
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		override.MetricsAddr = addr
	}

	switch len(args) {
	case 0:
		// interactive mode; positional args are optional.
	case 2, 3:
		override.Dir = args[0]
		maxBackups, err := parsePositiveInt(args[1], "max_backups")
		if err != nil {
			return config.Config{}, err
		}
		override.MaxBackups = maxBackups

		if len(args) == 3 {
			maxThreads, err := parsePositiveInt(args[2], "max_threads")
			if err != nil {
				return config.Config{}, err
			}
			override.MaxThreads = maxThreads
		}
	default:
		return config.Config{}, fmt.Errorf("kvsd: usage: kvsd [dir max_backups [max_threads]]")
	}

	merged := config.Merge(base, override)
	if merged.MaxThreads == 0 {
		merged.MaxThreads = 1
	}
	return merged, nil
}

func parsePositiveInt(s, name string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("kvsd: %s must be a positive integer, got %q", name, s)
	}
	return n, nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}

func runInteractive(store *kvstore.Store, snapMgr *snapshot.Manager) error {
	ip := &interpreter.Interpreter{
		Store:       store,
		Backups:     snapMgr,
		JobName:     "interactive",
		MaxBackups:  1,
		Diagnostics: log.WithComponent("interpreter"),
	}

	in := bufio.NewReader(os.Stdin)
	out := os.Stdout
	for {
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if line != "" {
			if runErr := ip.Run(strings.NewReader(line), out); runErr != nil {
				return runErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("kvsd: read stdin: %w", err)
		}
	}
}

func runBatch(cfg config.Config, store *kvstore.Store, snapMgr *snapshot.Manager, broker *events.Broker) error {
	diagnostics := log.WithComponent("pool")

	jobPaths, err := walker.List(cfg.Dir, diagnostics)
	if err != nil {
		return fmt.Errorf("kvsd: %w", err)
	}
	if len(jobPaths) == 0 {
		diagnostics.Warn().Str("dir", cfg.Dir).Msg("no .job files found in directory")
		return nil
	}

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)
	go func() {
		for evt := range sub {
			if evt.Type == events.EventJobCompleted {
				fmt.Printf("completed %s -> %s\n", evt.JobName, evt.Message)
			}
		}
	}()

	run := func(path string) error {
		r := &job.Runner{
			Store:       store,
			Backups:     snapMgr,
			MaxBackups:  cfg.MaxBackups,
			Diagnostics: log.WithJob(path),
			Broker:      broker,
		}
		return r.Run(path)
	}

	p := pool.New(cfg.MaxThreads, run, diagnostics)
	p.Run(jobPaths)

	var completed, failed int
	for _, path := range jobPaths {
		_, c, f := broker.Outcome(path)
		completed += c
		failed += f
	}
	fmt.Printf("%d job(s) completed, %d failed\n", completed, failed)
	return nil
}
