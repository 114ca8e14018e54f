package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vegasq/columnql/config"
	"github.com/vegasq/columnql/internal/logger"
)

var (
	configFlag   string
	dataDirFlag  string
	formatFlag   string
	mappingFlag  string
	logLevelFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "columnql",
	Short: "Query parquet-backed column families",
	Long: `columnql loads parquet files into column families and runs
select and delete statements against them.

Every *.parquet file in the data directory becomes a family named after
the file, so data/God.parquet is queried as:

  columnql query "select name, age from God where age > 10 order by age desc"`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "config file (default ./columnql.yaml when present)")
	flags.StringVarP(&dataDirFlag, "data-dir", "d", "", "directory of parquet files to load")
	flags.StringVarP(&formatFlag, "format", "f", "", "output format: json, csv, table")
	flags.StringVar(&mappingFlag, "mapping", "", "YAML file mapping entity and field names")
	flags.StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	rootCmd.AddCommand(queryCmd, prepareCmd, shellCmd, schemaCmd)
}

// setup loads configuration, applies flag overrides and starts logging
// and metrics
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	if dataDirFlag != "" {
		loaded.Data.Dir = dataDirFlag
	}
	if formatFlag != "" {
		loaded.Output.Format = formatFlag
	}
	if mappingFlag != "" {
		loaded.Mapping.File = mappingFlag
	}
	if logLevelFlag != "" {
		loaded.Log.Level = logLevelFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger.Init(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.Source,
	})

	if cfg.Metrics.Enabled {
		serveMetrics(cfg.Metrics.Addr)
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
}

// shutdownSignals cancel the command context
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
