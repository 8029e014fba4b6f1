package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/config"
	"github.com/rezonia/cfdi-reader/internal/logging"
)

var (
	version = "1.0.0"

	// Global flags
	cfgFile string
	verbose bool

	v           = viper.New()
	cfg         *config.Config
	logger      = zap.NewNop()
	closeLogger = func() {}
)

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"log-format":    "log.format",
	"log-file":      "log.output_path",
	"format":        "read.format",
	"concurrency":   "read.concurrency",
	"address":       "server.address",
	"db":            "server.db",
	"debug":         "server.debug",
	"max-upload-mb": "server.max_upload_mb",
}

// commandFlagKeys overrides flagKeys for flags that mean something else on one command
var commandFlagKeys = map[string]map[string]string{
	"validate": {"format": "validate.format"},
	"history":  {"format": "history.format"},
}

var rootCmd = &cobra.Command{
	Use:   "cfdi-reader",
	Short: "Read CFDI 4.0 invoices (XML)",
	Long: `CFDI Reader extracts structured data from Mexican CFDI 4.0 invoices.

For every invoice it reports:
  - Date (DD/MM/YYYY) and folio
  - Receptor name and RFC
  - Line items with 16% tax, 1.25% retention and line total
  - Order and delivery-note numbers from 4gfactura addenda

Configuration is read from --config (YAML), CFDI_READER_* environment
variables and flags, in increasing order of precedence.

Examples:
  # Read a single invoice
  cfdi-reader read factura.xml

  # Read a directory as a table
  cfdi-reader read facturas/ -f table

  # Export to a spreadsheet
  cfdi-reader export facturas/*.xml -o reporte.xlsx`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	defer func() { closeLogger() }()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error) (env: CFDI_READER_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (json, console) (env: CFDI_READER_LOG_FORMAT)")
	rootCmd.PersistentFlags().String("log-file", "stderr", "Log output (stdout, stderr or file path)")
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	l, closeLog, err := logging.New(cfg.Logging())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	closeLogger()
	logger, closeLogger = l, closeLog

	printVerbose("Configuration loaded (log level %s, concurrency %d)\n", cfg.Log.Level, cfg.Read.Concurrency)
	return nil
}

// bindFlags binds the flags the running command defines to their configuration keys
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if k, ok := commandFlagKeys[cmd.Name()][name]; ok {
			key = k
		}
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
