/*
main.go - CLI entrypoint for the rent adjustment calculator

PURPOSE:
  Wires configuration, the INDEC series provider, the sqlite observation
  cache, and the adjustment engine into a cobra CLI.

COMMANDS:
  adjust [amount]   Compute the compounded adjustment (prompts when the
                    amount is omitted)
  fetch             Refresh the local observation cache
  serve             Run the HTTP API with graceful shutdown
  version           Print version information

CONFIGURATION:
  ./config.yaml or ./config/config.yaml, overridable with --config and
  RENTADJUST_* environment variables. See config/config.go.

SEE ALSO:
  - adjust/engine.go: The computation itself
  - api/server.go: The HTTP surface behind `serve`
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/adjustment-engine/adjust"
	"github.com/warp/adjustment-engine/api"
	"github.com/warp/adjustment-engine/config"
	"github.com/warp/adjustment-engine/provider"
	"github.com/warp/adjustment-engine/provider/indec"
	"github.com/warp/adjustment-engine/store/sqlite"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config, loaded by the root command.
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rentadjust",
	Short: "Compounded rent adjustment from the official CPI series",
	Long: `rentadjust computes a rental-price adjustment by compounding the
last officially published monthly CPI variations (INDEC, via
apis.datos.gob.ar) over the current rent amount.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rentadjust %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// --- Adjust Command ---

var adjustCmd = &cobra.Command{
	Use:   "adjust [amount]",
	Short: "Compute the compounded adjustment for a rent amount",
	Long: `Fetches the configured index series, compounds the trailing window of
monthly variations, and prints the chronological trace plus the new
amount. Prompts for the amount when it is not given as an argument.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := resolveAmount(args)
		if err != nil {
			return err
		}

		opts, err := engineOptions(cmd)
		if err != nil {
			return err
		}

		prov, closeStore, err := buildProvider()
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Series.Timeout())
		defer cancel()

		s, err := prov.FetchSeries(ctx)
		if err != nil {
			return fmt.Errorf("fetching index series: %w", err)
		}

		result, err := adjust.Compute(amount, s, opts)
		if err != nil {
			return err
		}

		renderResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	adjustCmd.Flags().Int("window", 0, "trailing months to compound (default from config)")
	adjustCmd.Flags().String("threshold", "", "fraction/percentage detection threshold (default from config)")
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh the local observation cache from the upstream API",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		store, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Series.Timeout())
		defer cancel()

		s, err := client.FetchSeries(ctx)
		if err != nil {
			return fmt.Errorf("fetching index series: %w", err)
		}
		if err := store.SaveObservations(ctx, client.SeriesID(), s); err != nil {
			return fmt.Errorf("caching observations: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "cached %d observations for %s (latest: %s)\n",
			len(s), client.SeriesID(), s.LatestPeriod())
		return nil
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP adjustment API",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.API.Port
		}

		opts, err := engineOptions(cmd)
		if err != nil {
			return err
		}

		prov, closeStore, err := buildProvider()
		if err != nil {
			return err
		}
		defer closeStore()

		handler := api.NewHandler(prov, opts)
		router := api.NewRouter(handler, cfg.API.CORSOrigins)

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Printf("Server starting on http://localhost:%d", port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default from config)")
}

// =============================================================================
// WIRING HELPERS
// =============================================================================

func newClient() *indec.Client {
	return indec.New(indec.Config{
		BaseURL:  cfg.Series.BaseURL,
		SeriesID: cfg.Series.ID,
		Limit:    cfg.Series.Limit,
		Timeout:  cfg.Series.Timeout(),
	})
}

// buildProvider assembles the remote client with its cache fallback. The
// returned closer releases the sqlite handle.
func buildProvider() (provider.SeriesProvider, func() error, error) {
	client := newClient()
	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	return provider.NewCached(client, store, client.SeriesID()), store.Close, nil
}

// engineOptions resolves config defaults with per-command flag overrides.
func engineOptions(cmd *cobra.Command) (adjust.Options, error) {
	opts := adjust.Options{WindowSize: cfg.Adjustment.WindowSize}

	thresholdStr := cfg.Adjustment.RateThreshold
	if f := cmd.Flags().Lookup("threshold"); f != nil && f.Value.String() != "" {
		thresholdStr = f.Value.String()
	}
	if thresholdStr != "" {
		threshold, err := decimal.NewFromString(thresholdStr)
		if err != nil {
			return adjust.Options{}, fmt.Errorf("invalid rate threshold %q: %w", thresholdStr, err)
		}
		opts.RateThreshold = threshold
	}

	if f := cmd.Flags().Lookup("window"); f != nil {
		if window, err := cmd.Flags().GetInt("window"); err == nil && window > 0 {
			opts.WindowSize = window
		}
	}
	return opts, nil
}

// resolveAmount takes the amount from the argument or prompts for it.
// Non-numeric and non-positive input is rejected here, before the engine
// is ever invoked.
func resolveAmount(args []string) (decimal.Decimal, error) {
	var input string
	if len(args) == 1 {
		input = args[0]
	} else {
		fmt.Print("Current rent amount ($): ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return decimal.Decimal{}, fmt.Errorf("no amount provided")
		}
		input = strings.TrimSpace(scanner.Text())
	}

	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q is not a valid amount", input)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return amount, nil
}
