package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dream-tool/config"
	"dream-tool/internal/api"
	"dream-tool/internal/assessor"
	"dream-tool/internal/facility"
	"dream-tool/internal/finance"
	"dream-tool/internal/metrics"
	"dream-tool/internal/mqtt"
	"dream-tool/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "dream-tool",
		Short:        "Off-grid energy assessment",
		Long:         "Compare solar PV with battery storage against a diesel generator for an off-grid facility",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(assessCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(assumptionsCmd())
	rootCmd.AddCommand(irrCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and sets up the global logger. One-shot
// commands stay quiet below warn level unless --verbose is given.
func loadConfig(quiet bool) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	} else if quiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return cfg, nil
}

func openDatabase(cfg *config.Config) (*storage.Database, error) {
	db, err := storage.NewDatabase(storage.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("driver", cfg.Database.Driver).Msg("database opened")
	return db, nil
}

// newAssessor builds an assessor for the one-shot commands, with storage only
// when save is set.
func newAssessor(cfg *config.Config, save bool) (*assessor.Assessor, func(), error) {
	acfg := assessor.AssessorConfig{Assumptions: cfg.Assumptions}
	cleanup := func() {}

	if save {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		acfg.Store = db
		cleanup = func() { _ = db.Close() }
	}

	return assessor.NewAssessor(acfg), cleanup, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment service",
		Long:  "Start the API server with storage and the MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			if !cfg.API.Enabled {
				return errors.New("nothing to serve: api.enabled is false")
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Warn().Err(err).Msg("MQTT connection failed, publishing disabled")
				publisher, _ = mqtt.NewPublisher(mqtt.PublisherConfig{Enabled: false})
			}
			defer publisher.Close()

			m := metrics.New()
			svc := assessor.NewAssessor(assessor.AssessorConfig{
				Store:       db,
				Publisher:   publisher,
				Metrics:     m,
				Assumptions: cfg.Assumptions,
			})

			server := api.NewServer(api.ServerConfig{
				Port:     cfg.API.Port,
				Assessor: svc,
				Database: db,
				Metrics:  m,
			})

			errChan := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()

			log.Info().Msg("dream-tool started. Press Ctrl+C to stop.")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			select {
			case <-sigChan:
			case err := <-errChan:
				return fmt.Errorf("API server error: %w", err)
			}

			log.Info().Msg("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Stop(ctx)
		},
	}
}

func assessCmd() *cobra.Command {
	var (
		asJSON bool
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "assess <facility.yaml>",
		Short: "Assess one facility",
		Long:  "Size, cost and compare both supply options for one facility file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}

			f, err := facility.Load(args[0])
			if err != nil {
				return err
			}
			profile, err := f.Profile()
			if err != nil {
				return err
			}

			svc, cleanup, err := newAssessor(cfg, save)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := svc.Assess(cmd.Context(), assessor.Request{FacilityName: f.Name, Profile: profile})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			printAssessment(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full record as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "persist the assessment to the configured database")
	return cmd
}

func assumptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assumptions",
		Short: "Print the effective assumptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string]any{"assumptions": cfg.Assumptions})
		},
	}
}

func irrCmd() *cobra.Command {
	var rate float64

	cmd := &cobra.Command{
		Use:     "irr <cf0> <cf1> ...",
		Short:   "NPV and IRR of a cash flow series",
		Example: "  dream-tool irr --rate 0.08 -- -1000 300 400 500",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}

			cf := make([]float64, len(args))
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("cash flow %d: %w", i, err)
				}
				cf[i] = v
			}

			if !cmd.Flags().Changed("rate") {
				rate = cfg.Assumptions.DiscountRate
			}
			if rate <= -1 {
				return fmt.Errorf("rate must be greater than -1, got %v", rate)
			}

			irr := finance.IRR(cf, finance.IRROptions{
				InitialGuess:  cfg.Assumptions.IRR.InitialGuess,
				Tolerance:     cfg.Assumptions.IRR.Tolerance,
				MaxIterations: cfg.Assumptions.IRR.MaxIterations,
			})
			npv := finance.NPV(cf, rate)
			if !finance.IsFinite(npv) {
				return fmt.Errorf("NPV overflows at rate %v: %v", rate, npv)
			}
			printIRR(cmd.OutOrStdout(), npv, rate, irr)
			return nil
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 0, "discount rate for the NPV (default: assumptions.discount_rate)")
	return cmd
}
