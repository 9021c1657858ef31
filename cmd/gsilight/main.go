package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dokzlo13/gsilight/internal/app"
	"github.com/dokzlo13/gsilight/internal/config"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gsilight",
		Short: "Drive Philips Hue lights from Dota 2 game state",
		Long: `gsilight receives Game State Integration updates from the Dota 2 client,
detects game events (kills, deaths, victory, ...) and plays light effects
on a Philips Hue bridge.`,
		SilenceUsage: true,
		RunE:         runDaemon,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Listen for game state and drive the lights (default)",
			RunE:  runDaemon,
		},
		&cobra.Command{
			Use:   "pair",
			Short: "Pair with the Hue bridge (press the link button first)",
			RunE:  runPair,
		},
		&cobra.Command{
			Use:   "lights",
			Short: "List the lights known to the Hue bridge",
			RunE:  runLights,
		},
	)

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.Log.GetLevel(), cfg.Log.UseJSON, cfg.Log.Colors)
	return cfg, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info().Str("config", configPath).Msg("Starting gsilight")

	// Create context that cancels on shutdown signal
	ctx := app.SignalContext()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create application")
		return err
	}

	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start application")
		application.Stop()
		return err
	}

	// Wait for shutdown
	application.Wait()

	// Graceful shutdown
	if err := application.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
		return err
	}
	return nil
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(app.SignalContext(), 30*time.Second)
	defer cancel()

	address, err := app.Pair(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Paired with Hue bridge at %s, key stored in %s\n", address, cfg.Database.Path)
	return nil
}

func runLights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(app.SignalContext(), 30*time.Second)
	defer cancel()

	lights, err := app.ListLights(ctx, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tREACHABLE")
	for _, l := range lights {
		reachable := false
		if l.State != nil {
			reachable = l.State.Reachable
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", l.ID, l.Name, l.Type, reachable)
	}
	return w.Flush()
}

func setupLogging(level string, useJSON bool, colors bool) {
	// ISO 8601 format with timezone
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		// JSON output for production
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		// Text output (with optional colors)
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
