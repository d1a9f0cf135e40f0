package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/voicelab/internal"
	"codeberg.org/snonux/voicelab/internal/cli"
	"codeberg.org/snonux/voicelab/internal/exec"
	"codeberg.org/snonux/voicelab/internal/midi"
	"codeberg.org/snonux/voicelab/internal/models"
	"codeberg.org/snonux/voicelab/internal/observe"
	"codeberg.org/snonux/voicelab/internal/processor"
	"codeberg.org/snonux/voicelab/internal/server"
	"codeberg.org/snonux/voicelab/internal/transcribe"
)

func runServe(cmd *cobra.Command, flags *cli.Flags) error {
	service := flags.Service
	switch service {
	case "phoneme", "midi", "all":
	default:
		return fmt.Errorf("unknown service %q (want phoneme, midi or all)", service)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: internal.Version})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer shutdownMetrics(context.Background())
	metrics := observe.DefaultMetrics()

	host := viper.GetString("server.host")
	port := viper.GetInt("server.port")
	midiPort := viper.GetInt("server.midi_port")

	var servers []*server.Server

	if service == "phoneme" || service == "all" {
		analyzer, err := buildAnalyzer(metrics)
		if err != nil {
			return err
		}
		if store := analyzer.Store(); store != nil {
			defer store.Close()
		}

		s, err := server.NewPhoneme(server.Config{Host: host, Port: port, Metrics: metrics},
			analyzer, models.Configured(cli.ProviderConfig()))
		if err != nil {
			return err
		}
		servers = append(servers, s)
	}

	if service == "midi" || service == "all" {
		if service == "all" {
			port = midiPort
		}
		runner := exec.NewRunner(viper.GetString("transcribe.python"), viper.GetString("transcribe.scripts_dir"))
		converter := midi.NewConverter(runner, "")
		if err := converter.IsAvailable(); err != nil {
			slog.Warn("MIDI conversion will fail until the script is installed", "error", err)
		}

		s, err := server.NewMIDI(server.Config{Host: host, Port: port, Metrics: metrics}, converter)
		if err != nil {
			return err
		}
		servers = append(servers, s)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			return s.Run(gctx)
		})
	}
	return g.Wait()
}

// buildAnalyzer wires the configured provider chain, reference table and
// history store. A provider that cannot be built leaves the analyzer
// without a model so /analyze reports it instead of refusing to start.
func buildAnalyzer(metrics *observe.Metrics) (*processor.Analyzer, error) {
	table, err := cli.LoadReferenceTable()
	if err != nil {
		return nil, err
	}

	store, err := cli.OpenHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	cfg := cli.ProviderConfig()
	opts := processor.Options{
		Table:   table,
		Store:   store,
		Metrics: metrics,
		Timeout: cfg.Timeout,
	}

	provider, err := transcribe.NewProvider(cfg)
	if err != nil {
		slog.Warn("transcription provider unavailable", "provider", cfg.Provider, "error", err)
	} else {
		if err := provider.IsAvailable(); err != nil {
			slog.Warn("transcription provider not ready", "provider", provider.Name(), "error", err)
		}
		opts.Provider = provider
	}

	return processor.NewAnalyzer(opts), nil
}
