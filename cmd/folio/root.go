package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/briancabello/briancabello.github.io/config"
	"github.com/briancabello/briancabello.github.io/log"
	"github.com/briancabello/briancabello.github.io/server"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	configFile     string
	tracerProvider *sdktrace.TracerProvider
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file")
}

func parseConfig() (*config.Config, error) {
	c, err := config.Parse(configFile)
	if err != nil {
		return nil, err
	}

	if c.Development || c.Tracing {
		log.SetDebug(true)
	}

	if c.Tracing && tracerProvider == nil {
		tracerProvider = log.NewTracerProvider()
		otel.SetTracerProvider(tracerProvider)
	}

	return c, nil
}

// shutdownTracing flushes the spans that are still buffered.
func shutdownTracing() {
	if tracerProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.S().Warnf("failed to flush traces: %s", err)
	}
	_ = log.L().Sync()
}

var rootCmd = &cobra.Command{
	Use:               "folio",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "Folio serves a data-driven portfolio",
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig()
		if err != nil {
			return err
		}

		defer func() {
			_ = log.L().Sync()
		}()

		quit := make(chan os.Signal, 1)
		server, err := server.NewServer(c)
		if err != nil {
			return err
		}

		log := log.S()

		go func() {
			log.Info("starting server")
			err := server.Start()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("failed to start server: %s", err)
			}
			quit <- os.Interrupt
		}()

		signal.Notify(quit, os.Interrupt)
		<-quit

		log.Info("stopping server")
		return server.Stop()
	},
}
