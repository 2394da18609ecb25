package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karesti/infinispan-console-ng/consoleserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func serveCmd() *cobra.Command {
	var s server
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API consumed by the browser console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.serve(cmd)
		},
	}
	s.addCLIFlags(cmd.Flags())
	return cmd
}

type server struct {
	base
}

func (s *server) addCLIFlags(fs *pflag.FlagSet) {
	s.base.addCLIFlags(fs)
	fs.String("address", ":8080", "address to listen on")
	fs.Float64("rate-limit", 0, "requests per second accepted, 0 disables rate limiting")
	fs.Int("rate-burst", 0, "requests accepted above the rate limit in a burst")
	fs.Duration("shutdown-timeout", 10*time.Second, "time allowed for in flight requests on shutdown")
}

func (s *server) serve(cmd *cobra.Command) error {
	if err := s.setup(cmd.Flags()); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	service, err := s.newService(registry)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler: consoleserver.NewHTTPHandler(consoleserver.Options{
			Service:   service,
			Logger:    s.logger.Desugar(),
			Gatherer:  registry,
			RateLimit: s.config.RateLimit,
			RateBurst: s.config.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	s.logger.Infow("Serving", "address", listener.Addr().String(), "endpoint", s.config.Endpoint)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infow("Shutting down", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
