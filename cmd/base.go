package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/karesti/infinispan-console-ng/console"
	"github.com/karesti/infinispan-console-ng/either"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// errOperationFailed is returned by commands whose operation reported a failure. The failure message has already been
// printed.
var errOperationFailed = errors.New("operation failed")

// base holds what every command shares: logging, configuration and the service built from them.
type base struct {
	logger         *zap.SugaredLogger
	loggingOptions LoggingOptions
	configFile     string
	config         *Config
}

func (b *base) addCLIFlags(fs *pflag.FlagSet) {
	b.loggingOptions.AddCLIFlags(fs)
	fs.StringVar(&b.configFile, "config", "", "path to a config file (yaml, json or toml)")
	fs.String("endpoint", "http://localhost:11222/rest/v2", "base URL of the Infinispan REST API")
	fs.Duration("timeout", 30*time.Second, "timeout of each request to the REST API")
	fs.StringP("output", "o", outputJSON, "output format: json or yaml")
}

// setup creates the logger and loads the configuration. It must be called once the flags are parsed.
func (b *base) setup(fs *pflag.FlagSet) error {
	b.logger = b.loggingOptions.MustCreateLogger()
	config, err := loadConfig(fs, b.configFile)
	if err != nil {
		return err
	}
	b.config = config
	b.logger.Debugw("Loaded config", "endpoint", config.Endpoint, "timeout", config.Timeout)
	return nil
}

func (b *base) newService(registerer prometheus.Registerer) (*console.SearchService, error) {
	var metrics *console.Metrics
	if registerer != nil {
		var err error
		if metrics, err = console.NewMetrics(registerer); err != nil {
			return nil, err
		}
	}
	logger := b.logger.Desugar()
	client := &http.Client{Timeout: b.config.Timeout}
	return console.NewSearchService(console.SearchServiceOptions{
		Endpoint: b.config.Endpoint,
		Logger:   logger,
		Metrics:  metrics,
		Transport: console.NewHTTPTransport(console.HTTPTransportOptions{
			HTTPCaller: client.Do,
			Logger:     logger,
		}),
	})
}

// report prints the success payload of result to the command output, or its failure message to the command error
// output.
func report[T any](b *base, cmd *cobra.Command, result either.Either[console.ActionResponse, T]) error {
	return either.Fold(result,
		func(failure console.ActionResponse) error {
			b.logger.Debugw("Operation failed", "kind", failure.Kind)
			fmt.Fprintln(cmd.ErrOrStderr(), failure.Message)
			return errOperationFailed
		},
		func(success T) error {
			return writeOutput(cmd.OutOrStdout(), b.config.Output, success)
		},
	)
}

// cacheCmd creates a command running one service operation against the cache named by its single argument.
func cacheCmd[T any](use string, short string, run func(*cobra.Command, *console.SearchService, string) either.Either[console.ActionResponse, T]) *cobra.Command {
	var b base
	cmd := &cobra.Command{
		Use:   use + " CACHE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := b.setup(cmd.Flags()); err != nil {
				return err
			}
			service, err := b.newService(nil)
			if err != nil {
				return err
			}
			return report(&b, cmd, run(cmd, service, args[0]))
		},
	}
	b.addCLIFlags(cmd.Flags())
	return cmd
}
