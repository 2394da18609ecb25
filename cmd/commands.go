package main

import (
	"context"
	"fmt"

	"github.com/karesti/infinispan-console-ng/console"
	"github.com/karesti/infinispan-console-ng/either"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func searchCmd() *cobra.Command {
	var s searcher
	cmd := &cobra.Command{
		Use:   "search CACHE QUERY",
		Short: "Run an Ickle query against a cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.search(cmd, args[0], args[1])
		},
	}
	s.addCLIFlags(cmd.Flags())
	return cmd
}

type searcher struct {
	base
	maxResults int
	page       int
}

func (s *searcher) addCLIFlags(fs *pflag.FlagSet) {
	s.base.addCLIFlags(fs)
	fs.IntVar(&s.maxResults, "max-results", 10, "number of hits per page")
	fs.IntVar(&s.page, "page", 0, "zero based page to retrieve")
}

func (s *searcher) search(cmd *cobra.Command, cache string, query string) error {
	if s.maxResults <= 0 || s.page < 0 || s.page > console.MaxOffset/s.maxResults {
		return fmt.Errorf("invalid paging: max-results=%d page=%d", s.maxResults, s.page)
	}
	if err := s.setup(cmd.Flags()); err != nil {
		return err
	}
	service, err := s.newService(nil)
	if err != nil {
		return err
	}
	return report(&s.base, cmd, service.Search(cmd.Context(), cache, query, s.maxResults, s.page))
}

func statsCmd() *cobra.Command {
	var c statsCollector
	cmd := &cobra.Command{
		Use:   "stats CACHE...",
		Short: "Show the index and query statistics of one or more caches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.collect(cmd, args)
		},
	}
	c.addCLIFlags(cmd.Flags())
	return cmd
}

type statsCollector struct {
	base
	parallelism int
}

// CacheStats is the statistics of one cache as printed by the stats command.
type CacheStats struct {
	Cache string              `json:"cache" yaml:"cache"`
	Stats console.SearchStats `json:"stats" yaml:"stats"`
}

func (c *statsCollector) addCLIFlags(fs *pflag.FlagSet) {
	c.base.addCLIFlags(fs)
	fs.IntVar(&c.parallelism, "parallelism", 4, "maximum number of caches queried concurrently")
}

func (c *statsCollector) collect(cmd *cobra.Command, caches []string) error {
	if c.parallelism <= 0 {
		return fmt.Errorf("invalid parallelism: %d", c.parallelism)
	}
	if err := c.setup(cmd.Flags()); err != nil {
		return err
	}
	service, err := c.newService(nil)
	if err != nil {
		return err
	}

	results := make([]either.Either[console.ActionResponse, console.SearchStats], len(caches))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(c.parallelism)
	for i, cache := range caches {
		i, cache := i, cache
		g.Go(func() error {
			results[i] = service.RetrieveStats(gctx, cache)
			return nil
		})
	}
	// Operations report failures in their result, never as errors.
	_ = g.Wait()

	stats := make([]CacheStats, 0, len(caches))
	failed := false
	for i, result := range results {
		result.Match(
			func(failure console.ActionResponse) {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", caches[i], failure.Message)
			},
			func(success console.SearchStats) {
				stats = append(stats, CacheStats{Cache: caches[i], Stats: success})
			},
		)
	}
	if len(stats) > 0 {
		if err := writeOutput(cmd.OutOrStdout(), c.config.Output, stats); err != nil {
			return err
		}
	}
	if failed {
		return errOperationFailed
	}
	return nil
}

func queryStatsCmd() *cobra.Command {
	return cacheCmd("query-stats", "Show the raw query statistics of a cache",
		func(cmd *cobra.Command, service *console.SearchService, cache string) either.Either[console.ActionResponse, console.QueryStats] {
			return service.RetrieveQueryStats(cmd.Context(), cache)
		})
}

func metamodelCmd() *cobra.Command {
	return cacheCmd("metamodel", "Show how the entities of a cache are indexed",
		func(cmd *cobra.Command, service *console.SearchService, cache string) either.Either[console.ActionResponse, []console.IndexMetamodel] {
			return service.RetrieveIndexMetamodel(cmd.Context(), cache)
		})
}

// commandCmd creates a command for a service operation that reports its success as an ActionResponse.
func commandCmd(use string, short string, run func(*console.SearchService, context.Context, string) either.Either[console.ActionResponse, console.ActionResponse]) *cobra.Command {
	return cacheCmd(use, short,
		func(cmd *cobra.Command, service *console.SearchService, cache string) either.Either[console.ActionResponse, console.ActionResponse] {
			return run(service, cmd.Context(), cache)
		})
}

func purgeCmd() *cobra.Command {
	return commandCmd("purge", "Clear the indexes of a cache", (*console.SearchService).PurgeIndexes)
}

func reindexCmd() *cobra.Command {
	return commandCmd("reindex", "Rebuild the indexes of a cache asynchronously", (*console.SearchService).Reindex)
}

func updateSchemaCmd() *cobra.Command {
	return commandCmd("update-schema", "Update the index schema of a cache", (*console.SearchService).UpdateSchema)
}

func clearStatsCmd() *cobra.Command {
	return commandCmd("clear-stats", "Clear the query statistics of a cache", (*console.SearchService).ClearQueryStats)
}
