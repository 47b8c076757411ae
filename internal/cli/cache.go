package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/internal/config"
	"github.com/matzehuels/handscript/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached extraction, style, plan and render results",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.Config.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", count)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.BackendNone:
				printInfo("Cache is disabled")
				return nil
			case config.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d (prefix %q)\n", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB, c.Config.Cache.RedisPrefix)
				return nil
			}
			dir := c.Config.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = config.CacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
