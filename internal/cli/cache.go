package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisAddr, format string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		Long: `Clear removes cached SVG and PNG renders. With a Redis address (the flag or
the redis_addr config key) only keys under the pvmviz: scope are deleted;
otherwise the local cache directory is emptied. --format limits a Redis
purge to one output format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			overrideString(cmd, "redis-addr", &cfg.RedisAddr)
			ctx := cmd.Context()

			if cfg.RedisAddr != "" {
				rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, "")
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Purge(ctx, purgePattern(format))
				if err != nil {
					return fmt.Errorf("purge redis cache: %w", err)
				}
				printSuccess("Cleared %d cached artifacts", n)
				printDetail("Redis: %s", cfg.RedisAddr)
				return nil
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.(*cache.FileCache).Clear(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached artifacts", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "clear a shared Redis cache instead of the local directory")
	cmd.Flags().StringVar(&format, "format", "", "only clear artifacts of this format from Redis (svg, png)")
	return cmd
}

// purgePattern returns the Redis glob matching cached artifacts, all of
// them or those of one format.
func purgePattern(format string) string {
	if format == "" {
		return redisKeyScope + "*"
	}
	return redisKeyScope + cache.NewDefaultKeyer().ArtifactKey("*", format)
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
