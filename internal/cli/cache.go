package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/internal/config"
	"github.com/matzehuels/distmeta/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached index responses and artifacts",
		Long: `Remove every entry from the file cache. Redis entries expire on their own
and are not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.app.Config
			if cfg.Cache.Backend != config.BackendFile {
				printInfo("Nothing to clear for the %s cache backend", cfg.Cache.Backend)
				return nil
			}

			fc, err := cache.NewFileCache(cfg.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer fc.Close()

			n, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.app.Config.Cache.Dir)
			return nil
		},
	}
}
