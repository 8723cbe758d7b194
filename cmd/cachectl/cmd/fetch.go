package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paxxchal/alx-backend-storage/internal/web"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url> [url...]",
	Short: "Fetch URLs through the content cache",
	Long:  "Fetch one or more URLs through the content cache, printing the content and the access count of each.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFetch,
}

var countCmd = &cobra.Command{
	Use:   "count <url>",
	Short: "Print how many times a URL has been requested",
	Args:  cobra.ExactArgs(1),
	RunE:  runCount,
}

func init() {
	fetchCmd.Flags().Bool("summary", false, "print a readable summary instead of raw content")
	rootCmd.AddCommand(fetchCmd, countCmd)
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	summary, _ := cmd.Flags().GetBool("summary")
	c, cfg, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.KV().Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	ttl, _ := cfg.GetContentTTL()
	contents := web.NewContentCache(c.KV(), web.NewFetcher().Get, web.WithTTL(ttl))

	pages, err := contents.FetchMany(cmd.Context(), args, cfg.Content.Concurrency)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, u := range args {
		n, err := contents.Count(cmd.Context(), u)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s (requested %d times)\n", u, n)
		if !summary {
			fmt.Fprintln(out, pages[i])
			continue
		}
		ps, err := web.Summarize(u, pages[i])
		if err != nil {
			return err
		}
		if ps.Title != "" {
			fmt.Fprintf(out, "# %s\n\n", ps.Title)
		}
		fmt.Fprintln(out, ps.Text)
	}
	return nil
}

func runCount(cmd *cobra.Command, args []string) (err error) {
	c, _, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.KV().Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := web.NewContentCache(c.KV(), nil).Count(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}
