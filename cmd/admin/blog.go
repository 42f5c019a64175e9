package main

import (
	"fmt"
	"strconv"

	"cecilia/internal/cache"
	"cecilia/internal/repository"
	"cecilia/internal/service"
	"cecilia/internal/sitemap"
	"cecilia/internal/storage"

	"github.com/spf13/cobra"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Inspect and refresh the sitemaps",
}

var sitemapStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show published post and sitemap page counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		rt, err := connect(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		fixed, err := sitemap.LoadFixedPages(rt.cfg.SitemapFixedPagesFile)
		if err != nil {
			return err
		}
		posts := repository.NewPostRepository(rt.db)
		published, err := posts.CountPublished(ctx)
		if err != nil {
			return err
		}
		pages, err := sitemap.NewGenerator(posts, rt.cfg.SiteBaseURL, fixed).PageCount(ctx)
		if err != nil {
			return err
		}

		stats := struct {
			Published  int64 `json:"published"`
			BlogPages  int   `json:"blogPages"`
			FixedPages int   `json:"fixedPages"`
		}{published, pages, len(fixed)}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), stats)
		}
		return printTable(cmd.OutOrStdout(), []string{"PUBLISHED", "BLOG PAGES", "FIXED PAGES"}, [][]string{{
			strconv.FormatInt(stats.Published, 10),
			strconv.Itoa(stats.BlogPages),
			strconv.Itoa(stats.FixedPages),
		}})
	},
}

var sitemapFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop cached sitemap documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if cache.GetClient() == nil {
			return fmt.Errorf("redis is not reachable at %s", rt.cfg.RedisURL)
		}
		cache.InvalidateSitemaps(cmd.Context())
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "sitemap cache flushed")
		return err
	},
}

var slugCmd = &cobra.Command{
	Use:   "slug <title>",
	Short: "Suggest a free URL name for a post title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := connect(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		store, err := storage.New(ctx, rt.cfg)
		if err != nil {
			return err
		}
		posts := service.NewPostService(repository.NewPostRepository(rt.db), store, rt.cfg.DefaultCoverImage)
		slug, err := posts.SuggestSlug(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), slug)
		return err
	},
}

func init() {
	sitemapCmd.AddCommand(sitemapStatsCmd, sitemapFlushCmd)
	rootCmd.AddCommand(sitemapCmd, slugCmd)
}
