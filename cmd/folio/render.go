package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/briancabello/briancabello.github.io/content"
	"github.com/briancabello/briancabello.github.io/portfolio"
	"github.com/briancabello/briancabello.github.io/server"
	"github.com/briancabello/briancabello.github.io/theme"
	"github.com/spf13/cobra"
)

func init() {
	renderCmd.Flags().String("project", "", "render the case study of this project")
	renderCmd.Flags().String("system", "light", "system colour scheme (light or dark)")
	renderCmd.Flags().StringP("output", "o", "", "write the page to this file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the portfolio page once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		systemStr, _ := cmd.Flags().GetString("system")
		output, _ := cmd.Flags().GetString("output")

		system, err := theme.Parse(systemStr)
		if err != nil {
			return err
		}

		c, err := parseConfig()
		if err != nil {
			return err
		}

		src, err := content.NewSource(c.Content.Source)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(c, "")
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := cmd.Context()
		fetcher := server.NewFetcher(c, src)

		doc, err := server.Shell(ctx, fetcher)
		if err != nil {
			return err
		}

		tc := theme.NewController(store, server.ThemeOptions(c))
		_ = tc.Init(ctx, system)
		defer tc.Attach(doc)()

		query := url.Values{}
		if project != "" {
			query.Set(c.Render.QueryParameter, project)
		}

		ctrl := server.NewPortfolio(c, fetcher, nil)
		load := ctrl.Load(ctx, portfolio.NewPage(doc, ctrl.Clock()), query)

		out := os.Stdout
		if output != "" {
			out, err = os.Create(output)
			if err != nil {
				return err
			}
			defer out.Close()
		}

		err = doc.Render(out)
		if err != nil {
			return err
		}

		if load.State() == portfolio.Failed {
			return fmt.Errorf("render %s: %w", load.Scenario(), load.Err())
		}
		return nil
	},
}
