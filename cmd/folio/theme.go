package main

import (
	"fmt"

	"github.com/briancabello/briancabello.github.io/config"
	"github.com/briancabello/briancabello.github.io/server"
	"github.com/briancabello/briancabello.github.io/theme"
	"github.com/spf13/cobra"
)

func init() {
	themeCmd.PersistentFlags().String("client", "", "client id the preference belongs to")
	themeToggleCmd.Flags().String("system", "light", "system colour scheme (light or dark)")

	themeCmd.AddCommand(themeGetCmd, themeToggleCmd, themeResetCmd)
	rootCmd.AddCommand(themeCmd)
}

// openStore opens the preference store of client, or the default one when
// client is empty. Without a database the store only lives in memory.
func openStore(c *config.Config, client string) (theme.Store, func(), error) {
	if !c.Theme.PersistAcrossReloads || c.Theme.Database == "" {
		return theme.NewMemoryStore(), func() {}, nil
	}

	db, err := theme.OpenDatabase(c.Theme.Database)
	if err != nil {
		return nil, nil, err
	}

	key := c.Theme.StorageKey
	if client != "" {
		key += ":" + client
	}

	return db.Store(key), func() { _ = db.Close() }, nil
}

func themeStore(cmd *cobra.Command) (theme.Store, func(), *config.Config, error) {
	client, _ := cmd.Flags().GetString("client")

	c, err := parseConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	if !c.Theme.PersistAcrossReloads || c.Theme.Database == "" {
		return nil, nil, nil, fmt.Errorf("theme preferences are not persisted")
	}

	store, closeStore, err := openStore(c, client)
	if err != nil {
		return nil, nil, nil, err
	}

	return store, closeStore, c, nil
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage the persisted theme preference",
}

var themeGetCmd = &cobra.Command{
	Use:  "get",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, _, err := themeStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		t, ok, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}

		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "none")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:  "toggle",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		systemStr, _ := cmd.Flags().GetString("system")
		system, err := theme.Parse(systemStr)
		if err != nil {
			return err
		}

		store, closeStore, c, err := themeStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		tc := theme.NewController(store, server.ThemeOptions(c))
		err = tc.Init(cmd.Context(), system)
		if err != nil {
			return err
		}

		t, err := tc.Toggle(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}

var themeResetCmd = &cobra.Command{
	Use:  "reset",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, _, err := themeStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		return store.Clear(cmd.Context())
	},
}
