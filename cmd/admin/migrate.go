package main

import (
	"fmt"

	"cecilia/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	Long: `Apply the schema for users and posts. Outside production the server
does this on startup; production deployments run it explicitly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := database.Migrate(rt.db); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
