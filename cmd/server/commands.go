package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrongbook/backend/internal/auth"
	"github.com/wrongbook/backend/internal/domain/access"
	"github.com/wrongbook/backend/internal/infrastructure/config"
	"github.com/wrongbook/backend/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := resolveDatabase(cmd, config.LoadDatabase())
		s, err := store.Open(db.Driver, db.DSN)
		if err != nil {
			return err
		}
		defer s.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", db.Driver)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a bearer token for local development",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		tokens, err := auth.NewTokens(config.LoadAuthSecret())
		if err != nil {
			return err
		}
		token, err := tokens.Issue(access.User{ID: args[0], Email: email}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("email", "", "Email claim, used for limited sharing")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
