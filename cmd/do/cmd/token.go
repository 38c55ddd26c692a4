package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stepbookstep/server/internal/config"
	"github.com/stepbookstep/server/internal/service"
)

// TokenCmd mints a bearer token for local testing against the API.
func TokenCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed JWT for a user id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive id")
			}

			cfg := config.Load()
			token, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry).GenerateJWT(userID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id to put in the token")
	return cmd
}
