package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/utils"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.JWTSecret()
			if secret == "" {
				return fmt.Errorf("missing required env var: JWT_SECRET")
			}
			tok, err := utils.NewAccessToken(secret, userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.Exp.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "subject (user id) of the token")
	cmd.Flags().StringVar(&role, "role", model.RoleCustomer, "role claim: admin, manager or customer")
	cmd.Flags().IntVar(&ttl, "ttl", 60, "lifetime in minutes")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
