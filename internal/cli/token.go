package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	"github.com/noah-isme/sma-substitution-api/internal/service"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		role    string
		subject string
		name    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the API signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth := service.NewAuthService(nil, opts.logger, service.AuthConfig{
				AccessTokenSecret: opts.cfg.JWT.Secret,
				AccessTokenExpiry: opts.cfg.JWT.Expiration,
				Issuer:            opts.cfg.JWT.Issuer,
			})
			issued, err := auth.IssueToken(service.IssueTokenRequest{
				Subject:  subject,
				Role:     models.UserRole(role),
				FullName: name,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", issued.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleCoordinator), "ADMIN, COORDINATOR, TEACHER or VIEWER")
	cmd.Flags().StringVar(&subject, "subject", "", "operator the token is issued to")
	cmd.Flags().StringVar(&name, "name", "", "display name carried in the token")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
