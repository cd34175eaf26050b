package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
)

func newAdminCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Superadmin back office",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary",
			Short: "Show tenants, plans, online users and system health",
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := app().api.Summary(cmd.Context())
				if err != nil {
					return err
				}
				return printSummary(cmd.OutOrStdout(), s)
			},
		},
		&cobra.Command{
			Use:   "audit",
			Short: "Show the latest audit entries",
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := app().api.AuditFeed(cmd.Context())
				if err != nil {
					return err
				}
				return printAudit(cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "errors",
			Short: "Show the latest server errors",
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := app().api.ErrorFeed(cmd.Context())
				if err != nil {
					return err
				}
				return printErrors(cmd.OutOrStdout(), list)
			},
		},
		newWatchCmd(app),
	)
	return cmd
}

func newWatchCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:       "watch <audit|errors>",
		Short:     "Stream audit or error events until interrupted",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"audit", "errors"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			return app().api.Watch(cmd.Context(), args[0], func(e *models.Event) {
				fmt.Fprintf(w, "%s %s %s %v\n", time.Now().Format(time.TimeOnly), e.Topic, e.Event, e.Payload)
			})
		},
	}
}
