package cli

import (
	"github.com/spf13/cobra"

	"github.com/sulphurninja/oceanlinux-sub001/internal/app"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunMigrations()
		},
	}

	return cmd
}
