package main

import (
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/service"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewCreateAdminCmd creates the create-admin subcommand. It is the only way to obtain an
// ADMIN account; registration over HTTP always yields USER.
func NewCreateAdminCmd() *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.db); err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
			}

			user, err := a.users.CreateAdmin(cmd.Context(), in)
			if err != nil {
				return oops.Code("CREATE_ADMIN_FAILED").With("username", in.Username).Wrap(err)
			}

			cmd.Printf("Created admin %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "admin full name")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password")
	for _, name := range []string{"username", "email", "full-name", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
