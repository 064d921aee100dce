package cli

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s AdminStore) error {
				if err := s.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintln(a.out, formatSuccess("database is up to date"))
				return nil
			})
		},
	}
}

func (a *App) createAdminCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Create an administrator account directly in the database.

The password is read from the terminal twice without echo.

Examples:
  siteadmin create-admin --email admin@example.com --name "Site Admin"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email := a.config.Email
			if email == "" {
				var err error
				if email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
					return err
				}
			}

			password, err := GetPassword(a.out, "Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			confirm, err := GetPassword(a.out, "Repeat password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(confirm)

			if !bytes.Equal(password, confirm) {
				return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
			}

			return a.withStore(cmd.Context(), func(s AdminStore) error {
				u, err := s.CreateAdmin(cmd.Context(), email, name, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, formatSuccess(fmt.Sprintf("created administrator %s (%s)", u.Email, u.ID)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	return cmd
}
