package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd builds the command tree bound to a.
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "siteadmin",
		Short:         "Operator tool for the website back-office",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags().Changed)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to JSON config file")
	pf.StringVarP(&a.serverURL, "server", "s", "", "API base URL")
	pf.StringVarP(&a.email, "email", "e", "", "administrator email")
	pf.StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN for migrate and create-admin")

	root.AddCommand(
		a.migrateCmd(),
		a.createAdminCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.getCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.uploadCmd(),
		a.statsCmd(),
		a.dashboardCmd(),
	)
	return root
}

// Execute runs the CLI against the process arguments and returns the exit
// code.
func Execute(ctx context.Context) int {
	a := NewApp(os.Stdin, os.Stdout)
	if err := a.RootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err.Error()))
		return 1
	}
	return 0
}
