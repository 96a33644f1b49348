package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"climate-api/internal/db"
	"climate-api/internal/migrate"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the measurement and station tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openWritable(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			applied, err := migrate.Run(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
}
