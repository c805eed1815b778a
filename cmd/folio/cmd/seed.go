package cmd

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const passwordFlag = "password"

var seedFlags = map[string]cobraflags.Flag{
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Password for the test accounts (defaults to QUICK_LOGIN_PASSWORD)",
	},
}

func SeedCmd() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin@test.com and user@test.com accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			password := seedFlags[passwordFlag].GetString()
			if password == "" {
				password = a.Cfg.QuickLoginPassword
			}

			created, err := a.AuthService.SeedTestUsers(cmd.Context(), password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d test account(s)\n", created)
			return nil
		},
	}

	cobraflags.RegisterMap(seedCmd, seedFlags)
	return seedCmd
}
