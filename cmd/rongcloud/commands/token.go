package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// token <userId> <name> <portraitUri>: issue a client token.
func tokenCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "token <userId> <name> <portraitUri>",
		Short: "Issue an IM token for a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := st.newClient(st.logLevel)
			if err != nil {
				return err
			}
			ctx, cancel := st.callContext(cmd)
			defer cancel()

			resp, err := client.GetToken(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if !resp.Success {
				return printResponse(cmd.OutOrStdout(), resp)
			}
			token, _ := resp.Field("token")
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
