package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
	"github.com/yangxing-star/rongyun/internal/util"
)

func blacklistCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage mutual blacklist entries",
	}
	cmd.AddCommand(
		blacklistPairCmd(st, "add", "Make two users block each other", func(c *rongcloud.Client) pairCall { return c.BlacklistAdd }),
		blacklistPairCmd(st, "remove", "Undo a mutual blacklist", func(c *rongcloud.Client) pairCall { return c.BlacklistRemove }),
	)
	return cmd
}

type pairCall func(ctx context.Context, userID, blackUserID string) (rongcloud.PairResult, error)

func blacklistPairCmd(st *state, use, short string, pick func(*rongcloud.Client) pairCall) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <userId> <blackUserId>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := util.ValidateUserID(args[0])
			if err != nil {
				return err
			}
			blackUserID, err := util.ValidateUserID(args[1])
			if err != nil {
				return err
			}
			client, err := st.newClient(st.logLevel)
			if err != nil {
				return err
			}
			ctx, cancel := st.callContext(cmd)
			defer cancel()

			pair, err := pick(client)(ctx, userID, blackUserID)
			out := cmd.OutOrStdout()
			if pair.Forward != nil {
				fmt.Fprintf(out, "%s -> %s: code %d\n", userID, blackUserID, pair.Forward.Code)
			}
			if pair.Reverse != nil {
				fmt.Fprintf(out, "%s -> %s: code %d\n", blackUserID, userID, pair.Reverse.Code)
			}
			if err != nil {
				return err
			}
			if !pair.Success() {
				return fmt.Errorf("rongcloud: blacklist %s did not succeed in both directions", use)
			}
			return nil
		},
	}
}
