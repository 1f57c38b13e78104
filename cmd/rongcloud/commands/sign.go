package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// sign: print a fresh header set, handy for curl.
func signCmd(st *state) *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print freshly signed request headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := rongcloud.ParseContentType(contentType)
			if err != nil {
				return err
			}
			client, err := st.newClient(st.logLevel)
			if err != nil {
				return err
			}
			headers, err := client.SignedHeaders(ct)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(headers))
			for name := range headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, headers[name])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "form", "body encoding: form or json")
	return cmd
}
