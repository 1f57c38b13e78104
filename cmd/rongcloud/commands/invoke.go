package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// invoke <action>: call any catalog action with ad-hoc parameters.
func invokeCmd(st *state) *cobra.Command {
	var (
		pairs       []string
		jsonBody    string
		contentType string
	)
	cmd := &cobra.Command{
		Use:   "invoke <action>",
		Short: "Invoke a catalog action",
		Example: `  rongcloud invoke user.token.get -p userId=1 -p name=test -p portraitUri=http://test/1
  rongcloud invoke user.tag.set --json '{"userIds":["1"],"tags":["vip"]}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := rongcloud.LookupAction(args[0])
			if !ok {
				return fmt.Errorf("%w: %q (see `rongcloud actions`)", rongcloud.ErrUnknownAction, args[0])
			}
			ct := action.ContentType
			if contentType != "" {
				parsed, err := rongcloud.ParseContentType(contentType)
				if err != nil {
					return err
				}
				ct = parsed
			}
			params, err := parseParams(jsonBody, pairs)
			if err != nil {
				return err
			}

			client, err := st.newClient(st.logLevel)
			if err != nil {
				return err
			}
			ctx, cancel := st.callContext(cmd)
			defer cancel()

			resp, err := client.SendAs(ctx, action, params, ct)
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "param", "p", nil, "parameter as key=value, repeatable")
	cmd.Flags().StringVar(&jsonBody, "json", "", "parameters as a JSON object; -p pairs are appended")
	cmd.Flags().StringVar(&contentType, "content-type", "", "override the body encoding: form or json")
	return cmd
}

// parseParams merges a JSON object with key=value pairs, keeping order.
// Repeated keys stay as separate pairs.
func parseParams(jsonBody string, pairs []string) (rongcloud.Params, error) {
	params := rongcloud.Params{}
	if strings.TrimSpace(jsonBody) != "" {
		if err := json.Unmarshal([]byte(jsonBody), &params); err != nil {
			return nil, fmt.Errorf("--json: %w", err)
		}
		if params == nil {
			params = rongcloud.Params{}
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("-p %q: expected key=value", pair)
		}
		params = params.Add(strings.TrimSpace(key), value)
	}
	return params, nil
}

// printResponse writes the indented reply and fails on a non-200 code so
// shell scripts can rely on the exit status.
func printResponse(w io.Writer, resp *rongcloud.Response) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(resp.Raw)
	}
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Message()
		if msg == "" {
			msg = "request failed"
		}
		return fmt.Errorf("rongcloud: code %d: %s", resp.Code, msg)
	}
	return nil
}
