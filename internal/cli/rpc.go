package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kbukum/remotekit/bootstrap"
	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/jsonrpc"
)

func newRPCCmd(s *session) *cobra.Command {
	var (
		params   string
		endpoint string
		auth     string
	)

	cmd := &cobra.Command{
		Use:   "rpc",
		Short: "Send JSON-RPC 2.0 calls",
	}

	call := &cobra.Command{
		Use:   "call <method>",
		Short: "Call a method and print its result",
		Long: `Call posts a JSON-RPC 2.0 envelope to the configured endpoint and prints
the raw result. A JSON-RPC error is printed as JSON and exits with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var p any
			if params != "" {
				if !json.Valid([]byte(params)) {
					return errors.InvalidInput("params", "must be valid JSON")
				}
				p = json.RawMessage(params)
			}

			return s.run(c, func(ctx context.Context, app *bootstrap.App) error {
				opts := []jsonrpc.Option{jsonrpc.WithLogger(app.Logger)}
				if ep := firstNonEmpty(endpoint, app.Cfg.JSONRPC.Endpoint); ep != "" {
					opts = append(opts, jsonrpc.WithEndpoint(ep))
				}
				if a := firstNonEmpty(auth, app.Cfg.JSONRPC.Auth); a != "" {
					opts = append(opts, jsonrpc.WithAuth(a))
				}
				client := jsonrpc.New(s.httpAdapter(app), opts...)

				res, err := client.Call(ctx, args[0], p)
				if err != nil {
					return err
				}
				if !res.IsSuccessful() {
					out, _ := json.Marshal(res.Error)
					c.PrintErrln(string(out))
					return &ExitError{Code: 1, Err: res.Error}
				}
				_, _ = c.OutOrStdout().Write(append(res.Result, '\n'))
				return nil
			})
		},
	}
	call.Flags().StringVar(&params, "params", "", "JSON params (object or array)")
	call.Flags().StringVar(&endpoint, "endpoint", "", "override jsonrpc.endpoint")
	call.Flags().StringVar(&auth, "auth", "", "override jsonrpc.auth")
	cmd.AddCommand(call)
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
