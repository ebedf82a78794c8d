package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/remotekit/bootstrap"
	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/httpclient"
	"github.com/kbukum/remotekit/version"
)

type httpFlags struct {
	headers []string
	json    string
	params  []string
	fail    bool
}

func newHTTPCmd(s *session) *cobra.Command {
	f := &httpFlags{}
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Send HTTP requests through the configured adapter",
	}
	cmd.PersistentFlags().StringArrayVarP(&f.headers, "header", "H", nil, `extra header "Name: Value" (repeatable)`)
	cmd.PersistentFlags().BoolVar(&f.fail, "fail", false, "exit non-zero when the status is 400 or above")

	for _, method := range []string{"get", "delete"} {
		cmd.AddCommand(&cobra.Command{
			Use:   method + " <uri>",
			Short: "Send a " + strings.ToUpper(method) + " request",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return s.http(c, f, func(ctx context.Context, a *httpclient.Adapter) (*httpclient.Response, error) {
					if method == "get" {
						return a.Get(ctx, args[0])
					}
					return a.Delete(ctx, args[0])
				})
			},
		})
	}

	for _, method := range []string{"post", "put"} {
		sub := &cobra.Command{
			Use:   method + " <uri>",
			Short: "Send a " + strings.ToUpper(method) + " request with a form or JSON body",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				params, err := parseParams(f.params)
				if err != nil {
					return err
				}
				var body *string
				if c.Flags().Changed("json") {
					body = &f.json
				}
				return s.http(c, f, func(ctx context.Context, a *httpclient.Adapter) (*httpclient.Response, error) {
					if method == "post" {
						return a.Post(ctx, args[0], params, body)
					}
					return a.Put(ctx, args[0], params, body)
				})
			},
		}
		sub.Flags().StringVar(&f.json, "json", "", "raw JSON body")
		sub.Flags().StringArrayVarP(&f.params, "param", "p", nil, "form field name=value (repeatable)")
		cmd.AddCommand(sub)
	}

	for _, method := range []string{"upload", "replace"} {
		verb := "POST"
		if method == "replace" {
			verb = "PUT"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   method + " <uri> <file>",
			Short: verb + " a local file as the request body",
			Args:  cobra.ExactArgs(2),
			RunE: func(c *cobra.Command, args []string) error {
				return s.http(c, f, func(ctx context.Context, a *httpclient.Adapter) (*httpclient.Response, error) {
					if method == "upload" {
						return a.Upload(ctx, args[0], args[1])
					}
					return a.Replace(ctx, args[0], args[1])
				})
			},
		})
	}
	return cmd
}

func parseParams(pairs []string) ([]httpclient.Parameter, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make([]httpclient.Parameter, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.InvalidInput("param", fmt.Sprintf("expected name=value, got %q", pair))
		}
		params = append(params, httpclient.Param(name, value))
	}
	return params, nil
}

// httpAdapter builds an adapter from the configuration. A User-Agent is
// added unless one is configured.
func (s *session) httpAdapter(app *bootstrap.App) *httpclient.Adapter {
	opts := app.Cfg.HTTP.Options()
	opts = append(opts, httpclient.WithLogger(app.Logger))
	if s.httpTransport != nil {
		opts = append(opts, httpclient.WithTransport(s.httpTransport))
	}
	a := httpclient.New(opts...)

	for _, h := range a.Headers() {
		if strings.EqualFold(h.Name, httpclient.HeaderUserAgent) {
			return a
		}
	}
	a.AddHeader(httpclient.UserAgent(version.UserAgent()))
	return a
}

func (s *session) http(c *cobra.Command, f *httpFlags, send func(context.Context, *httpclient.Adapter) (*httpclient.Response, error)) error {
	return s.run(c, func(ctx context.Context, app *bootstrap.App) error {
		a := s.httpAdapter(app)
		for _, line := range f.headers {
			h, ok := httpclient.ParseHeader(line)
			if !ok {
				return errors.InvalidInput("header", fmt.Sprintf("expected \"Name: Value\", got %q", line))
			}
			a.AddHeader(h)
		}

		resp, err := send(ctx, a)
		if resp != nil {
			c.PrintErrf("HTTP %d\n", resp.StatusCode)
			if resp.HasBody() {
				_, _ = c.OutOrStdout().Write(resp.Body)
			}
		}
		if err != nil {
			return err
		}
		if f.fail && !resp.IsSuccessful() {
			return &ExitError{Code: 22, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
		}
		return nil
	})
}
