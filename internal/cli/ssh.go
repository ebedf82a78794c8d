package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/remotekit/bootstrap"
	"github.com/kbukum/remotekit/process"
	"github.com/kbukum/remotekit/sshclient"
	"github.com/kbukum/remotekit/util"
)

type sshFlags struct {
	host    string
	user    string
	input   string
	timeout time.Duration
}

func newSSHCmd(s *session) *cobra.Command {
	f := &sshFlags{}
	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Run commands and copy files with the system ssh and scp",
	}
	cmd.PersistentFlags().StringVar(&f.host, "host", "", "override ssh.host")
	cmd.PersistentFlags().StringVar(&f.user, "user", "", "override ssh.user")
	cmd.PersistentFlags().DurationVar(&f.timeout, "timeout", 0, "bound the operation (0 = unbounded)")

	run := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command on the remote host; the exit code is mirrored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			req := sshclient.CommandRequest{
				Command: args,
				Timeout: f.timeout,
				Output: func(stream process.Stream, line string) {
					if stream == process.StreamStderr {
						fmt.Fprintln(c.ErrOrStderr(), line)
						return
					}
					fmt.Fprintln(c.OutOrStdout(), line)
				},
			}
			if c.Flags().Changed("input") {
				req.Input = &f.input
			}
			return s.ssh(c, f, func(ctx context.Context, a *sshclient.Adapter) error {
				res, err := a.RunCommand(ctx, req)
				if err != nil {
					return err
				}
				if !res.IsSuccess() {
					return &ExitError{Code: res.ReturnCode()}
				}
				return nil
			})
		},
	}
	run.Flags().StringVar(&f.input, "input", "", "text written to the command's stdin")
	cmd.AddCommand(run)

	cmd.AddCommand(&cobra.Command{
		Use:   "wait",
		Short: "Poll until an ssh login succeeds",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return s.ssh(c, f, func(ctx context.Context, a *sshclient.Adapter) error {
				if f.timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, f.timeout)
					defer cancel()
				}
				if err := a.WaitForLogin(ctx); err != nil {
					return err
				}
				c.Println("login succeeded")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <source> [dest-folder]",
		Short: "Copy a local file to a remote folder (default " + sshclient.DefaultUploadFolder + ")",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			dest := sshclient.DefaultUploadFolder
			if len(args) == 2 {
				dest = args[1]
			}
			return s.ssh(c, f, func(ctx context.Context, a *sshclient.Adapter) error {
				file, err := a.SecureCopyFileUpload(ctx, args[0], dest, f.timeout)
				if err != nil {
					return err
				}
				c.Printf("%s (%d bytes)\n", file.Path, util.Deref(file.Size))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "download <source> [dest-folder]",
		Short: "Copy a remote file to a local folder (default " + sshclient.DefaultDownloadFolder + ")",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			dest := sshclient.DefaultDownloadFolder
			if len(args) == 2 {
				dest = args[1]
			}
			return s.ssh(c, f, func(ctx context.Context, a *sshclient.Adapter) error {
				return a.SecureCopyFileDownload(ctx, args[0], dest, f.timeout)
			})
		},
	})
	return cmd
}

func (s *session) ssh(c *cobra.Command, f *sshFlags, task func(context.Context, *sshclient.Adapter) error) error {
	return s.run(c, func(ctx context.Context, app *bootstrap.App) error {
		var extra []sshclient.Option
		if s.sshRunner != nil {
			extra = append(extra, sshclient.WithRunner(s.sshRunner))
		}
		a, err := app.Cfg.SSH.NewAdapter(app.Logger, extra...)
		if err != nil {
			return err
		}
		if f.host != "" {
			a.SetHost(f.host)
		}
		if f.user != "" {
			a.SetUser(f.user)
		}
		return task(ctx, a)
	})
}
