package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/hospital-records/client"
	"github.com/jrsteele09/hospital-records/gate"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "RECORDS_PASSWORD"

// passwordReader prompts on stderr and reads lines from the command's stdin. One reader serves
// every prompt of a command so buffered input is not lost between them.
type passwordReader struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPasswordReader(cmd *cobra.Command) *passwordReader {
	return &passwordReader{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

// read takes the password from the flag, then the environment, then stdin.
func (p *passwordReader) read(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(passwordEnvVar); v != "" {
		return v, nil
	}
	fmt.Fprint(p.cmd.ErrOrStderr(), prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func resultError(res client.Result) error {
	if res.Success {
		return nil
	}
	return errors.New(res.Message)
}

func loginCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username|email>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := newPasswordReader(cmd).read(password, "Password: ")
			if err != nil {
				return err
			}
			res := a.client.Login(cmd.Context(), args[0], pw)
			if err := resultError(res); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s. Welcome %s (%s)\n", res.Message, res.User.FullName(), res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (defaults to $"+passwordEnvVar+" or a prompt)")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var in client.RegisterInput

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account; log in afterwards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Username = args[0]
			prompt := newPasswordReader(cmd)
			pw, err := prompt.read(in.Password, "Password: ")
			if err != nil {
				return err
			}
			in.Password = pw
			if in.Confirmation == "" {
				if in.Confirmation, err = prompt.read("", "Confirm password: "); err != nil {
					return err
				}
			}

			res := a.client.Register(cmd.Context(), in)
			if err := resultError(res); err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&in.Confirmation, "confirm", "", "Password confirmation")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the server and clear it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Logout(cmd.Context())
			if err := resultError(res); err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Message)
			return nil
		},
	}
}

type whoami struct {
	State      string   `json:"state" yaml:"state"`
	UserID     string   `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Username   string   `json:"username,omitempty" yaml:"username,omitempty"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Role       string   `json:"role,omitempty" yaml:"role,omitempty"`
	Navigation []string `json:"navigation" yaml:"navigation"`
}

func whoamiCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the session state, the cached user and the navigation their role can see",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.requireSession(cmd.Context())
			if err != nil {
				_ = a.print(whoami{State: d.State.String(), Navigation: []string{}})
				return err
			}

			out := whoami{
				State:      d.State.String(),
				UserID:     d.User.ID,
				Username:   d.User.Username,
				Name:       d.User.FullName(),
				Role:       string(d.User.Role),
				Navigation: gate.VisibleIDs(d.User.Role, gate.NavigationElements()),
			}
			if remote {
				me, err := a.client.FetchProfile(cmd.Context())
				if err != nil {
					return a.recordsError(err)
				}
				out.Role = string(me.Role)
				out.Name = strings.TrimSpace(me.FirstName + " " + me.LastName)
			}
			if out.Navigation == nil {
				out.Navigation = []string{}
			}
			return a.print(out)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Read the profile from the server instead of the cache")
	return cmd
}
