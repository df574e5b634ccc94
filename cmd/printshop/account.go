package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/linemk/printshop/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword читает пароль без эха, если ввод - терминал; из пайпа читается строка
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the storefront",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "password: ")
				var err error
				if password, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if _, err := c.app.Auth.Login(cmd.Context(), email, password); err != nil {
				return describe("sign in", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s", email)
			if c.app.Session.IsAdmin() {
				fmt.Fprint(cmd.OutOrStdout(), " (admin)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.app.Session.LoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			me, err := c.app.Auth.Me(cmd.Context())
			if err != nil {
				return describe("load profile", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, role %s, locale %s)\n", me.Email, me.ID, me.Role, c.app.Session.Locale())
			return nil
		},
	}
}

func newLocaleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "locale [" + strings.Join(session.SupportedLocales, "|") + "]",
		Short:     "Show or change the interface language",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: session.SupportedLocales,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := c.app.Session.SetLocale(args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.app.Session.Locale())
			return nil
		},
	}
}
