package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"bookshelf/backend/app/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCreateAdminCmd(open opener) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username = strings.TrimSpace(username)
			email = strings.TrimSpace(email)
			if username == "" || email == "" {
				return errors.New("--username and --email are required")
			}
			if password == "" {
				p, err := readPassword(cmd.OutOrStdout(), "Password for "+username+": ")
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}
			if len(password) < 6 {
				return errors.New("password must be at least 6 characters")
			}

			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := e.users().CreateUser(cmd.Context(), username, email, password, models.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "Username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

// readPassword reads a password without echo when stdin is a terminal.
func readPassword(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		b, err := io.ReadAll(io.LimitReader(os.Stdin, 1024))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
