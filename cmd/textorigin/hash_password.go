package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"textorigin/internal/service"
)

func hashPasswordCommand() *cobra.Command {
	var algo string
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a password hash for ADMIN_PASSWORD_HASH",
		Long:  "Hashes the password given as argument, or read from stdin, with argon2id or bcrypt.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := service.HashPassword(password, algo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&algo, "algo", "argon2id", "Hash algorithm: argon2id or bcrypt")
	return cmd
}
