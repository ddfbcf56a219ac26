package main

import (
	"github.com/spf13/cobra"

	"github.com/ninjahub/ninjahub-core/internal/cryptox"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Encrypt or decrypt values with the deployment's CRYPTOR_SECRET",
	}

	encrypt := &cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Print the URL-safe ciphertext of plaintext",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cryptor()
			if err != nil {
				return err
			}
			out, err := c.Encrypt(args[0])
			if err != nil {
				return err
			}
			cmd.Println(out)
			return nil
		},
	}

	decrypt := &cobra.Command{
		Use:   "decrypt <ciphertext>",
		Short: "Print the plaintext of a token, including legacy CBC tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cryptor()
			if err != nil {
				return err
			}
			out, err := c.Decrypt(args[0])
			if err != nil {
				return err
			}
			cmd.Println(out)
			return nil
		},
	}

	cmd.AddCommand(encrypt, decrypt)
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the stored hash for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := cryptox.HashPassword(args[0])
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
}
