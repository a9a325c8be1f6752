package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agenthub/credential"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [secret]",
	Short: "Encrypt a provider API key with the configured Fernet key",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncrypt,
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if len(settings.FernetKeys) == 0 {
		return errors.New("FERNET_KEY is not set")
	}

	f, err := credential.NewFernet(settings.FernetKeys...)
	if err != nil {
		return err
	}
	token, err := f.Encrypt(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
