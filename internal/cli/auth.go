package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/research-cli/internal/credential"
	"github.com/nhle/research-cli/internal/theme"
)

func (a *app) newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored Gemini API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Store a Gemini API key in the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.readAPIKey(cmd)
			if err != nil {
				return err
			}
			if err := a.deps.Credentials(a.cfg.ConfigDir).Set(credential.APIKeyName, key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessStyle.Render("API key saved to the keyring."))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Gemini API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.deps.Credentials(a.cfg.ConfigDir).Delete(credential.APIKeyName)
			if errors.Is(err, credential.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored API key.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessStyle.Render("API key removed."))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which API key would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, src, err := credential.ResolveAPIKey(a.deps.Credentials(a.cfg.ConfigDir), a.deps.Getenv)
			if errors.Is(err, credential.ErrNoAPIKey) {
				fmt.Fprintln(cmd.OutOrStdout(), theme.WarnStyle.Render("Not logged in."))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (from %s)\n",
				theme.LabelStyle.Render("API key:"), credential.Mask(key), src)
			return nil
		},
	})

	return cmd
}

// readAPIKey prompts on a terminal and otherwise reads the first line of
// stdin.
func (a *app) readAPIKey(cmd *cobra.Command) (string, error) {
	var key string
	if a.deps.Interactive && a.deps.PromptSecret != nil {
		v, err := a.deps.PromptSecret("Gemini API key")
		if err != nil {
			return "", err
		}
		key = v
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading API key from stdin: %w", err)
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("API key must not be empty")
	}
	return key, nil
}

func promptSecret(title string) (string, error) {
	var value string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Stored in the system keyring").
				EchoMode(huh.EchoModePassword).
				Value(&value).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("prompting for %s: %w", strings.ToLower(title), err)
	}
	return value, nil
}
