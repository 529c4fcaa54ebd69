package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/tgupload/pkg/app"
)

var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// initAnswers holds what `tgupload init` asks for.
type initAnswers struct {
	Token      string
	StoreToken bool
	AdminID    string
	APIURL     string
	Gateway    bool
	Bind       string
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = app.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			answers := initAnswers{
				APIURL: "https://api.telegram.org",
				Bind:   "127.0.0.1:8080",
			}
			if err := initForm(&answers).Run(); err != nil {
				return err
			}

			raw, err := renderConfig(answers)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := os.WriteFile(path, raw, 0o600); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Configuration written to %s\n", path)
			if !answers.StoreToken {
				_, _ = fmt.Fprintln(out, "Set BOT_TOKEN in the environment or in a .env file before starting.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot token").
				Description("From @BotFather.").
				EchoMode(huh.EchoModePassword).
				Value(&a.Token).
				Validate(validateToken),
			huh.NewConfirm().
				Title("Store the token in the config file?").
				Description("Otherwise the file references ${BOT_TOKEN}.").
				Value(&a.StoreToken),
			huh.NewInput().
				Title("Your Telegram user id").
				Description("Only this user (and allow_users) can run commands.").
				Value(&a.AdminID).
				Validate(validateUserID),
			huh.NewInput().
				Title("Bot API root").
				Description("Use a local Bot API server to upload files up to 2 GiB.").
				Value(&a.APIURL),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable the HTTP status endpoint?").
				Value(&a.Gateway),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Value(&a.Bind),
		).WithHideFunc(func() bool { return !a.Gateway }),
	)
}

func validateToken(s string) error {
	if !tokenPattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("expected <bot id>:<secret>")
	}
	return nil
}

func validateUserID(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return errors.New("expected a positive numeric id")
	}
	return nil
}

// renderConfig turns the answers into a configuration file.
func renderConfig(a initAnswers) ([]byte, error) {
	adminID, err := strconv.ParseInt(strings.TrimSpace(a.AdminID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("admin id: %w", err)
	}

	token := "${BOT_TOKEN}"
	if a.StoreToken {
		token = strings.TrimSpace(a.Token)
	}
	telegram := map[string]any{
		"token":    token,
		"admin_id": adminID,
	}
	if api := strings.TrimSpace(a.APIURL); api != "" {
		telegram["api_url"] = api
	}

	modules := map[string]any{
		"channel.telegram": telegram,
		"journal.sqlite":   map[string]any{},
	}
	if a.Gateway {
		modules["gateway.http"] = map[string]any{"bind": a.Bind}
	}

	doc := struct {
		Version string         `yaml:"version"`
		Modules map[string]any `yaml:"modules"`
	}{Version: "1", Modules: modules}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return raw, nil
}
