package telegram

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Config holds the Telegram channel configuration.
type Config struct {
	Token          string   `yaml:"token"`
	AdminID        int64    `yaml:"admin_id"`
	AllowUsers     []int64  `yaml:"allow_users"`
	APIURL         string   `yaml:"api_url"`
	PollingTimeout int      `yaml:"polling_timeout"`
	AllowedUpdates []string `yaml:"allowed_updates"`

	// RegisterCommands publishes the command menu with setMyCommands on
	// start. Defaults to true.
	RegisterCommands *bool `yaml:"register_commands"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.PollingTimeout == 0 {
		c.PollingTimeout = 30
	}
	if c.AllowedUpdates == nil {
		c.AllowedUpdates = []string{"message"}
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
	if c.RegisterCommands == nil {
		on := true
		c.RegisterCommands = &on
	}
}

// validate checks configuration field constraints beyond basic presence checks.
// It is called from Telegram.Validate after defaults have been applied.
func (c *Config) validate() error {
	if c.Token == "" {
		return errors.New("telegram: token is required")
	}
	if !tokenPattern.MatchString(c.Token) {
		return errors.New("telegram: token format invalid (expected <bot_id>:<hash>)")
	}
	if c.AdminID == 0 {
		return errors.New("telegram: admin_id is required")
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
	}

	if c.PollingTimeout < 0 || c.PollingTimeout > 50 {
		return fmt.Errorf("telegram: polling_timeout must be 0-50, got %d", c.PollingTimeout)
	}
	return nil
}

// users returns the ids allowed to talk to the bot: the admin first.
func (c *Config) users() []int64 {
	return append([]int64{c.AdminID}, c.AllowUsers...)
}
