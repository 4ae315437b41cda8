package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/MoneyScope/config"
)

// secretKeys are masked by config show.
var secretKeys = map[string]bool{
	"exchange_rate_api_key": true,
	"news_api_key":          true,
	"llm_api_key":           true,
	"telegram_bot_token":    true,
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show, validate and edit the MoneyScope configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), *o.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), o.cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.filePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.filePath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			mgr, err := config.NewManager(config.WithConfigPath(path), config.WithInitialConfig(o.cfg))
			if err != nil {
				return err
			}
			if err := mgr.Update(*o.cfg); err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), "Configuration written to "+mgr.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(initCmd)

	configCmd.AddCommand(&cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Update one key in the configuration file",
		Example: "  moneyscope config set llm_provider openai\n  moneyscope config set http_timeout 10s",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.filePath()
			if err != nil {
				return err
			}
			mgr, err := config.NewManager(config.WithConfigPath(path), config.WithInitialConfig(o.cfg))
			if err != nil {
				return err
			}
			updated, err := setConfigValue(mgr.Get(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := mgr.UpdateFromJSON(updated); err != nil {
				return err
			}
			DisplaySuccess(cmd.OutOrStdout(), fmt.Sprintf("%s updated in %s", args[0], mgr.Path()))
			return nil
		},
	})

	return configCmd
}

func (o *rootOptions) filePath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultConfigPath()
}

// configFields flattens cfg into its JSON keys.
func configFields(cfg config.Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// setConfigValue returns cfg as JSON with key set to value. Values are read
// as JSON when they parse, as a duration for http_timeout, and as a plain
// string otherwise.
func setConfigValue(cfg config.Config, key, value string) (string, error) {
	fields, err := configFields(cfg)
	if err != nil {
		return "", err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := fields[key]; !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}

	switch {
	case key == "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return "", fmt.Errorf("invalid duration %q: %w", value, err)
		}
		fields[key] = int64(d)
	default:
		var parsed any
		if _, isString := fields[key].(string); isString || json.Unmarshal([]byte(value), &parsed) != nil {
			fields[key] = value
		} else {
			fields[key] = parsed
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// showConfig displays the current configuration
func showConfig(w io.Writer, cfg config.Config) error {
	fields, err := configFields(cfg)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	displaySection(w, "MoneyScope Configuration")
	for _, k := range keys {
		v := fields[k]
		switch {
		case secretKeys[k]:
			v = maskSecret(fmt.Sprint(v))
		case k == "http_timeout":
			v = cfg.HTTPTimeout.String()
		}
		fmt.Fprintf(w, "%-24s %v\n", k, v)
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// validateConfig validates the configuration and dependencies
func validateConfig(w io.Writer, cfg *config.Config) error {
	displaySection(w, "Validating MoneyScope Configuration")

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintln(w, errorStyle.Render("directories: "+err.Error()))
		return err
	}
	fmt.Fprintln(w, successStyle.Render("directories: ok"))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(w, errorStyle.Render("values: "+err.Error()))
		return err
	}
	fmt.Fprintln(w, successStyle.Render("values: ok"))

	missing := cfg.MissingKeys()
	if len(missing) > 0 {
		fmt.Fprintln(w, errorStyle.Render("api keys: missing "+strings.Join(missing, ", ")))
		return errors.New("configuration is missing API keys")
	}
	fmt.Fprintln(w, successStyle.Render("api keys: ok"))
	return nil
}
