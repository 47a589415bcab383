package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/constants"
	inthttp "github.com/kyaw-zaya123/checking/internal/http"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage checking configuration",
		Long: `Configuration management commands for checking.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Check that the endpoint is reachable
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for checking.

The configuration is saved to ~/.config/checking/config unless --config
is given. Use --force to overwrite an existing file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := promptConfig(bufio.NewReader(cmd.InOrStdin()), out)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Check the endpoint with: checking config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// promptConfig asks for the settings that have no sensible default.
// An empty answer keeps the default shown in brackets.
func promptConfig(r *bufio.Reader, out io.Writer) (*config.Config, error) {
	cfg := config.New()

	ask := func(label, def string) string {
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(out, "%s: ", label)
		}
		input, _ := r.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return def
		}
		return input
	}

	fmt.Fprintln(out, "Comparison Service Setup")
	fmt.Fprintln(out, "========================")
	fmt.Fprintln(out)

	cfg.Upload.Endpoint = ask("Endpoint URL", cfg.Upload.Endpoint)

	if cookie := ask("Session cookie (name=value, empty for none)", ""); cookie != "" {
		name, value, ok := strings.Cut(cookie, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("session cookie must have the form name=value")
		}
		cfg.Session.CookieName = strings.TrimSpace(name)
		cfg.Session.CookieValue = value
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
	cfg.Proxy.Mode = ask("Proxy mode", cfg.Proxy.Mode)
	if cfg.Proxy.Mode == "basic" || cfg.Proxy.Mode == "ntlm" {
		cfg.Proxy.Host = ask("Proxy host", "")
		portStr := ask("Proxy port", strconv.Itoa(cfg.Proxy.Port))
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid proxy port %q", portStr)
		}
		cfg.Proxy.Port = port
		cfg.Proxy.User = ask("Proxy user (empty for none)", "")
		if cfg.Proxy.User != "" {
			cfg.Proxy.Password = ask("Proxy password", "")
		}
	}

	fmt.Fprintln(out)
	cfg.Output.DocumentPath = ask("Save comparison to", cfg.Output.DocumentPath)
	fmt.Fprintln(out, "Archive backends: none, local, s3, azure")
	cfg.Output.ArchiveBackend = ask("Archive backend", cfg.Output.ArchiveBackend)
	switch cfg.Output.ArchiveBackend {
	case "s3":
		cfg.Output.S3Bucket = ask("S3 bucket", "")
		cfg.Output.S3Region = ask("S3 region", "us-east-1")
		cfg.Output.S3Prefix = ask("S3 key prefix", cfg.Output.S3Prefix)
	case "azure":
		cfg.Output.AzureServiceURL = ask("Azure service URL (with SAS token)", "")
		cfg.Output.AzureContainer = ask("Azure container", "")
	}

	return cfg, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/checking/config)
  2. Environment variables (CHECKING_ENDPOINT, CHECKING_SESSION_COOKIE, CHECKING_PROXY)
  3. Command-line flags (--endpoint, --proxy)

Priority: flags > environment > config file > defaults.
Secrets are masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check that the endpoint is reachable",
		Long: `Send a HEAD request to the configured endpoint through the configured
proxy. Any answer below 500 counts as reachable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := GetLogger()
			out := cmd.OutOrStdout()

			client, err := inthttp.NewClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			fmt.Fprintf(out, "Endpoint: %s\n", client.Endpoint())
			ctx, cancel := context.WithTimeout(GetContext(), constants.ProxyWarmupTimeout)
			defer cancel()

			code, err := client.Ping(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintf(out, "Connection FAILED: %s\n", inthttp.ErrorTypeName(inthttp.ClassifyError(err)))
				return fmt.Errorf("connection test failed: %w", err)
			}
			if code >= 500 {
				fmt.Fprintf(out, "Connection FAILED: server answered %d\n", code)
				return fmt.Errorf("connection test failed: status %d", code)
			}

			fmt.Fprintf(out, "Connection OK (status %d)\n", code)
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n\n", path)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: file exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: file does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: checking config init")
			}
			return nil
		},
	}

	return cmd
}
