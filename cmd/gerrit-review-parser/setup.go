package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OlechowskiMichal/tools/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure Gerrit connection settings interactively",
		Long: `Configure Gerrit connection settings interactively.

Prompts for your Gerrit server details and saves them to a configuration
file for future use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runSetup(in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)

	fmt.Fprintln(out, "Gerrit Review Parser - Configuration Setup")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)

	host, err := promptValue(r, out, "Gerrit host (e.g., gerrit.example.com)", "")
	if err != nil {
		return err
	}
	if host == "" {
		return exitError(1, "Error: Host cannot be empty")
	}

	port, err := promptValue(r, out, "Gerrit SSH port", "29418")
	if err != nil {
		return err
	}
	if err := validatePort(port); err != nil {
		return exitError(1, "Error: %v", err)
	}

	user, err := promptValue(r, out, "Gerrit username", "")
	if err != nil {
		return err
	}
	if user == "" {
		return exitError(1, "Error: Username cannot be empty")
	}

	if err := config.Save(config.Config{Host: host, Port: port, User: user}); err != nil {
		return exitError(1, "Error saving configuration: %v", err)
	}

	path, err := config.Path()
	if err != nil {
		return exitError(1, "Error saving configuration: %v", err)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration saved successfully!")
	fmt.Fprintf(out, "Config file: %s\n", path)
	return nil
}

// promptValue prints a label, reads one line and trims it; an empty answer
// falls back to def.
func promptValue(r *bufio.Reader, w io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be a valid number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display current configuration settings",
		Long: `Display current configuration settings.

Shows the effective configuration values and indicates whether each value
comes from environment variables or the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	})
	return cmd
}

func runConfigShow(out io.Writer) error {
	cfg, sources, err := config.LoadWithSources()
	if err != nil {
		return exitError(1, "Error: %v", err)
	}

	fmt.Fprintln(out, "Current Gerrit Configuration")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Host:     %s (from %s)\n", cfg.Host, sources.Host)
	fmt.Fprintf(out, "Port:     %s (from %s)\n", cfg.Port, sources.Port)
	fmt.Fprintf(out, "User:     %s (from %s)\n", cfg.User, sources.User)
	fmt.Fprintln(out)

	if sources.Any(config.SourceFile) {
		if path, err := config.Path(); err == nil {
			fmt.Fprintf(out, "Config file: %s\n", path)
		}
	}
	return nil
}
