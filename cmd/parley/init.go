package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/parley/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// initAnswers are the values collected by the init form.
type initAnswers struct {
	APIKey       string
	Model        string
	Port         string
	HistoryLimit string
	Temperature  string
}

// fileConfig is the subset of config.Config written by init.
type fileConfig struct {
	APIKey       string  `yaml:"api_key"`
	Model        string  `yaml:"model"`
	Host         string  `yaml:"host"`
	Port         int     `yaml:"port"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
	HistoryLimit int     `yaml:"history_limit"`
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			answers := initAnswers{
				Model:        config.DefaultModel,
				Port:         strconv.Itoa(config.DefaultPort),
				HistoryLimit: strconv.Itoa(config.DefaultHistoryLimit),
				Temperature:  strconv.FormatFloat(config.DefaultTemperature, 'f', -1, 64),
			}
			if err := initForm(&answers).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			data, err := renderConfigFile(answers)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", config.FileName, "Where to write the configuration")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Anthropic API key").
				Description("Leave empty to read ANTHROPIC_API_KEY at startup.").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey),
			huh.NewSelect[string]().
				Title("Model").
				Options(huh.NewOptions(
					config.DefaultModel,
					"claude-opus-4-1-20250805",
					"claude-3-5-haiku-20241022",
				)...).
				Value(&a.Model),
		),
		huh.NewGroup(
			huh.NewInput().Title("Web server port").Value(&a.Port).Validate(intInRange(1, 65535)),
			huh.NewInput().Title("Messages kept in history").Value(&a.HistoryLimit).Validate(intInRange(1, 10000)),
			huh.NewInput().Title("Temperature (0 to 1)").Value(&a.Temperature).Validate(validTemperature),
		),
	)
}

func intInRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("enter a whole number between %d and %d", lo, hi)
		}
		return nil
	}
}

func validTemperature(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return errors.New("enter a number between 0 and 1")
	}
	return nil
}

// renderConfigFile turns form answers into parley.yaml content. An empty
// key is written as an environment reference.
func renderConfigFile(a initAnswers) ([]byte, error) {
	port, err := strconv.Atoi(a.Port)
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	limit, err := strconv.Atoi(a.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("history limit: %w", err)
	}
	temp, err := strconv.ParseFloat(a.Temperature, 64)
	if err != nil {
		return nil, fmt.Errorf("temperature: %w", err)
	}

	key := a.APIKey
	if key == "" {
		key = "${ANTHROPIC_API_KEY:-}"
	}
	return yaml.Marshal(fileConfig{
		APIKey:       key,
		Model:        a.Model,
		Host:         config.DefaultHost,
		Port:         port,
		MaxTokens:    config.DefaultMaxTokens,
		Temperature:  temp,
		HistoryLimit: limit,
	})
}
