package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// initAnswers collects the interactive form results.
type initAnswers struct {
	Path         string
	Prefix       string
	QueryPrefix  string
	Managers     string
	Bind         string
	BearerToken  string
	Cooldown     string
	AlgoliaApp   string
	AlgoliaKey   string
	AlgoliaIndex string
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively write a starter configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			answers := initAnswers{
				Path:        "faqbot.yaml",
				Prefix:      "!",
				QueryPrefix: "?",
				Bind:        "127.0.0.1:8080",
				Cooldown:    "300",
			}

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Config file path").
						Value(&answers.Path),
					huh.NewInput().
						Title("Command prefix").
						Description("Messages starting with this are treated as commands").
						Value(&answers.Prefix),
					huh.NewInput().
						Title("Query prefix").
						Description("Messages starting with this resolve a FAQ entry").
						Value(&answers.QueryPrefix),
					huh.NewInput().
						Title("Manager user IDs").
						Description("Comma-separated; these users may add, edit, and delete entries").
						Value(&answers.Managers),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Gateway bind address").
						Value(&answers.Bind),
					huh.NewInput().
						Title("Status bearer token").
						Description("Leave empty to disable the /status endpoint").
						Value(&answers.BearerToken),
					huh.NewInput().
						Title("Bug report cooldown (seconds)").
						Validate(validInt).
						Value(&answers.Cooldown),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Algolia application ID").
						Description("Leave empty to disable wiki search").
						Value(&answers.AlgoliaApp),
					huh.NewInput().
						Title("Algolia search API key").
						Value(&answers.AlgoliaKey),
					huh.NewInput().
						Title("Algolia index name").
						Value(&answers.AlgoliaIndex),
				),
			)

			if err := form.Run(); err != nil {
				return fmt.Errorf("form aborted: %w", err)
			}

			content := renderStarterConfig(answers)
			if _, err := os.Stat(answers.Path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", answers.Path)
			}
			if err := os.WriteFile(answers.Path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", answers.Path, err)
			}

			fmt.Printf("Wrote %s\n", answers.Path)
			return nil
		},
	}
}

func validInt(s string) error {
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}

// renderStarterConfig builds the YAML document from the form answers.
// Every Configurable module gets a section so the config validates as-is.
func renderStarterConfig(a initAnswers) string {
	var b strings.Builder

	b.WriteString("version: \"1\"\n\nmodules:\n")

	b.WriteString("  bot:\n")
	fmt.Fprintf(&b, "    prefix: %q\n", a.Prefix)
	fmt.Fprintf(&b, "    query_prefix: %q\n", a.QueryPrefix)
	b.WriteString("    managers:\n")
	for _, id := range strings.Split(a.Managers, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			fmt.Fprintf(&b, "      - %q\n", id)
		}
	}
	if a.Cooldown != "" {
		fmt.Fprintf(&b, "    bug_report_cooldown: %s\n", a.Cooldown)
	}
	if a.AlgoliaApp != "" {
		b.WriteString("    algolia:\n")
		fmt.Fprintf(&b, "      app_id: %q\n", a.AlgoliaApp)
		fmt.Fprintf(&b, "      auth_key: %q\n", a.AlgoliaKey)
		fmt.Fprintf(&b, "      index_name: %q\n", a.AlgoliaIndex)
	}

	b.WriteString("\n  channel.wschat: {}\n")
	b.WriteString("\n  channel.telegram:\n")
	b.WriteString("    token: \"${TELEGRAM_BOT_TOKEN:-}\"\n")

	b.WriteString("\n  gateway.http:\n")
	fmt.Fprintf(&b, "    bind: %q\n", a.Bind)
	if a.BearerToken != "" {
		b.WriteString("    auth:\n")
		fmt.Fprintf(&b, "      bearer_token: %q\n", a.BearerToken)
	}

	b.WriteString("\n  cron: {}\n")
	b.WriteString("\n  telemetry: {}\n")
	b.WriteString("\n  report.sqlite: {}\n")

	return b.String()
}
