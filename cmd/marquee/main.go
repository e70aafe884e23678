package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matthewjhunter/marquee"
	"github.com/matthewjhunter/marquee/internal/storage"
)

var (
	configPath string
	cfg        *storage.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marquee",
		Short: "Release-date alerts for movies and TV shows",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(enableCmd())
	rootCmd.AddCommand(disableCmd())
	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = storage.DefaultConfig()
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg = storage.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	return nil
}

func openEngine() (*marquee.Engine, error) {
	engine, err := marquee.NewEngine(marquee.EngineConfig{
		DBPath:          cfg.Database.Path,
		MetadataBaseURL: cfg.IMDb.BaseURL,
		MetadataTimeout: time.Duration(cfg.IMDb.TimeoutSeconds) * time.Second,
		SearchLimit:     cfg.Search.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

// notifyCmd runs a single due-alert check and prints the notifications
// instead of delivering them. Useful for cron setups and debugging.
func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Run one due-alert check and print the resulting notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			notifications, err := engine.Notify(context.Background())
			if err != nil {
				return fmt.Errorf("failed to check due alerts: %w", err)
			}

			if len(notifications) == 0 {
				fmt.Println("No alerts due today.")
				return nil
			}
			for _, n := range notifications {
				fmt.Printf("--- user %d ---\n%s\n", n.UserID, n.Message)
			}
			return nil
		},
	}
}

func alertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List all active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			alerts, err := engine.Alerts()
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"User", "Name", "Title", "Episode", "Release"})
			for _, a := range alerts {
				episode := a.EpisodeID
				if episode == "" {
					episode = "-"
				}
				t.AppendRow(table.Row{
					a.UserID, a.UserName, a.TitleName, episode,
					a.ReleaseDate.Format("2006-01-02"),
				})
			}
			t.Render()
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the title catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			query := ""
			for i, a := range args {
				if i > 0 {
					query += " "
				}
				query += a
			}

			results, err := engine.Search(context.Background(), query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(results) == 0 {
				fmt.Printf("No titles found for %q.\n", query)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Title", "Year", "Kind", "Rating"})
			for _, r := range results {
				year := ""
				if r.Year != 0 {
					year = strconv.Itoa(r.Year)
				}
				t.AppendRow(table.Row{r.ID, r.Title, year, r.Kind, r.Rating})
			}
			t.Render()
			return nil
		},
	}
}

func enableCmd() *cobra.Command {
	var userID int64
	var userName string
	cmd := &cobra.Command{
		Use:   "enable <title-id>",
		Short: "Set an alert for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			res := engine.Enable(context.Background(), userID, userName, args[0])
			fmt.Println(res.Message())
			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 1, "user ID to set the alert for")
	cmd.Flags().StringVarP(&userName, "name", "n", "cli", "user name recorded on the alert")
	return cmd
}

func disableCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "disable <title-id>",
		Short: "Remove an alert for a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.Disable(userID, args[0]); err != nil {
				return fmt.Errorf("failed to remove alert: %w", err)
			}
			fmt.Println("Alert disabled.")
			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 1, "user ID to remove the alert for")
	return cmd
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = "./config/config.yaml"
			}

			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config file already exists: %s", configPath)
			}

			cfg := storage.DefaultConfig()
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			if err := os.WriteFile(configPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Printf("Created default config at %s\n", configPath)
			return nil
		},
	}
}
