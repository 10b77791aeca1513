package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/keplerlab/internal/config"
	"github.com/san-kum/keplerlab/internal/orbit"
	"github.com/san-kum/keplerlab/internal/viz"
)

func liveCmd() *cobra.Command {
	var (
		theme   string
		gifPath string
	)
	cmd := &cobra.Command{
		Use:   "live",
		Short: "animate the configured orbit in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// the program owns the terminal, so only errors reach the log
			path, err := orbit.NewPath(cfg.PathConfig(), newLogger(true))
			if err != nil {
				return err
			}

			title := preset
			if title == "" {
				title = path.Elements().Conic().String()
			}
			model := viz.NewModel(path, viz.Options{
				Title:     title,
				Epoch:     cfg.Orbit.Epoch,
				Samples:   cfg.View.Samples,
				TimeScale: cfg.View.TimeScale,
				Theme:     theme,
				GIFPath:   gifPath,
			}, nil)

			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, fmt.Sprintf("colour theme %v", viz.ThemeNames()))
	cmd.Flags().StringVar(&gifPath, "gif", "orbit.gif", "where G writes its recording")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %-9s a=%g e=%g\n", name, p.Elements().Conic(), p.Orbit.SemiMajorAxis, p.Orbit.Eccentricity)
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
