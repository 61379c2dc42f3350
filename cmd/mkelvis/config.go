// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mkelvis-cli/internal/config"
	"mkelvis-cli/internal/issue"

	"github.com/spf13/cobra"
)

// configCmd is the `mkelvis config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mkelvis configuration",
	Long: `Manage mkelvis configuration.

Configuration is stored in:
  - Linux: ~/.config/mkelvis/config.cue
  - macOS: ~/Library/Application Support/mkelvis/config.cue
  - Windows: %APPDATA%\mkelvis\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return exitErr(ExitUsage, err)
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig(ctx context.Context) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return exitErr(ExitUsage, err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	// The provider does not report which file it resolved, so derive the
	// path the same way it does.
	cfgPath := cfgFile
	if cfgPath == "" {
		if cfgDir, dirErr := config.ConfigDir(); dirErr == nil {
			cfgPath = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		}
	}
	if cfgPath != "" && fileExistsCheck(cfgPath) {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("default_scheme"), valueStyle.Render(cfg.DefaultScheme.String()))
	fmt.Printf("%s: %s\n", keyStyle.Render("num_tabs"), valueStyle.Render(fmt.Sprintf("%d", cfg.NumTabs)))
	fmt.Printf("%s: %s\n", keyStyle.Render("enable_completions"), valueStyle.Render(fmt.Sprintf("%v", cfg.EnableCompletions)))
	outputDir := cfg.OutputDir.String()
	if outputDir == "" {
		outputDir = "(current directory)"
	}
	fmt.Printf("%s: %s\n", keyStyle.Render("output_dir"), valueStyle.Render(outputDir))
	fmt.Printf("%s: %s\n", keyStyle.Render("user_agent"), valueStyle.Render(cfg.UserAgent))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfigFile() error {
	if err := config.CreateDefaultConfig(); err != nil {
		return exitErr(ExitOSErr, err)
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return exitErr(ExitOSErr, err)
	}
	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Println(SuccessStyle.Render("Configuration ready: ") + cfgPath)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return exitErr(ExitOSErr, err)
	}
	fmt.Println(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
