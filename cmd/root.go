package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/octopize/avatar-deploy/internal/audit"
	"github.com/octopize/avatar-deploy/internal/config"
	"github.com/octopize/avatar-deploy/internal/logging"
	"github.com/octopize/avatar-deploy/internal/runner"
	"github.com/octopize/avatar-deploy/internal/steps"
	"github.com/octopize/avatar-deploy/pkg/templates"
	"github.com/octopize/avatar-deploy/pkg/versioning"
)

// templateSourceGitHub selects downloading over copying a local tree.
const templateSourceGitHub = "github"

var (
	outputDir      string
	templateFrom   string
	configFile     string
	nonInteractive bool
	saveConfig     bool
	verbose        bool
	showStatus     bool
	devMode        bool
	skipDownload   bool

	// Version information - set by main.go
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// SetVersionInfo sets the version information from main.go
func SetVersionInfo(version, commit, date, builtBy string) {
	Version = version
	Commit = commit
	Date = date
	BuiltBy = builtBy

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf(`Avatar Deploy %s (templates %s)
  Commit:    %s
  Built:     %s
  Built by:  %s
`, version, versioning.ToolVersion, commit, date, builtBy))
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "avatar-deploy",
	Short: "Generate Avatar deployment configuration",
	Long: `Avatar Deploy walks through the settings a Docker-based Avatar
deployment needs, renders the .env, nginx, and docker-compose files from
versioned templates, and writes one file per generated secret.

Progress is saved after every step, so an interrupted run resumes where
it left off. Templates are downloaded from GitHub by default and cached
next to the generated files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConfigure,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "\n✗ Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&outputDir, "output-dir", ".", "Output directory for generated files")
	rootCmd.Flags().StringVar(&templateFrom, "template-from", templateSourceGitHub,
		"Template source: 'github' to download from the repository, or a path to a local template directory")
	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML configuration file to load")
	rootCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false,
		"Run without prompting; missing required settings abort the run")
	rootCmd.Flags().BoolVar(&saveConfig, "save-config", false,
		"Save the final configuration to "+config.SavedConfigName)
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostic output")
	rootCmd.Flags().BoolVar(&showStatus, "status", false, "Show saved configuration progress and exit")
	rootCmd.Flags().BoolVar(&devMode, "dev", false, "Include development-only steps (local source mounts)")
	rootCmd.Flags().BoolVar(&skipDownload, "skip-download", false,
		"Reuse the cached template bundle without contacting GitHub")

	rootCmd.Version = Version
}

func runConfigure(cmd *cobra.Command, args []string) error {
	log := logging.New(nil, verbose)
	slog.SetDefault(log)
	stepList := steps.Registry(devMode)

	if showStatus {
		return printStatus(cmd, stepList)
	}

	defaults, err := config.LoadDefaults()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	bundle, err := resolveTemplates(cmd, log)
	if err != nil {
		return err
	}

	auditLog, err := audit.NewFileLogger(filepath.Join(outputDir, audit.FileName))
	if err != nil {
		return err
	}
	defer auditLog.Close()

	r, err := runner.New(runner.Options{
		OutputDir:   outputDir,
		Bundle:      bundle,
		Steps:       stepList,
		Defaults:    defaults,
		Interactive: !nonInteractive,
		ConfigPath:  configFile,
		SaveConfig:  saveConfig,
		Audit:       auditLog,
		Log:         log,
	})
	if err != nil {
		return err
	}
	return r.Run(cmd.Context())
}

func printStatus(cmd *cobra.Command, stepList []steps.Step) error {
	sum, resumable, err := runner.Status(outputDir, steps.Names(stepList))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !resumable {
		fmt.Fprintf(out, "No saved configuration state in %s\n", outputDir)
		return nil
	}
	fmt.Fprintln(out, "Deployment configuration status:")
	fmt.Fprintln(out, sum.String())
	if sum.NextStep != "" {
		fmt.Fprintf(out, "Next step: %s\n", sum.NextStep)
	}
	return nil
}

// resolveTemplates downloads or copies the template bundle into the
// output directory's cache, showing a spinner on interactive terminals.
func resolveTemplates(cmd *cobra.Command, log *slog.Logger) (*templates.Bundle, error) {
	var provider templates.Provider
	if templateFrom == templateSourceGitHub {
		provider = templates.NewGitHubProvider(templates.GitHubOptions{
			Token:        os.Getenv("GITHUB_TOKEN"),
			SkipDownload: skipDownload,
		})
		log.Debug("resolving templates from GitHub", "branch", templates.DefaultBranch, "skip_download", skipDownload)
	} else {
		provider = templates.NewLocalProvider(templateFrom)
		log.Debug("resolving templates from local directory", "source", templateFrom)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching deployment templates..."
	if term.IsTerminal(int(syscall.Stdout)) {
		s.Start()
		defer s.Stop()
	}

	bundle, err := provider.Resolve(cmd.Context(), outputDir)
	if err != nil {
		return nil, err
	}

	log.Debug("template bundle ready", "version", bundle.Version, "dir", bundle.Dir)
	return bundle, nil
}
