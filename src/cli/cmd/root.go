package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sofmeright/nupdater/src/config"
	"github.com/sofmeright/nupdater/src/nuget"
	"github.com/sofmeright/nupdater/src/output"
	"github.com/sofmeright/nupdater/src/updater"
	"github.com/sofmeright/nupdater/src/version"
)

var (
	cfgFile           string
	verbose           bool
	includePrerelease bool
	sourceURL         string
	dryRun            bool
	showSummary       bool
	reportPath        string
)

var rootCmd = &cobra.Command{
	Use:   "nupdater <path_to_csproj> [--include-pre-release]",
	Short: "Update NuGet package references to their latest versions",
	Long: `nupdater reads the PackageReference entries of a project file, looks up the
latest version of each package in a NuGet v3 registry, and rewrites the
declared version in place when a newer one exists.`,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr())
	},
	RunE:          runUpdate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .nupdater.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().BoolVar(&includePrerelease, "include-pre-release", false, "consider prerelease versions")
	rootCmd.Flags().StringVar(&sourceURL, "source", "", "NuGet v3 service index URL (overrides config)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without writing the project file")
	rootCmd.Flags().BoolVar(&showSummary, "summary", false, "print a summary section after the run")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "write a JSON report to this file")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func setupLogging(w io.Writer) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !output.UseColor(),
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()
}

// runUpdate reports every handled failure on stdout and returns nil, so the
// process exits 0 after printing.
func runUpdate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		output.Usage(out)
		return nil
	}

	if err := update(cmd.Context(), out, cmd.ErrOrStderr(), args[0]); err != nil {
		log.Debug().Err(err).Msg("update failed")
		output.Failure(out, err)
	}
	return nil
}

func update(ctx context.Context, out, errOut io.Writer, manifestPath string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if sourceURL != "" {
		cfg.Registry.URL = sourceURL
	}

	warnings, err := config.Validate(cfg)
	if err != nil {
		return err
	}
	color := output.UseColor()
	for _, w := range warnings {
		output.Warning(errOut, w, color)
	}
	log.Debug().Str("config", cfg.Source).Str("registry", cfg.Registry.URL).Msg("configuration loaded")

	client := nuget.NewClient(nuget.Options{
		ServiceIndex: cfg.Registry.URL,
		Timeout:      cfg.Registry.Timeout,
		AuthEnv:      cfg.Registry.AuthEnv,
		UserAgent:    version.UserAgent(),
	})

	u := updater.New(client, out, updater.Options{
		IncludePrerelease: includePrerelease || cfg.Update.IncludePrerelease,
		Ignore:            cfg.Update.Ignore,
		DryRun:            dryRun,
		RequireClean:      cfg.Git.RequireClean,
	})

	start := time.Now()
	result, err := u.Run(ctx, manifestPath)
	if err != nil {
		return err
	}

	if showSummary {
		renderSummary(out, result, time.Since(start), color)
	}

	if reportPath != "" {
		if err := updater.WriteReport(reportPath, result); err != nil {
			return err
		}
		log.Debug().Str("path", reportPath).Msg("report written")
	}
	return nil
}
