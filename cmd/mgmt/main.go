// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of media-mgmt-cli.
//
// media-mgmt-cli is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/cli"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/media"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/version"
)

var (
	cfgFile      string
	viperConfig  *viper.Viper
	globalConfig *cli.Config
	logger       adapters.Logger = adapters.NewNoOpLogger()
	logCloser    io.Closer
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err, outputFormat()))
		os.Exit(1)
	}
}

func outputFormat() cli.OutputFormat {
	if globalConfig == nil {
		return cli.FormatText
	}
	return cli.OutputFormat(globalConfig.OutputFormat)
}

// flagKeys binds persistent flags to their config keys.
var flagKeys = map[string]string{
	"bucket":        cli.KeyBucket,
	"backend":       cli.KeyBackend,
	"output-format": cli.KeyOutputFormat,
	"log-level":     cli.KeyLogLevel,
}

var rootCmd = &cobra.Command{
	Use:   "mgmt",
	Short: "Manage media files across a local directory and S3",
	Long: `mgmt uploads, searches, lists, downloads and deletes media files kept in a
local directory and in an S3 bucket.

Objects in the GLACIER storage class are restored and downloaded once the
restore completes. Objects in DEEP_ARCHIVE are restored in the background;
run the download again after 12-24 hours.

Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (MGMT_*)
  - Configuration file (~/.config/mgmt/config, dotenv format)
  - Default values (lowest priority)`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize viper configuration
		var err error
		viperConfig, err = cli.InitConfig(cfgFile)
		if err != nil {
			return err
		}

		// Bind flags to viper
		for name, key := range flagKeys {
			if err := viperConfig.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
		}

		// Get the configuration
		globalConfig = cli.GetConfig(viperConfig)

		return setupLogger()
	},
}

// setupLogger opens the JSON log file under the config directory. Logging
// never goes to the terminal.
func setupLogger() error {
	path, err := cli.DefaultLogFile()
	if err != nil {
		return nil //nolint:nilerr // no home directory, keep the no-op logger
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	fileLogger, closer, err := adapters.NewFileLogger(path, adapters.ParseLogLevel(globalConfig.LogLevel))
	if err != nil {
		return err
	}
	logger = fileLogger.WithFields(adapters.Field{Key: "version", Value: version.Get()})
	logCloser = closer
	return nil
}

func newCommandContext(cmd *cobra.Command) (*cli.CommandContext, error) {
	return cli.NewCommandContext(cmd.Context(), globalConfig, logger)
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file-or-directory]",
	Short: "Compress and upload a file or directory to S3",
	Long: `Compress a file or directory from the current directory and upload the
archive to S3 under MGMT_OBJECT_PREFIX. Uploaded originals are moved into a
'completed' directory. Archives that fail to upload are kept for a retry.`,
	Example: `  mgmt upload "Movie (2020)"                     # Upload one directory
  mgmt upload --all                              # Upload everything in the current directory
  mgmt upload show.mkv --compression zip         # Upload as a zip archive
  mgmt upload show.mkv --prefix tv               # Upload under <prefix>/tv/`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")                   //nolint:errcheck // flags are validated by cobra
		compression, _ := cmd.Flags().GetString("compression") //nolint:errcheck // flags are validated by cobra
		prefix, _ := cmd.Flags().GetString("prefix")           //nolint:errcheck // flags are validated by cobra

		c, err := media.ParseCompression(compression)
		if err != nil {
			return err
		}

		cc, err := newCommandContext(cmd)
		if err != nil {
			return err
		}

		opts := cli.UploadOptions{All: all, Compression: c, Prefix: prefix}
		if len(args) == 1 {
			opts.Target = args[0]
		}
		report, err := cc.UploadCommand(cmd.Context(), opts)
		if report != nil {
			fmt.Print(cli.FormatUploadReport(report, outputFormat()))
		}
		if err != nil {
			return err
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d of %d uploads failed", len(report.Failed), len(report.Failed)+len(report.Uploaded))
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search local and S3 files by keyword",
	Long: `Search the local media directory and the S3 bucket for names containing the
keyword (case-insensitive). S3 matches are shown with their storage class,
restore status and size, and can then be downloaded or inspected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noPrompt, _ := cmd.Flags().GetBool("no-prompt") //nolint:errcheck // flags are validated by cobra

		cc, err := newCommandContext(cmd)
		if err != nil {
			return err
		}

		result, err := cc.SearchCommand(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(cli.FormatSearchResult(result, outputFormat()))

		if noPrompt || outputFormat() == cli.FormatJSON {
			return nil
		}
		return cc.SearchFollowUp(cmd.Context(), result, os.Stdout)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <key>",
	Short: "Download an object, restoring it from an archive tier when needed",
	Long: `Download an object into the current directory.

  STANDARD      downloaded immediately
  GLACIER       restored with the Expedited tier, polled until ready, then downloaded
  DEEP_ARCHIVE  restored with the Standard tier; available in 12-24 hours

Press Ctrl+C to stop waiting on a GLACIER restore; the restore keeps running.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := newCommandContext(cmd)
		if err != nil {
			return err
		}

		outcome := cc.DownloadCommand(cmd.Context(), args[0])
		if outcome.Failed() {
			return cli.OutcomeError(outcome)
		}
		fmt.Print(cli.FormatOutcome(outcome, outputFormat()))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <key>",
	Short: "Show an object's storage class and restore status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := newCommandContext(cmd)
		if err != nil {
			return err
		}

		meta, err := cc.StatusCommand(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(cli.FormatMetadata(meta, outputFormat()))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an object from S3",
	Long:  `Show the object's metadata and delete it after confirmation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes") //nolint:errcheck // flags are validated by cobra

		cc, err := newCommandContext(cmd)
		if err != nil {
			return err
		}

		err = cc.DeleteCommand(cmd.Context(), args[0], yes, os.Stdout)
		if errors.Is(err, cli.ErrAborted) {
			fmt.Println("Aborted.")
			return nil
		}
		if err != nil {
			return err
		}

		result := &cli.OperationResult{
			Success: true,
			Message: fmt.Sprintf("%s successfully deleted from S3", args[0]),
		}
		fmt.Print(cli.FormatOperationResult(result, outputFormat()))
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:       "ls [local|s3|global|here]",
	Short:     "List files in a location",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{cli.LocationLocal, cli.LocationS3, cli.LocationGlobal, cli.LocationHere},
	RunE: func(cmd *cobra.Command, args []string) error {
		location := cli.LocationGlobal
		if len(args) == 1 {
			location = args[0]
		}

		cc, err := newCommandContext(cmd)
		if err != nil {
			return err
		}

		listing, err := cc.ListCommand(cmd.Context(), location)
		if err != nil {
			return err
		}
		fmt.Print(cli.FormatListing(listing, outputFormat()))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or interactively write the configuration",
	Long: `Prompt for MGMT_BUCKET, MGMT_OBJECT_PREFIX and MGMT_LOCAL_DIR and write them to
the config file. Use --show to print the current configuration only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		show, _ := cmd.Flags().GetBool("show") //nolint:errcheck // flags are validated by cobra
		if show {
			fmt.Print(cli.DisplayConfig(globalConfig, string(outputFormat())))
			return nil
		}

		path := cfgFile
		if path == "" {
			var err error
			if path, err = cli.DefaultConfigFile(); err != nil {
				return err
			}
		}
		prompt := cli.NewPrompter(os.Stdin, os.Stdout)
		err := cli.ConfigCommand(cmd.Context(), globalConfig, path, prompt, cli.DefaultBucketLister(globalConfig, logger), os.Stdout)
		if errors.Is(err, cli.ErrAborted) {
			fmt.Println("Aborted.")
			return nil
		}
		return err
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print or follow the log file",
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, _ := cmd.Flags().GetInt("lines")    //nolint:errcheck // flags are validated by cobra
		follow, _ := cmd.Flags().GetBool("follow") //nolint:errcheck // flags are validated by cobra

		path, err := cli.DefaultLogFile()
		if err != nil {
			return err
		}
		tail, err := cli.TailLines(path, lines)
		if err != nil {
			return err
		}
		for _, line := range tail {
			fmt.Println(line)
		}
		if !follow {
			return nil
		}
		return cli.FollowLog(cmd.Context(), path, os.Stdout)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner())
	},
}

func init() {
	rootCmd.SetVersionTemplate(version.Banner() + "\n")

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mgmt/config)")
	rootCmd.PersistentFlags().String("bucket", "", "S3 bucket (overrides MGMT_BUCKET)")
	rootCmd.PersistentFlags().String("backend", "s3", "storage backend (s3, memory)")
	rootCmd.PersistentFlags().StringP("output-format", "o", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().String("log-level", "debug", "log level (debug, info, warn, error)")

	uploadCmd.Flags().Bool("all", false, "upload every entry of the current directory")
	uploadCmd.Flags().String("compression", string(media.CompressionGzip), "archive format (gzip, zip)")
	uploadCmd.Flags().String("prefix", "", "extra key prefix below MGMT_OBJECT_PREFIX")

	searchCmd.Flags().Bool("no-prompt", false, "print matches without offering a download")

	deleteCmd.Flags().BoolP("yes", "y", false, "delete without confirmation")

	configCmd.Flags().Bool("show", false, "print the current configuration")

	logCmd.Flags().IntP("lines", "n", 0, "print only the last N lines")
	logCmd.Flags().BoolP("follow", "f", false, "follow the log file until interrupted")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(versionCmd)
}
