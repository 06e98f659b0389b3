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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/audit"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/factory"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/media"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/retrieval"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/s3"
)

// List locations accepted by ListCommand.
const (
	LocationLocal  = "local"
	LocationS3     = "s3"
	LocationGlobal = "global"
	LocationHere   = "here"
)

// CommandContext holds the context for executing commands.
type CommandContext struct {
	Store       common.ObjectStore
	Coordinator *retrieval.Coordinator
	Media       *media.Directory
	Config      *Config
	Logger      adapters.Logger
	Audit       audit.AuditLogger
	Prompt      *Prompter
}

// NewCommandContext validates cfg and creates the storage backend, retrieval
// coordinator and media directory the commands share.
func NewCommandContext(ctx context.Context, cfg *Config, logger adapters.Logger) (*CommandContext, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = adapters.NewNoOpLogger()
	}

	store, err := factory.NewStorage(ctx, cfg.Backend, cfg.GetStorageSettings(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	return newCommandContext(ctx, cfg, store, logger)
}

func newCommandContext(ctx context.Context, cfg *Config, store common.ObjectStore, logger adapters.Logger) (*CommandContext, error) {
	coordinator, err := retrieval.NewCoordinator(store, cfg.RetrievalOptions(logger))
	if err != nil {
		return nil, err
	}

	var dir *media.Directory
	if cfg.LocalDir != "" {
		dir, err = media.NewDirectory(cfg.LocalDir)
		if err != nil {
			// Bucket commands still work without a local directory.
			logger.Warn(ctx, "local media directory unavailable",
				adapters.Field{Key: "dir", Value: cfg.LocalDir},
				adapters.Field{Key: "error", Value: err.Error()})
			dir = nil
		}
	}

	return &CommandContext{
		Store:       store,
		Coordinator: coordinator,
		Media:       dir,
		Config:      cfg,
		Logger:      logger,
		Audit:       audit.NewAuditLogger(&audit.Config{Enabled: true, Logger: logger, IncludeMetadata: true}),
		Prompt:      NewPrompter(os.Stdin, os.Stdout),
	}, nil
}

// format returns the configured output format.
func (c *CommandContext) format() OutputFormat {
	return OutputFormat(c.Config.OutputFormat)
}

// UploadOptions selects what UploadCommand packages and where it goes.
type UploadOptions struct {
	// Target is a file or directory name relative to WorkDir.
	Target string

	// All uploads every entry of WorkDir instead of Target.
	All bool

	// Compression defaults to gzip.
	Compression media.Compression

	// Prefix is inserted between the configured object prefix and the file name.
	Prefix string

	// WorkDir defaults to the current directory.
	WorkDir string
}

// UploadedItem describes one uploaded target.
type UploadedItem struct {
	Source        string `json:"source"`
	Key           string `json:"key"`
	CompletedPath string `json:"completed_path,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

// UploadFailure describes a target that was not uploaded. Archive, when set,
// is kept on disk so the upload can be retried.
type UploadFailure struct {
	Source  string `json:"source"`
	Archive string `json:"archive,omitempty"`
	Error   string `json:"error"`
}

// UploadReport is the result of UploadCommand.
type UploadReport struct {
	Uploaded []UploadedItem  `json:"uploaded"`
	Failed   []UploadFailure `json:"failed,omitempty"`
}

// UploadCommand archives each target, uploads the archive and then moves the
// uploaded originals into the completed directory. Archives are removed after
// a successful upload and kept after a failed one.
func (c *CommandContext) UploadCommand(ctx context.Context, opts UploadOptions) (*UploadReport, error) {
	if opts.All == (opts.Target != "") {
		return nil, ErrUploadTarget
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Compression == "" {
		opts.Compression = media.CompressionGzip
	}

	var targets []string
	if opts.All {
		names, err := media.ListHere(opts.WorkDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", opts.WorkDir, err)
		}
		for _, name := range names {
			if !media.SkipUpload(name) {
				targets = append(targets, filepath.Join(opts.WorkDir, name))
			}
		}
	} else {
		target := opts.Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(opts.WorkDir, target)
		}
		if _, err := os.Stat(target); err != nil {
			return nil, fmt.Errorf("invalid file or directory %s: %w", opts.Target, err)
		}
		targets = append(targets, target)
	}

	report := &UploadReport{}
	type uploaded struct {
		source, archive, key string
	}
	var done []uploaded
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c.Logger.Info(ctx, "compressing upload target",
			adapters.Field{Key: "target", Value: target},
			adapters.Field{Key: "compression", Value: string(opts.Compression)})
		archive, err := media.Archive(target, opts.Compression)
		if err != nil {
			report.Failed = append(report.Failed, UploadFailure{Source: target, Error: err.Error()})
			continue
		}

		var size int64
		if info, statErr := os.Stat(archive); statErr == nil {
			size = info.Size()
		}
		key, err := c.Coordinator.Upload(ctx, archive, opts.Prefix)
		_ = c.Audit.LogObjectMutation(ctx, audit.EventObjectCreated, c.Config.Bucket, key, size, err)
		if err != nil {
			c.Logger.Error(ctx, "upload failed",
				adapters.Field{Key: "archive", Value: archive},
				adapters.Field{Key: "error", Value: err.Error()})
			report.Failed = append(report.Failed, UploadFailure{Source: target, Archive: archive, Error: err.Error()})
			continue
		}
		done = append(done, uploaded{source: target, archive: archive, key: key})
	}

	for _, u := range done {
		item := UploadedItem{Source: u.source, Key: u.key}
		completed, err := media.MoveToCompleted(u.source)
		if err != nil {
			item.Warning = fmt.Sprintf("could not move to %s: %v", media.CompletedDir, err)
		} else {
			item.CompletedPath = completed
		}
		if err := os.Remove(u.archive); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.Logger.Warn(ctx, "could not remove archive",
				adapters.Field{Key: "archive", Value: u.archive},
				adapters.Field{Key: "error", Value: err.Error()})
		}
		report.Uploaded = append(report.Uploaded, item)
	}
	return report, nil
}

// SearchRow is one bucket match with its probed metadata.
type SearchRow struct {
	Index    int                    `json:"index"`
	Key      string                 `json:"key"`
	Metadata *common.ObjectMetadata `json:"metadata,omitempty"`
	Restore  common.RestoreStatus   `json:"restore"`
	Error    string                 `json:"error,omitempty"`
}

// SearchResult holds local and bucket matches for a keyword.
type SearchResult struct {
	Keyword string      `json:"keyword"`
	Local   []string    `json:"local"`
	Objects []SearchRow `json:"objects"`
}

// Selectable returns the indexes of rows whose metadata probe succeeded.
func (r *SearchResult) Selectable() []int {
	var indexes []int
	for _, row := range r.Objects {
		if row.Metadata != nil {
			indexes = append(indexes, row.Index)
		}
	}
	return indexes
}

// Row returns the row with the given index.
func (r *SearchResult) Row(index int) (SearchRow, bool) {
	for _, row := range r.Objects {
		if row.Index == index {
			return row, true
		}
	}
	return SearchRow{}, false
}

// SearchCommand lists the local directory and the bucket concurrently, keeps
// the names containing keyword and probes every bucket match with bounded
// concurrency. A failed probe is recorded on its row.
func (c *CommandContext) SearchCommand(ctx context.Context, keyword string) (*SearchResult, error) {
	var localFiles []string
	var objects []common.ObjectInfo

	g, gctx := errgroup.WithContext(ctx)
	if c.Media != nil {
		g.Go(func() error {
			files, err := c.Media.ListMediaFiles()
			localFiles = files
			return err
		})
	}
	g.Go(func() error {
		list, err := c.Store.ListObjects(gctx, "")
		objects = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SearchResult{
		Keyword: keyword,
		Local:   media.FilterKeyword(keyword, localFiles),
	}
	for _, obj := range objects {
		if media.MatchKeyword(keyword, obj.Key) {
			result.Objects = append(result.Objects, SearchRow{Index: len(result.Objects), Key: obj.Key})
		}
	}

	probe := c.Coordinator.Probe()
	pg, pctx := errgroup.WithContext(ctx)
	pg.SetLimit(c.Config.ProbeConcurrency)
	for i := range result.Objects {
		row := &result.Objects[i]
		pg.Go(func() error {
			meta, err := probe.Fetch(pctx, row.Key)
			if err != nil {
				if ctxErr := pctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.Logger.Warn(pctx, "metadata probe failed",
					adapters.Field{Key: "key", Value: row.Key},
					adapters.Field{Key: "error", Value: err.Error()})
				row.Error = err.Error()
				return nil
			}
			row.Metadata = meta
			row.Restore = meta.RestoreStatus()
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchFollowUp offers to download one of the search matches and, if that is
// declined, to show the status of one. Output goes to w.
func (c *CommandContext) SearchFollowUp(ctx context.Context, result *SearchResult, w io.Writer) error {
	options := result.Selectable()
	if len(options) == 0 {
		return nil
	}

	download, err := c.Prompt.Confirm("Download?", false)
	if err != nil {
		return err
	}
	if download {
		index, err := c.Prompt.Select("Which file? [option #]", options)
		if err != nil {
			return err
		}
		row, _ := result.Row(index)
		outcome := c.DownloadCommand(ctx, row.Key)
		fmt.Fprint(w, FormatOutcome(outcome, c.format()))
		return OutcomeError(outcome)
	}
	fmt.Fprintln(w, "Aborted.")

	status, err := c.Prompt.Confirm("Check Status?", false)
	if err != nil {
		return err
	}
	if !status {
		fmt.Fprintln(w, "Aborted.")
		return nil
	}
	index, err := c.Prompt.Select("Which file? [option #]", options)
	if err != nil {
		return err
	}
	row, _ := result.Row(index)
	meta, err := c.StatusCommand(ctx, row.Key)
	if err != nil {
		return err
	}
	fmt.Fprint(w, FormatMetadata(meta, c.format()))
	return nil
}

// DownloadCommand retrieves key into the working directory, restoring it
// from an archive tier first when needed.
func (c *CommandContext) DownloadCommand(ctx context.Context, key string) retrieval.Outcome {
	outcome := c.Coordinator.Retrieve(ctx, key)
	_ = c.Audit.LogRetrieval(ctx, c.Config.Bucket, outcome)
	return outcome
}

// OutcomeError returns the error a command exits with for outcome. Only a
// failed retrieval is an error; waiting on a restore is not.
func OutcomeError(outcome retrieval.Outcome) error {
	if !outcome.Failed() {
		return nil
	}
	if outcome.Err != nil {
		return fmt.Errorf("%s: %w", outcome.Reason, outcome.Err)
	}
	return errors.New(outcome.Reason)
}

// StatusCommand returns the object's current metadata.
func (c *CommandContext) StatusCommand(ctx context.Context, key string) (*common.ObjectMetadata, error) {
	return c.Coordinator.Status(ctx, key)
}

// DeleteCommand shows the object's metadata on w, asks for confirmation
// unless assumeYes is set, and deletes it. ErrAborted is returned when the
// user declines.
func (c *CommandContext) DeleteCommand(ctx context.Context, key string, assumeYes bool, w io.Writer) error {
	meta, err := c.StatusCommand(ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprint(w, FormatMetadata(meta, c.format()))

	if !assumeYes {
		ok, err := c.Prompt.Confirm("Confirm deletion?", false)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	err = c.Store.DeleteObject(ctx, key)
	_ = c.Audit.LogObjectMutation(ctx, audit.EventObjectDeleted, c.Config.Bucket, key, 0, err)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	c.Logger.Info(ctx, "deleted object", adapters.Field{Key: "key", Value: key})
	return nil
}

// Listing is the result of ListCommand. Fields that do not apply to the
// requested location are left empty.
type Listing struct {
	Location string              `json:"location"`
	Local    []string            `json:"local,omitempty"`
	Objects  []common.ObjectInfo `json:"objects,omitempty"`
	Here     []string            `json:"here,omitempty"`
}

// ListCommand lists media files in the local directory, objects in the
// bucket, both (global), or the entries of the working directory (here).
// Global skips the local side when no media directory is configured.
func (c *CommandContext) ListCommand(ctx context.Context, location string) (*Listing, error) {
	if location == "" {
		location = LocationGlobal
	}
	listing := &Listing{Location: location}

	switch location {
	case LocationHere:
		names, err := media.ListHere(".")
		if err != nil {
			return nil, err
		}
		listing.Here = names
		return listing, nil
	case LocationLocal, LocationS3, LocationGlobal:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}

	if location == LocationLocal && c.Media == nil {
		return nil, ErrLocalDirRequired
	}

	g, gctx := errgroup.WithContext(ctx)
	if location != LocationS3 && c.Media != nil {
		g.Go(func() error {
			files, err := c.Media.ListMediaFiles()
			listing.Local = files
			return err
		})
	}
	if location != LocationLocal {
		g.Go(func() error {
			objects, err := c.Store.ListObjects(gctx, "")
			listing.Objects = objects
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listing, nil
}

// BucketLister lists the buckets the user can pick from during configuration.
type BucketLister func(ctx context.Context) ([]string, error)

// DefaultBucketLister lists buckets for cfg's backend without needing a
// bucket to be configured yet.
func DefaultBucketLister(cfg *Config, logger adapters.Logger) BucketLister {
	return func(ctx context.Context) ([]string, error) {
		if cfg.Backend == "s3" {
			return s3.ListAllBuckets(ctx, cfg.GetStorageSettings())
		}
		store, err := factory.NewStorage(ctx, cfg.Backend, cfg.GetStorageSettings(), logger)
		if err != nil {
			return nil, err
		}
		return store.ListBuckets(ctx)
	}
}

// ConfigCommand shows the current configuration, asks before overwriting it,
// lists the available buckets and prompts for each setting with its current
// value as the default. The answers are written to path.
func ConfigCommand(ctx context.Context, cfg *Config, path string, prompt *Prompter, buckets BucketLister, w io.Writer) error {
	if cfg.ConfigFile != "" {
		fmt.Fprint(w, DisplayConfig(cfg, string(FormatText)))
		ok, err := prompt.Confirm("Overwrite?", false)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if buckets != nil {
		names, err := buckets(ctx)
		if err != nil {
			fmt.Fprintf(w, "Warning: could not list buckets: %v\n", err)
		} else {
			fmt.Fprintln(w, "Available buckets:")
			for _, name := range names {
				fmt.Fprintf(w, "  %s\n", name)
			}
		}
	}

	values := cfg.Values()
	for _, key := range PromptedKeys {
		answer, err := prompt.Ask(key, values[key])
		if err != nil {
			return err
		}
		values[key] = answer
	}

	if err := WriteConfig(path, values); err != nil {
		return err
	}
	fmt.Fprintf(w, "Config written to %s\n", path)
	return nil
}
