package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oshokin/revanced-builder/internal/catalog"
	"github.com/oshokin/revanced-builder/internal/config"
	"github.com/oshokin/revanced-builder/internal/fetch"
	"github.com/oshokin/revanced-builder/internal/httpclient"
	"github.com/oshokin/revanced-builder/internal/logger"
	"github.com/oshokin/revanced-builder/internal/patcher"
	"github.com/oshokin/revanced-builder/internal/resolve"
	"github.com/oshokin/revanced-builder/internal/selection"
	"github.com/oshokin/revanced-builder/internal/workspace"
)

var errBuilderAlreadyRunning = errors.New("another build is already running")

// Options are inputs accepted by the builder entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// OutputFile overrides the configured name of the patched package.
	OutputFile string
	// Input is where operator answers are read from; defaults to stdin.
	Input io.Reader
	// Output is where menus, reports and patcher output go; defaults to stdout.
	Output io.Writer
}

// runner holds the mutable state of a single build execution.
// It is intentionally unexported—call Run(ctx, *Options) from callers.
type runner struct {
	cfg        *config.Config       // Builder settings loaded from YAML.
	client     *httpclient.Client   // Shared HTTP session for every download.
	ws         *workspace.Workspace // Session directory the artifacts are staged in.
	queue      *fetch.Queue         // Concurrent downloads of the session artifacts.
	input      *bufio.Reader        // Operator answers.
	output     io.Writer            // Menus, timing reports and patcher output.
	outputFile string               // Final name of the patched package.
	variant    catalog.Variant      // Application the operator chose.
	version    string               // Package version the patches support.
	patches    []catalog.Patch      // Menu of patches for the chosen variant.
	excluded   []string             // Patches the operator did not keep.
}

// Run executes a full build and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "revanced-builder")

	b, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer b.cleanup(ctx)

	if err = b.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Build failed", "error", err)
		return err
	}

	logger.InfoKV(ctx, "Patched package is ready", "output", b.outputFile)

	return nil
}

// newRunner prepares the session and writes a marker to avoid concurrent runs.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	b := &runner{
		input:  bufio.NewReader(os.Stdin),
		output: os.Stdout,
	}

	if opts.Input != nil {
		b.input = bufio.NewReader(opts.Input)
	}

	if opts.Output != nil {
		b.output = opts.Output
	}

	if IsBuilderRunningNow(ctx) {
		return b, errBuilderAlreadyRunning
	}

	if err := writeRunMarker(); err != nil {
		return b, fmt.Errorf("write run marker: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return b, err
	}

	b.cfg = cfg
	b.client = httpclient.New(cfg.Timeout, cfg.UserAgent)

	b.outputFile = cfg.OutputFile
	if opts.OutputFile != "" {
		b.outputFile = opts.OutputFile
	}

	ws, err := workspace.New(workspacePrefix)
	if err != nil {
		return b, fmt.Errorf("create workspace: %w", err)
	}

	b.ws = ws
	// The patcher drops its cache next to the output; it goes away with the session.
	ws.TrackDir(patcherCacheDir)

	return b, nil
}

// Run executes the build workflow for this runner instance:
// 1) Fetch and parse the patch catalog.
// 2) Ask which application to patch.
// 3) Start every download.
// 4) Ask which patches to keep while the downloads run.
// 5) Wait for the artifacts and report their timings.
// 6) Run the patcher and move the package into the working directory.
func (b *runner) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Downloading the patch manifest", "url", b.cfg.ManifestURL)

	cat, err := catalog.Fetch(ctx, b.client, b.cfg.ManifestURL)
	if err != nil {
		return fmt.Errorf("load patch catalog: %w", err)
	}

	if err = b.chooseVariant(); err != nil {
		return err
	}

	b.patches = cat.Patches(b.variant)

	if b.version, err = cat.VersionFor(b.variant); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Resolved the target package version",
		"app", b.variant.Slug(), "version", b.version)

	fetchCtx, cancelFetches := context.WithCancel(ctx)
	defer cancelFetches()

	b.submitDownloads(fetchCtx)

	if err = b.chooseExclusions(); err != nil {
		// Stop the downloads before reporting the bad selection.
		cancelFetches()
		_ = b.queue.Wait()

		return err
	}

	if err = b.reportDownloads(); err != nil {
		return err
	}

	return b.patch(ctx)
}

// submitDownloads schedules the toolchain releases and the target package.
func (b *runner) submitDownloads(ctx context.Context) {
	b.queue = fetch.NewQueue(ctx, b.client, b.ws.Dir())

	for _, component := range releaseComponents() {
		b.queue.Submit(fetch.Task{
			Artifact: component.artifact,
			FileName: component.fileName,
			Resolve:  resolve.LatestReleaseAsset(b.client, b.cfg.ReleasesBaseURL, component.repo),
		})
	}

	b.queue.Submit(fetch.Task{
		Artifact: b.variant.Slug(),
		FileName: b.packageFile(),
		Resolve:  resolve.MirrorAPK(b.client, b.cfg.MirrorBaseURL, b.variant, b.version),
	})
}

// chooseVariant asks which application to patch.
func (b *runner) chooseVariant() error {
	_, _ = fmt.Fprint(b.output, "Youtube or Youtube Music? [YT/YTM]: ")

	answer, err := b.readLine()
	if err != nil {
		return err
	}

	if b.variant, err = catalog.ParseVariant(answer); err != nil {
		return err
	}

	return nil
}

// chooseExclusions shows the patch menu and resolves the operator's keep
// list into the set of patches to exclude.
func (b *runner) chooseExclusions() error {
	for index, patch := range b.patches {
		_, _ = fmt.Fprintf(b.output, "[%02d] %-32s: %s\n", index, patch.Name, patch.Description)
	}

	_, _ = fmt.Fprint(b.output, `Select the patches you want as "0 2 1 ...": `)

	answer, err := b.readLine()
	if err != nil {
		return err
	}

	if b.excluded, err = selection.Resolve(b.patches, answer); err != nil {
		return err
	}

	return nil
}

// reportDownloads waits for every artifact and prints per-file timings,
// fastest first.
func (b *runner) reportDownloads() error {
	results, err := b.queue.DrainAll()
	if err != nil {
		return err
	}

	for _, result := range results {
		_, _ = fmt.Fprintf(b.output, "%s downloaded in %.2f seconds.\n",
			result.Artifact, result.Elapsed.Seconds())
	}

	return nil
}

// patch runs the external patcher over the staged workspace.
func (b *runner) patch(ctx context.Context) error {
	logger.InfoKV(ctx, "Starting the patcher",
		"java", b.cfg.JavaPath, "excluded", len(b.excluded))

	invoker := &patcher.Invoker{JavaPath: b.cfg.JavaPath, Out: b.output, Err: os.Stderr}

	return invoker.Run(ctx, b.ws, b.packageFile(), b.outputFile, b.excluded)
}

// packageFile is the workspace file the target application is staged as.
func (b *runner) packageFile() string {
	return workspace.PackageAPK(b.variant.Slug())
}

// readLine reads one operator answer.
func (b *runner) readLine() (string, error) {
	line, err := b.input.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// cleanup removes the run marker and the session workspace.
func (b *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	if b.ws != nil {
		if err := b.ws.Cleanup(); err != nil {
			logger.Warnf(ctx, "Unable to clean the workspace: %v", err)
		}
	}

	logger.Info(ctx, "The builder has been stopped")
}
