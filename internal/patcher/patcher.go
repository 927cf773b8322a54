package patcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/oshokin/revanced-builder/internal/logger"
	"github.com/oshokin/revanced-builder/internal/workspace"
)

// minimumAvailableMemory is what the patcher JVM comfortably needs;
// below it dex rewriting tends to crawl or die.
const minimumAvailableMemory = 2 << 30

// outputFileMode is the permission set of the relocated patched package.
const outputFileMode = 0o644

// maxOutputLineSize bounds a single line of patcher output.
const maxOutputLineSize = 1024 * 1024

// ProcessError reports a patcher process that exited with a non-zero code.
type ProcessError struct {
	ExitCode int
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	return fmt.Sprintf("patcher exited with code %d", e.ExitCode)
}

// Invoker runs the external patcher.
type Invoker struct {
	// JavaPath is the executable used to launch the patcher.
	JavaPath string
	// Out receives the patcher's standard output, line by line as produced.
	Out io.Writer
	// Err receives the patcher's standard error stream.
	Err io.Writer
}

// Run launches the patcher over the staged artifacts and, on success, moves
// the patched package out of the workspace into the working directory under
// outputFile, replacing any previous build. A non-zero exit is reported as a
// ProcessError and nothing is moved.
func (inv *Invoker) Run(
	ctx context.Context,
	ws *workspace.Workspace,
	packageFile string,
	outputFile string,
	excluded []string,
) error {
	warnOnLowMemory(ctx)

	args := []string{
		"-jar", ws.Path(workspace.PatcherJar),
		"-a", ws.Path(packageFile),
		"-o", ws.Path(workspace.PatchedAPK),
		"-b", ws.Path(workspace.PatchBundle),
		"-m", ws.Path(workspace.Integrations),
	}

	for _, name := range excluded {
		args = append(args, "-e", name)
	}

	command := exec.CommandContext(ctx, inv.JavaPath, args...)
	command.Stderr = inv.Err

	stdout, err := command.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open patcher output pipe: %w", err)
	}

	if err = command.Start(); err != nil {
		return fmt.Errorf("start patcher: %w", err)
	}

	// Relay output as it is produced; patch runs take minutes and the
	// operator needs to see progress.
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxOutputLineSize)

	for scanner.Scan() {
		_, _ = fmt.Fprintln(inv.Out, scanner.Text())
	}

	scanErr := scanner.Err()

	if err = command.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ProcessError{ExitCode: exitErr.ExitCode()}
		}

		return fmt.Errorf("run patcher: %w", err)
	}

	if scanErr != nil {
		return fmt.Errorf("read patcher output: %w", scanErr)
	}

	return moveFile(ws.Path(workspace.PatchedAPK), outputFile)
}

// warnOnLowMemory checks free memory before launching the JVM.
// The build still proceeds; the operator just gets a heads-up.
func warnOnLowMemory(ctx context.Context) {
	stats, err := mem.VirtualMemory()
	if err != nil {
		logger.Debugf(ctx, "Unable to read memory stats: %v", err)

		return
	}

	if stats.Available < minimumAvailableMemory {
		logger.Warnf(ctx, "Only %d MB of memory is available, patching may be slow or fail",
			stats.Available/1024/1024)
	}
}

// moveFile moves src to dst, replacing dst when it exists. A plain rename is
// tried first; when the workspace sits on another filesystem the file is
// copied over instead.
func moveFile(src, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}

	return os.Remove(src)
}

// copyFile copies src to dst.
func copyFile(src, dst string) (err error) {
	source, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := source.Close()
		if closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	target, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, outputFileMode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(target, source); err != nil {
		_ = target.Close()

		return fmt.Errorf("copy to %s: %w", dst, err)
	}

	return target.Close()
}
