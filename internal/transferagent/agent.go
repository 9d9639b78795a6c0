// Package transferagent wraps the external rclone-like Transfer Agent
// (spec section 1/6, GLOSSARY: "an opaque black box invoked as a child
// process"). Every operation shells out; every call blocks (spec section
// 5: "every Transfer Agent invocation blocks; there is no cooperative
// async scheduler"). File-descriptor discipline (section 5): stdout/stderr
// pipes are always closed, on every exit path.
package transferagent

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// FileEntry is one file returned by a recursive listing, with its size in
// bytes (spec section 4.1).
type FileEntry struct {
	Path string
	Size int64
}

// Agent is the Transfer Agent interface every component depends on.
type Agent interface {
	ListTopLevelDirs(ctx context.Context, root string) ([]string, error)
	ListFilesRecursive(ctx context.Context, root string) ([]FileEntry, error)
	StartBulkDownload(ctx context.Context, remoteRoot string, manifestPath, destDir string, concurrency int) (*Download, error)
	CopyFile(ctx context.Context, srcPath, dstPath string) error
	RecursiveCopyNoClobber(ctx context.Context, localDir, destRoot string) error
}

type agent struct {
	binary     string
	configPath string
}

// New constructs an Agent that shells out to binary (e.g. "rclone"),
// passing configPath via --config when non-empty.
func New(binary, configPath string) Agent {
	if binary == "" {
		binary = "rclone"
	}
	return &agent{binary: binary, configPath: configPath}
}

func (a *agent) baseArgs() []string {
	var args []string
	if a.configPath != "" {
		args = append(args, "--config", a.configPath)
	}
	return args
}

func (a *agent) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, a.binary, append(a.baseArgs(), args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	// stdout/stderr here are in-memory buffers, not pipes, so there is no
	// descriptor to close; StartBulkDownload below is the case that opens
	// real pipes and must close them explicitly.
	if err != nil {
		return stdout.String(), errors.Wrapf(err, "transfer agent: %s", stderr.String())
	}
	return stdout.String(), nil
}

// ListTopLevelDirs enumerates immediate subdirectories of root (spec
// section 4.1 step 2), trimming trailing separators.
func (a *agent) ListTopLevelDirs(ctx context.Context, root string) ([]string, error) {
	out, err := a.run(ctx, "lsf", "--dirs-only", root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "/\\")
		if line == "" {
			continue
		}
		dirs = append(dirs, line)
	}
	return dirs, nil
}

// ListFilesRecursive enumerates every file under root with its size (spec
// section 4.1 step 3), in the Transfer Agent's listing order.
func (a *agent) ListFilesRecursive(ctx context.Context, root string) ([]FileEntry, error) {
	out, err := a.run(ctx, "lsf", "-R", "--files-only", "--format", "ps", "--separator", "\t", root)
	if err != nil {
		return nil, err
	}
	var entries []FileEntry
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		size, convErr := strconv.ParseInt(parts[1], 10, 64)
		if convErr != nil {
			continue
		}
		entries = append(entries, FileEntry{Path: parts[0], Size: size})
	}
	return entries, nil
}

// Download represents an in-flight bulk download child process, polled by
// the caller (spec section 4.2: "poll every ~2s") and killable on a
// watermark trip or shutdown request.
type Download struct {
	cmd      *exec.Cmd
	done     chan error
	killed   bool
}

// StartBulkDownload begins a concurrent download of the paths listed in
// manifestPath (relative to remoteRoot) into destDir, and returns
// immediately; the caller polls Poll()/Wait().
func (a *agent) StartBulkDownload(ctx context.Context, remoteRoot, manifestPath, destDir string, concurrency int) (*Download, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}
	args := append(a.baseArgs(),
		"copy", remoteRoot, destDir,
		"--files-from", manifestPath,
		"--transfers", strconv.Itoa(concurrency),
	)
	cmd := exec.CommandContext(ctx, a.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	d := &Download{cmd: cmd, done: make(chan error, 1)}
	// Drain both pipes so the child never blocks on a full pipe buffer,
	// and so they are always closed on every exit path (spec section 5
	// file-descriptor discipline).
	go func() { _, _ = io.Copy(io.Discard, stdout) }()
	go func() { _, _ = io.Copy(io.Discard, stderr) }()
	go func() {
		d.done <- cmd.Wait()
	}()
	return d, nil
}

// Poll reports whether the download has finished, without blocking.
func (d *Download) Poll() (finished bool, exitErr error) {
	select {
	case err := <-d.done:
		d.done <- err // allow repeated polls / a final Wait to observe it
		return true, err
	default:
		return false, nil
	}
}

// Wait blocks until the download finishes and returns its terminal error.
func (d *Download) Wait() error {
	return <-d.done
}

// Kill sends SIGTERM, waits a short grace period, then SIGKILLs (spec
// section 5: "In-flight child processes are sent a terminate signal with a
// short grace period, then killed").
func (d *Download) Kill() {
	if d.killed {
		return
	}
	d.killed = true
	if d.cmd.Process == nil {
		return
	}
	_ = d.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case err := <-d.done:
		d.done <- err // allow the caller's following Wait() to observe it
		return
	case <-time.After(3 * time.Second):
		_ = d.cmd.Process.Kill()
	}
}

// CopyFile performs a single server-side copy, used by the large-file
// pipeline (spec section 4.2: "ask the Transfer Agent to copy
// src/<folder>/<path> to dst/<folder>/<path> server-side").
func (a *agent) CopyFile(ctx context.Context, srcPath, dstPath string) error {
	_, err := a.run(ctx, "copyto", srcPath, dstPath)
	return err
}

// RecursiveCopyNoClobber uploads localDir to destRoot with "do not
// overwrite existing files" semantics (spec section 4.3: merge semantics).
func (a *agent) RecursiveCopyNoClobber(ctx context.Context, localDir, destRoot string) error {
	_, err := a.run(ctx, "copy", localDir, destRoot, "--ignore-existing")
	return err
}

// JoinRemote joins a remote root with a relative path the way rclone
// remote specs are concatenated (e.g. "s3:bucket/prefix" + "folder").
func JoinRemote(root, rel string) string {
	root = strings.TrimRight(root, "/")
	rel = strings.TrimLeft(rel, "/")
	return root + "/" + rel
}
