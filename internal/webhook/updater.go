package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const toolMode = 0o775

// UpdaterConfig describes where and how dependency updates run.
type UpdaterConfig struct {
	// Dir is the deployment checkout; the tool binary is installed here.
	Dir      string
	ToolName string
	ToolURL  string
	// GitPull runs "git pull" in Dir before updating dependencies.
	GitPull bool
	Timeout time.Duration
}

// Updater brings the deployment directory up to date: optionally pulls the
// latest source, then runs the dependency tool's update command.
type Updater struct {
	cfg        UpdaterConfig
	runner     CommandRunner
	httpClient *http.Client
	logger     zerolog.Logger

	installMu sync.Mutex
}

func NewUpdater(logger zerolog.Logger, runner CommandRunner, cfg UpdaterConfig) *Updater {
	return &Updater{
		cfg:        cfg,
		runner:     runner,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger.With().Str("component", "updater").Str("dir", cfg.Dir).Logger(),
	}
}

// Update runs the update steps in order and stops at the first failure.
// The returned lines hold the output of every step that ran, including the
// failing one.
func (u *Updater) Update(ctx context.Context) ([]string, error) {
	if u.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.Timeout)
		defer cancel()
	}

	tool, err := u.ensureTool(ctx)
	if err != nil {
		return nil, err
	}

	var lines []string
	env := []string{"HOME=" + u.cfg.Dir}

	if u.cfg.GitPull {
		out, err := u.runner.Run(ctx, u.cfg.Dir, env, "git", "pull")
		lines = append(lines, splitLines(out)...)
		if err != nil {
			return lines, &CommandError{Command: "git pull", Err: err}
		}
	}

	out, err := u.runner.Run(ctx, u.cfg.Dir, env, tool, "update", "-q", "-d", u.cfg.Dir)
	lines = append(lines, splitLines(out)...)
	if err != nil {
		return lines, &CommandError{Command: u.cfg.ToolName + " update", Err: err}
	}

	u.logger.Info().Int("output_lines", len(lines)).Msg("dependencies updated")
	return lines, nil
}

// ensureTool returns the path of the tool binary, downloading it first if
// it is not installed yet.
func (u *Updater) ensureTool(ctx context.Context) (string, error) {
	path := filepath.Join(u.cfg.Dir, u.cfg.ToolName)

	u.installMu.Lock()
	defer u.installMu.Unlock()

	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	u.logger.Info().Str("url", u.cfg.ToolURL).Str("path", path).Msg("installing update tool")
	if err := u.download(ctx, path); err != nil {
		return "", fmt.Errorf("install %s: %w", u.cfg.ToolName, err)
	}
	return path, nil
}

func (u *Updater) download(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.cfg.ToolURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", u.cfg.ToolURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", u.cfg.ToolURL, strings.TrimSpace(resp.Status))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), toolMode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp.Name(), err)
	}
	return nil
}
