package command

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wagiedev/expectr-go/internal/errors"
)

// Config holds configuration for program discovery.
type Config struct {
	// Program is the name or path of the program to locate.
	Program string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates a program binary.
type Discoverer interface {
	// Discover returns the path to the program or a CommandNotFoundError.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// commonDirs are searched after PATH.
var commonDirs = []string{"/usr/local/bin", "/usr/bin", "/bin"}

// NewDiscoverer creates a new program discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the program binary.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	program := d.cfg.Program

	// A path is used as-is and only as-is
	if strings.ContainsRune(program, filepath.Separator) {
		d.log.Debug("Using explicit program path", "path", program)

		if isExecutable(program) {
			return program, nil
		}

		return "", &errors.CommandNotFoundError{Command: program, SearchedPaths: []string{program}}
	}

	searchedPaths := make([]string, 0, len(commonDirs)+1)

	if path, err := exec.LookPath(program); err == nil {
		d.log.Debug("Found program in PATH", "program", program, "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	for _, dir := range commonDirs {
		path := filepath.Join(dir, program)
		searchedPaths = append(searchedPaths, path)

		if isExecutable(path) {
			d.log.Debug("Found program in common directory", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Program not found in any searched paths", "program", program, "searched_paths", searchedPaths)

	return "", &errors.CommandNotFoundError{Command: program, SearchedPaths: searchedPaths}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode().Perm()&0o111 != 0
}
