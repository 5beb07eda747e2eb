package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// EnvDir overrides the microcontroller folder lookup
const EnvDir = "SWMC_MICROPROCESSOR_DIR"

// ErrNotFound is matched by every *NotFoundError
var ErrNotFound = errors.New("datadir: microcontroller folder not found")

// NotFoundError lists the paths that were tried
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) == 0 {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s (tried %s)", ErrNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FindMicrocontrollerFolder returns the folder the game saves microcontrollers in.
// $SWMC_MICROPROCESSOR_DIR wins over the platform data directory.
func FindMicrocontrollerFolder() (string, error) {
	var tried []string
	if dir := os.Getenv(EnvDir); dir != "" {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return "", fmt.Errorf("datadir: %s: %w", EnvDir, err)
		}
		if isDir(expanded) {
			return expanded, nil
		}
		tried = append(tried, expanded)
	}

	base, err := dataDir()
	if err == nil {
		dir := filepath.Join(base, "Stormworks", "data", "microprocessors")
		if isDir(dir) {
			return dir, nil
		}
		tried = append(tried, dir)
	}
	return "", &NotFoundError{Tried: tried}
}

// dataDir is the per-user data directory of the platform
func dataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("datadir: APPDATA is not set")
	case "darwin":
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
