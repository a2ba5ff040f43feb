package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"storyboard/internal/services"
)

// startCommand launches a detached helper process.
var startCommand = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// RevealCommand returns the file-manager invocation that highlights target
// on the given platform.
func RevealCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{"-R", target}
	case "windows":
		return "explorer", []string{"/select,", target}
	default:
		return "xdg-open", []string{filepath.Dir(target)}
	}
}

// Reveal shows target in the platform file manager.
func Reveal(target string) error {
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, component, "reveal", target, err)
		}
		return services.Wrap(services.ErrIO, component, "reveal", target, err)
	}
	name, args := RevealCommand(runtime.GOOS, target)
	if err := startCommand(name, args...); err != nil {
		return services.Wrap(services.ErrIO, component, "reveal", fmt.Sprintf("launch %s", name), err)
	}
	return nil
}
