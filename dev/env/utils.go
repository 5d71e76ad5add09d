package devenv

import (
	"alfred/lib/configutil"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

var modName = regexp.MustCompile(`(?m)^module *([\w\-_/.]+)$`)

func isWorkspaceRoot(currentdir string) bool {
	mod, err := os.ReadFile(filepath.Join(currentdir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == "alfred"
}

func GetWorkspaceRoot() (string, error) {
	currentdir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs("/")
	if err != nil {
		return "", err
	}

	for currentdir != root {
		isRoot := isWorkspaceRoot(currentdir)
		if !isRoot {
			currentdir = filepath.Join(currentdir, "..")
			continue
		}
		return currentdir, nil
	}

	return "", os.ErrNotExist
}

func GetStateFilePath(path string) (string, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state", path), nil
}

func GetStateConfig[T any](path string) (T, error) {
	configPath, err := GetStateFilePath(path)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](configPath)
}

// RequireLiveConfig loads a live test account or skips the test when there is none.
func RequireLiveConfig(t testing.TB, path string) LiveConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("live test skipped in short mode")
	}
	config, err := GetStateConfig[LiveConfig](path)
	if os.IsNotExist(err) {
		t.Skipf("no live test config at dev/.state/%s", path)
	}
	if err != nil {
		t.Fatal(err)
	}
	if config.Username == "" || config.Password == "" {
		t.Skipf("dev/.state/%s has no credentials", path)
	}
	return config
}
