package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalPath returns the path of the override file that goes with a config file,
// ex. alfred.json5 -> alfred.local.json5
func LocalPath(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	return filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// It merges the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// os.ErrNotExist is returned when neither exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	return ReadConfigOver(name, out)
}

// ReadConfigOver is ReadConfig where the values in `defaults` are kept unless
// a file sets them.
func ReadConfigOver[T any](name string, defaults T) (T, error) {
	out := defaults
	allNotFound := true

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := LocalPath(name)
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return out, fmt.Errorf("%s: %w", localFilepath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}

	return out, nil
}

// FindRecursively goes up the filesystem from the working directory until the
// root to find a configuration file (or its local override) matching the name.
func FindRecursively(name string) (string, error) {
	root, err := filepath.Abs("/")
	if err != nil {
		return "", err
	}
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for current != root {
		candidate := filepath.Join(current, name)
		for _, path := range []string{candidate, LocalPath(candidate)} {
			if _, err := os.Stat(path); err == nil {
				return candidate, nil
			}
		}
		current = filepath.Dir(current)
	}

	return "", os.ErrNotExist
}

// ReadRecursively is ReadConfigOver on the first file FindRecursively finds.
func ReadRecursively[T any](name string, defaults T) (T, error) {
	path, err := FindRecursively(name)
	if err != nil {
		return defaults, err
	}
	return ReadConfigOver(path, defaults)
}
