package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "whisperbench"

// Env carries the environment inputs that decide per-user directories.
type Env struct {
	GOOS          string
	Home          string
	XDGDataHome   string
	XDGConfigHome string
	AppData       string
}

func CurrentEnv() (Env, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Env{}, fmt.Errorf("resolve user home: %w", err)
	}
	return Env{
		GOOS:          runtime.GOOS,
		Home:          home,
		XDGDataHome:   os.Getenv("XDG_DATA_HOME"),
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		AppData:       os.Getenv("APPDATA"),
	}, nil
}

func (e Env) DataDir() (string, error) {
	if e.Home == "" {
		return "", errors.New("home directory is empty")
	}

	switch e.GOOS {
	case "linux", "freebsd", "openbsd":
		if e.XDGDataHome != "" {
			return filepath.Join(e.XDGDataHome, appName), nil
		}
		return filepath.Join(e.Home, ".local", "share", appName), nil
	case "darwin":
		return filepath.Join(e.Home, "Library", "Application Support", appName), nil
	case "windows":
		if e.AppData != "" {
			return filepath.Join(e.AppData, appName), nil
		}
		return filepath.Join(e.Home, "AppData", "Roaming", appName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", e.GOOS)
	}
}

func (e Env) ConfigDir() (string, error) {
	if e.Home == "" {
		return "", errors.New("home directory is empty")
	}
	if e.GOOS == "windows" || e.GOOS == "darwin" {
		return e.DataDir()
	}
	if e.XDGConfigHome != "" {
		return filepath.Join(e.XDGConfigHome, appName), nil
	}
	return filepath.Join(e.Home, ".config", appName), nil
}

func (e Env) ModelDir() (string, error) {
	return e.subdir("models")
}

// LockDir holds the cross-process GPU lock.
func (e Env) LockDir() (string, error) {
	return e.subdir("locks")
}

func (e Env) subdir(name string) (string, error) {
	dataDir, err := e.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}

func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}
	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	return env.ModelDir()
}

func ResolveLockDir() (string, error) {
	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	return env.LockDir()
}

// DefaultConfigPath is the user-level config file location.
func DefaultConfigPath() (string, error) {
	env, err := CurrentEnv()
	if err != nil {
		return "", err
	}
	dir, err := env.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
