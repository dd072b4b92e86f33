// Package setup resolves program directories and file paths.
package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vidrelay/internal/domain/consts"
)

const (
	vDir = ".vidrelay"

	dbFile       = "vidrelay.db"
	logFile      = "vidrelay.log"
	downloadsDir = "downloads"
)

// Paths holds the resolved program locations.
type Paths struct {
	DataDir      string
	DownloadsDir string
	DBFilePath   string
	LogFilePath  string
}

// DefaultDataDir returns the default data directory in the user's home.
func DefaultDataDir() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("failed to get home directory")
	}
	return filepath.Join(dir, vDir), nil
}

// InitDirs creates the data and downloads directories and resolves file paths.
//
// Empty dbPath or logPath fall back to files inside dataDir.
func InitDirs(dataDir, dbPath, logPath string) (Paths, error) {
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDataDir(); err != nil {
			return Paths{}, err
		}
	}

	p := Paths{
		DataDir:      dataDir,
		DownloadsDir: filepath.Join(dataDir, downloadsDir),
		DBFilePath:   dbPath,
		LogFilePath:  logPath,
	}
	if p.DBFilePath == "" {
		p.DBFilePath = filepath.Join(dataDir, dbFile)
	}
	if p.LogFilePath == "" {
		p.LogFilePath = filepath.Join(dataDir, logFile)
	}

	if err := os.MkdirAll(p.DownloadsDir, consts.PermsGenericDir); err != nil {
		return Paths{}, fmt.Errorf("failed to make directories: %w", err)
	}
	return p, nil
}
