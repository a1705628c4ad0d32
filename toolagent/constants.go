package toolagent

import (
	"os"
	"path/filepath"
)

const (
	DefaultAppName      = "toolagent"
	DefaultDatabaseType = "libsql"
	DefaultQuery        = "How's the weather in Paris?"
)

var (
	DefaultConfigPath  = filepath.Join(userConfigDir(), DefaultAppName)
	DefaultCacheDir    = filepath.Join(userCacheDir(), DefaultAppName)
	DefaultDatabaseDir = filepath.Join(DefaultCacheDir, "db")
	DefaultDatabaseDSN = filepath.Join(DefaultDatabaseDir, "documents.db")
)

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}
