package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zewif/zcashd-migrate/internal/core/application"
	"github.com/zewif/zcashd-migrate/pkg/zaddr"
)

const (
	// DatadirKey is the local data directory where exports, backups and
	// metrics are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the zcash network (main, test, regtest) assumed for
	// snapshots that don't name one
	NetworkKey = "NETWORK"
	// SnapshotFileKey is the path of the decoded wallet snapshot to migrate
	SnapshotFileKey = "SNAPSHOT_FILE"
	// DbDirKey is the directory of the export store. Defaults to <datadir>/db
	DbDirKey = "DB_DIR"
	// WorkersKey bounds the number of transactions processed concurrently.
	// Zero means one per CPU
	WorkersKey = "WORKERS"
	// EmptyTreePolicyKey tells what to do with note positions when the wallet
	// has no tree state: skip or placeholder
	EmptyTreePolicyKey = "EMPTY_TREE_POLICY"
	// MetricsFileKey is the path of the prometheus textfile written at the
	// end of a run. Nothing is written if empty
	MetricsFileKey = "METRICS_FILE"
	// NoBackupKey is used to overwrite a previous export without archiving
	// it first
	NoBackupKey = "NO_BACKUP"

	DbLocation     = "db"
	BackupLocation = "backup"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("zmigrate", false)

	// flagKeys maps command line flags to the config keys they override.
	flagKeys = map[string]string{
		"datadir":           DatadirKey,
		"log-level":         LogLevelKey,
		"network":           NetworkKey,
		"snapshot":          SnapshotFileKey,
		"db-dir":            DbDirKey,
		"workers":           WorkersKey,
		"empty-tree-policy": EmptyTreePolicyKey,
		"metrics-file":      MetricsFileKey,
		"no-backup":         NoBackupKey,
	}
)

// InitConfig loads the configuration from the environment (ZMIGRATE_
// prefix) and from the given flags, if any. Flags explicitly set on the
// command line take precedence over env vars.
func InitConfig(flags *pflag.FlagSet) error {
	vip = viper.New()
	vip.SetEnvPrefix("ZMIGRATE")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(NetworkKey, zaddr.MainNet.String())
	vip.SetDefault(WorkersKey, 0)
	vip.SetDefault(EmptyTreePolicyKey, application.EmptyTreeSkip.String())
	vip.SetDefault(NoBackupKey, false)

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := vip.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return cleanAndExpandPath(GetString(DatadirKey))
}

// GetDbDir returns the export store directory.
func GetDbDir() string {
	if dir := GetString(DbDirKey); dir != "" {
		return cleanAndExpandPath(dir)
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

// GetBackupDir returns the directory where previous exports are archived.
func GetBackupDir() string {
	return filepath.Join(GetDatadir(), BackupLocation)
}

func GetSnapshotFile() string {
	return cleanAndExpandPath(GetString(SnapshotFileKey))
}

func GetMetricsFile() string {
	return cleanAndExpandPath(GetString(MetricsFileKey))
}

func GetLogLevel() log.Level {
	return log.Level(GetInt(LogLevelKey))
}

func GetNetwork() zaddr.Network {
	// Validated at init.
	net, _ := zaddr.ParseNetwork(GetString(NetworkKey))
	return net
}

func GetEmptyTreePolicy() application.EmptyTreePolicy {
	policy, _ := application.ParseEmptyTreePolicy(GetString(EmptyTreePolicyKey))
	return policy
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	level := GetInt(LogLevelKey)
	if level < int(log.PanicLevel) || level > int(log.TraceLevel) {
		return fmt.Errorf(
			"%s must be in range [%d, %d]",
			LogLevelKey, log.PanicLevel, log.TraceLevel,
		)
	}

	if _, err := zaddr.ParseNetwork(GetString(NetworkKey)); err != nil {
		return err
	}

	if GetInt(WorkersKey) < 0 {
		return fmt.Errorf("%s must not be negative", WorkersKey)
	}

	if _, err := application.ParseEmptyTreePolicy(
		GetString(EmptyTreePolicyKey),
	); err != nil {
		return err
	}

	return nil
}

func initDatadir() error {
	if err := makeDirectoryIfNotExists(GetDatadir()); err != nil {
		return err
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv("HOME")
		}
		path = homeDir + path[1:]
	}

	return filepath.Clean(os.ExpandEnv(path))
}
