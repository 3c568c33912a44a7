package main

import (
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/arthur-debert/stepfs/pkg/stepfs"
)

const (
	configBaseName = "stepfs"
	configFileName = configBaseName + ".yaml"

	envPrefix = "STEPFS"

	logLevelKey      = "log.level"
	logFilenameKey   = "log.filename"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	serveAddrKey      = "serve.addr"
	sandboxDirKey     = "sandbox.dir"
	sandboxInstallKey = "sandbox.install"
	sandboxDevKey     = "sandbox.dev"

	defaultLogLevel      = "warn"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true

	defaultServeAddr      = "127.0.0.1:8080"
	defaultSandboxDir     = ".stepfs-sandbox"
	defaultSandboxInstall = "npm install"
	defaultSandboxDev     = "npm run dev"
)

// logger is configured before any subcommand runs.
var logger = zerolog.Nop()

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logFilenameKey, "")
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)

	v.SetDefault(serveAddrKey, defaultServeAddr)
	v.SetDefault(sandboxDirKey, defaultSandboxDir)
	v.SetDefault(sandboxInstallKey, defaultSandboxInstall)
	v.SetDefault(sandboxDevKey, defaultSandboxDev)
}

// initConfig reads the config file, if any, and the STEPFS_* environment.
// A missing config file is not an error; an explicitly named one is.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setConfigDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return v.ReadInConfig()
	}

	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// configureLogger builds the CLI logger. Logs go to stderr unless
// log.filename is set, in which case they go to a rotated file.
func configureLogger(v *viper.Viper, stderr io.Writer) (zerolog.Logger, error) {
	level, err := stepfs.LogLevelFromString(v.GetString(logLevelKey))
	if err != nil {
		return zerolog.Nop(), err
	}

	var w io.Writer = stderr
	if filename := strings.TrimSpace(v.GetString(logFilenameKey)); filename != "" {
		w = &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    v.GetInt(logMaxSizeKey),
			MaxBackups: v.GetInt(logMaxBackupsKey),
			MaxAge:     v.GetInt(logMaxAgeKey),
			Compress:   v.GetBool(logCompressKey),
		}
	}
	return stepfs.NewLogger(w, level), nil
}
