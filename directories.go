package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/peterbourgon/ff/v3"
	"github.com/shimmeringbee/logwrap"
)

const DefaultDirectoryPermissions = 0700

type Directories struct {
	Config string
	Data   string
	Log    string
}

// enumerateDirectories resolves the configuration, data and log directories
// from flags or environment, creating any that are missing.
func enumerateDirectories(ctx context.Context, l logwrap.Logger) Directories {
	fs := flag.NewFlagSet("panel", flag.ExitOnError)

	configDirectory := directoryFlag(ctx, fs, l, "config")
	dataDirectory := directoryFlag(ctx, fs, l, "data")
	logDirectory := directoryFlag(ctx, fs, l, "log")

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix()); err != nil {
		l.LogFatal(ctx, "Failed to parse environment/command line arguments.", logwrap.Err(err))
	}

	directories := Directories{
		Config: *configDirectory,
		Data:   *dataDirectory,
		Log:    *logDirectory,
	}

	for _, directory := range []string{directories.Config, directories.Data, directories.Log} {
		if err := os.MkdirAll(directory, DefaultDirectoryPermissions); err != nil {
			l.LogFatal(ctx, "Failed to initialise directory.", logwrap.Datum("directory", directory), logwrap.Err(err))
		}
	}

	return directories
}

func directoryFlag(ctx context.Context, fs *flag.FlagSet, l logwrap.Logger, kind string) *string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		l.LogFatal(ctx, "Failed to locate the user configuration directory.", logwrap.Err(err))
	}

	return fs.String(kind+"-directory", filepath.Join(configDir, "emberhome", "panel", kind), "location of "+kind+" files")
}
