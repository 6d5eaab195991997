package main

import (
	"context"
	"github.com/emberhome/panel/config"
	"github.com/emberhome/panel/registry"
	"github.com/emberhome/panel/statesync"
	lw "github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"github.com/shimmeringbee/logwrap/impl/nest"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

func main() {
	ctx := context.Background()
	l := lw.New(golog.Wrap(log.New(os.Stderr, "", log.LstdFlags)))

	l.LogInfo(ctx, "Ember Home: Panel - Starting...")

	directories := enumerateDirectories(ctx, l)

	l.LogInfo(ctx, "Directory enumeration complete.", lw.Datum("directories", directories))

	l, err := configureLogging(strings.Join([]string{directories.Config, "logging"}, string(os.PathSeparator)), directories.Log, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to configure logging.", lw.Err(err))
	}

	settings, err := config.LoadSettings(filepath.Join(directories.Data, "settings.json"))
	if err != nil {
		l.LogFatal(ctx, "Failed to load operator settings.", lw.Err(err))
	}

	l.LogInfo(ctx, "Loaded operator settings.", lw.Datum("apiEndpoint", settings.Current().APIEndpoint), lw.Datum("debugMode", settings.Current().DebugMode))

	l.LogInfo(ctx, "Initialising device type registry.")
	reg := registry.New()

	if err := loadDeviceTypeConfigurations(strings.Join([]string{directories.Config, "types"}, string(os.PathSeparator)), reg, l); err != nil {
		l.LogFatal(ctx, "Failed to load device type configurations.", lw.Err(err))
	}

	bus := statesync.NewEventBus()

	client := statesync.NewClient(settings.Current().APIEndpoint)

	storeLogger := lw.New(nest.Wrap(l))
	storeLogger.AddOptionsToLogger(lw.Source("statesync"))

	store := statesync.NewStore(client, bus, storeLogger)

	interfaceCfgs, err := loadInterfaceConfigurations(strings.Join([]string{directories.Config, "interfaces"}, string(os.PathSeparator)))
	if err != nil {
		l.LogFatal(ctx, "Failed to load interface configurations.", lw.Err(err))
	}

	l.LogInfo(ctx, "Loaded interface configurations.", lw.Datum("configCount", len(interfaceCfgs)))

	deps := interfaceDependencies{
		store:    store,
		registry: reg,
		settings: settings,
		bus:      bus,
	}

	l.LogInfo(ctx, "Starting interfaces.")
	startedInterfaces, err := startInterfaces(interfaceCfgs, deps, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to start interfaces.", lw.Err(err))
	}

	if len(startedInterfaces) == 0 {
		l.LogWarn(ctx, "No interfaces configured, the panel is not reachable.")
	}

	l.LogInfo(ctx, "Panel ready.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, os.Kill)

	s := <-signalCh
	l.LogInfo(ctx, "Signal received, shutting down.", lw.Datum("signal", s.String()))

	for _, intf := range startedInterfaces {
		l.LogInfo(ctx, "Shutting down interface.", lw.Datum("interface", intf.Name))

		if err := intf.Shutdown(); err != nil {
			l.LogError(ctx, "Failed to shutdown interface.", lw.Err(err), lw.Datum("interface", intf.Name))
		}
	}

	l.LogInfo(ctx, "Stopping device monitors.")
	store.Stop()

	l.LogInfo(ctx, "Shut down complete.")
}
