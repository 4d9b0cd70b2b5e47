/*
Headless capture of the voxel terrain renderer: builds the pipeline against a
recording device and logs the command stream of a few frames.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/terravox/engine"
	"github.com/spaghettifunk/terravox/engine/core"
)

func main() {
	configPath := flag.String("config", "terravox.toml", "path to the TOML configuration")
	flag.Parse()

	cfg := core.DefaultConfig()
	if _, err := os.Stat(*configPath); err == nil {
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			panic(err)
		}
	} else {
		core.LogWarn("config %s not found, using defaults", *configPath)
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		panic(err)
	}

	e, err := engine.New(cfg)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.Quit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err.Error())
	}
	if runErr != nil {
		panic(runErr)
	}
}
