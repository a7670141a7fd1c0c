/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/avenir/engine"
	"github.com/spaghettifunk/avenir/engine/core"
	"github.com/spaghettifunk/avenir/testbed"
)

func main() {
	configPath := flag.String("config", "avenir.toml", "path to the engine configuration")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}

	tb := testbed.NewTestGame()

	e, err := engine.New(tb.Game, cfg)
	if err != nil {
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		e.Stop()
	}()

	exitCode := 0
	if err := e.Initialize(); err != nil {
		core.LogError("initialization failed: %s", err)
		exitCode = 1
	} else if err := e.Run(); err != nil {
		exitCode = 1
	}

	if err := e.Shutdown(); err != nil {
		core.LogError("%s", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}
