// Command minigc-stress drives the minigc collector through YAML-described
// allocation workloads. It is the load harness used to soak the free-list
// and mark/sweep machinery outside the package tests.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"
	colorable "github.com/mattn/go-colorable"

	"github.com/orizon-lang/minigc/internal/cli"
)

func main() {
	// The collector contract is single-threaded; every collector call in
	// this process happens on this goroutine.
	runtime.LockOSThread()

	var (
		showVersion bool
		jsonOutput  bool
		scenario    string
		watch       bool
		trace       bool
	)

	flag.BoolVar(&showVersion, "version", false, "show version information")
	flag.BoolVar(&jsonOutput, "json", false, "output version in JSON format")
	flag.StringVar(&scenario, "scenario", "", "YAML scenario file to run")
	flag.BoolVar(&watch, "watch", false, "rerun the scenarios whenever the file changes")
	flag.BoolVar(&trace, "trace", false, "emit collector mark/sweep diagnostics to stderr")
	flag.Parse()

	if showVersion {
		cli.PrintVersion("minigc-stress", jsonOutput)
		return
	}
	if scenario == "" {
		cli.ExitWithError("a -scenario file is required")
	}

	out := colorable.NewColorableStdout()

	cfg, err := loadScenarios(scenario)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	if !watch {
		if err := runAll(cfg, trace, out); err != nil {
			cli.ExitWithError("%v", err)
		}
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cli.ExitWithError("cannot create watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(scenario); err != nil {
		cli.ExitWithError("cannot watch %s: %v", scenario, err)
	}

	for {
		if err := runAll(cfg, trace, out); err != nil {
			fmt.Fprintf(out, "%sx%s %v\n", colRed, colOff, err)
		}

		waitForChange(watcher)

		// Editors save in bursts; let the file settle, then drain the
		// remaining events before reloading.
		time.Sleep(100 * time.Millisecond)
		drainEvents(watcher)

		next, err := loadScenarios(scenario)
		if err != nil {
			fmt.Fprintf(out, "%sx%s %v (keeping previous scenarios)\n", colRed, colOff, err)
			continue
		}
		cfg = next
		fmt.Fprintf(out, "%s↻%s reloaded %s\n", colCyan, colOff, scenario)
	}
}

func waitForChange(watcher *fsnotify.Watcher) {
	for {
		select {
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				return
			}
		case err := <-watcher.Errors:
			cli.ExitWithError("watch: %v", err)
		}
	}
}

func drainEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-watcher.Events:
		case <-watcher.Errors:
		default:
			return
		}
	}
}
