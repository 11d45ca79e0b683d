package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jakopako/cursorwatch/config"
	"github.com/jakopako/cursorwatch/fetch"
	"github.com/jakopako/cursorwatch/log"
	"github.com/jakopako/cursorwatch/notify"
	"github.com/jakopako/cursorwatch/output"
	"github.com/jakopako/cursorwatch/schedule"
	"github.com/jakopako/cursorwatch/scraper"
)

var version = "dev"

const onceLoginTimeout = 330 * time.Second
const onceFetchTimeout = 90 * time.Second

func main() {
	configLoc := flag.String("c", config.DefaultPath(), "The location of the configuration file.")
	once := flag.Bool("once", false, "Fetch the usage data once, print it and exit.")
	jsonOut := flag.Bool("json", false, "Print the status as json instead of a table. Works in combination with the -once flag.")
	login := flag.Bool("login", false, "Open a browser window to log in to the dashboard first.")
	debugFlag := flag.Bool("debug", false, "Prints debug logs.")
	printVersion := flag.Bool("v", false, "The version of cursorwatch.")

	flag.Parse()

	if *printVersion {
		buildInfo, ok := debug.ReadBuildInfo()
		if ok {
			if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
				fmt.Println(buildInfo.Main.Version)
				return
			}
		}
		fmt.Println(version)
		return
	}

	config.Debug = *debugFlag
	log.InitializeDefaultLogger()

	c, err := config.New(*configLoc)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}

	launcher := fetch.NewLauncher(&fetch.Config{
		ProfileDir: c.ProfileDir,
		UserAgent:  c.UserAgent,
	})
	worker := scraper.NewWorker(c.DashboardURL, time.Duration(c.PageLoadWaitMS)*time.Millisecond, launcher)
	worker.Start()
	defer worker.Stop()

	if *login {
		worker.RequestLogin()
	} else {
		worker.RequestFetch()
	}

	if *once {
		timeout := onceFetchTimeout
		if *login {
			timeout = onceLoginTimeout
		}
		runOnce(worker, *jsonOut, timeout)
		return
	}

	poller := schedule.NewPoller(worker, schedule.Policy{
		IntervalMinutes: c.IntervalMinutes,
		WorkHourStart:   c.WorkHourStart,
		WorkHourEnd:     c.WorkHourEnd,
	})
	poller.Start()
	defer poller.Stop()

	notifier := notify.New(c.AlertOnMaxMode, c.AlertOnThinkingMode)

	watch := output.NewWatch(worker, poller, notifier)

	// a signal stops the ui, the deferred calls take care of the rest
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		worker.Stop()
		os.Exit(0)
	}()

	if err := watch.Run(); err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}
}

// runOnce waits for the requested operation to finish and prints the result.
func runOnce(worker *scraper.Worker, asJSON bool, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		v := worker.State().View()
		if v.LastFetchTime != "" || v.LastError != "" {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}

	v := worker.State().View()
	if asJSON {
		if err := output.WriteJSON(os.Stdout, v); err != nil {
			slog.Error(fmt.Sprintf("%v", err))
			os.Exit(1)
		}
		return
	}
	output.WriteTable(os.Stdout, v)
}
