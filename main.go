/*
Autodrive runs a tick-driven vehicle controller against simulated tracks. Each trial drives many
episodes concurrently: the controller follows the left wall, and when a hazard shows up ahead it
runs an avoidance maneuver (turn away, search for the least obstructed gap, back up to it, cross,
and recover the original heading). Results stream to a single page of live views, to the
terminal, or just to the log, and the last episode can be plotted to png.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"autodrive/console_view"
	"autodrive/monitoring"
	"autodrive/server"
	"autodrive/trace_plot"
	"autodrive/trials"

	"github.com/gdamore/tcell/v2"
	channerics "github.com/niceyeti/channerics/channels"
)

const refreshPeriod = time.Second

type options struct {
	debug      bool
	nworkers   int
	host       string
	port       string
	configPath string
	plotDir    string
	console    bool
	serve      bool
}

func (opts *options) addr() string {
	return opts.host + ":" + opts.port
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("autodrive", flag.ContinueOnError)
	fs.BoolVar(&opts.debug, "debug", false, "debug mode: print the track and log every state transition")
	fs.IntVar(&opts.nworkers, "nworkers", runtime.NumCPU(), "number of episode worker routines")
	fs.StringVar(&opts.host, "host", "", "The host ip")
	fs.StringVar(&opts.port, "port", "8080", "The host port")
	fs.StringVar(&opts.configPath, "config", "./config.yaml", "trial definition")
	fs.StringVar(&opts.plotDir, "plot", "", "if set, write trace and speed plots of the last episode here")
	fs.BoolVar(&opts.console, "console", false, "draw the trial in the terminal instead of serving it")
	fs.BoolVar(&opts.serve, "serve", true, "serve the live views over http")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.nworkers < 1 {
		return nil, fmt.Errorf("nworkers must be positive, got %d", opts.nworkers)
	}
	return opts, nil
}

func runApp(appCtx context.Context, opts *options) (err error) {
	monitoring.SetDebug(opts.debug)

	var cfg *trials.TrialConfig
	if cfg, err = trials.FromYaml(opts.configPath); err != nil {
		return
	}

	trialCtx, trialCancel, err := cfg.WithTrialDeadline(appCtx)
	if err != nil {
		return
	}
	defer trialCancel()

	track, err := cfg.LoadTrack()
	if err != nil {
		return
	}
	if opts.debug && !opts.console {
		track.ShowGrid()
	}
	if opts.console {
		// The log would scribble over the screen.
		monitoring.SetLogger(nil)
	}

	trialUpdates := make(chan *trials.Trial)
	trial, err := trials.Run(
		trialCtx,
		track,
		cfg,
		opts.nworkers,
		exportTrial(trialUpdates))
	if err != nil {
		return
	}

	if !opts.console && !opts.serve {
		select {
		case err = <-awaitReport(trial, opts.plotDir, nil):
		case <-appCtx.Done():
		}
		return
	}

	// The views outlive the trial, so a failed report is logged when it happens.
	finished := awaitReport(trial, opts.plotDir, monitoring.Logf)
	if opts.console {
		err = runConsole(appCtx, trial)
	} else {
		go refresh(appCtx, trial, trialUpdates)
		err = runServer(appCtx, opts.addr(), trial, trialUpdates)
	}
	if err == nil {
		select {
		case err = <-finished:
		default:
		}
	}
	return
}

// awaitReport reports the trial once it is done. A non-nil logf also logs a failed report.
func awaitReport(
	trial *trials.Trial,
	plotDir string,
	logf func(format string, v ...interface{}),
) <-chan error {
	finished := make(chan error, 1)
	go func() {
		<-trial.Done()
		err := report(trial, plotDir)
		if err != nil && logf != nil {
			logf("trial report failed: %v", err)
		}
		finished <- err
	}()
	return finished
}

// exportTrial pushes the trial to the views as episodes complete, dropping the update when the
// views are busy so the trial never waits on them.
func exportTrial(updates chan<- *trials.Trial) trials.ProgressFunc {
	return func(ctx context.Context, trial *trials.Trial, episodeCount int) {
		if episodeCount%100 == 0 {
			monitoring.Debugf("%d episodes complete", episodeCount)
		}
		select {
		case updates <- trial:
		case <-ctx.Done():
		default:
		}
	}
}

// refresh keeps the views current after the trial has stopped producing progress.
func refresh(ctx context.Context, trial *trials.Trial, updates chan<- *trials.Trial) {
	for range channerics.NewTicker(ctx.Done(), refreshPeriod) {
		select {
		case updates <- trial:
		case <-ctx.Done():
			return
		default:
		}
	}
}

func report(trial *trials.Trial, plotDir string) error {
	summary := trial.Summary()
	monitoring.Logf(
		"trial done: %d episodes, mean ticks %.1f (sd %.1f), avoidances %d, skips %d, collisions %d, finish rate %.2f",
		summary.Episodes, summary.MeanTicks, summary.StdTicks,
		summary.Avoidances, summary.Skips, summary.Collisions, summary.FinishRate)

	latest := trial.Latest()
	if plotDir == "" || latest == nil {
		return nil
	}
	files, err := trace_plot.Save(trial.Track, latest, plotDir)
	if err != nil {
		return err
	}
	monitoring.Logf("wrote %v", files)
	return nil
}

func runServer(
	ctx context.Context,
	addr string,
	trial *trials.Trial,
	trialUpdates <-chan *trials.Trial,
) error {
	srv, err := server.NewServer(ctx, addr, trial, trialUpdates)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func runConsole(ctx context.Context, trial *trials.Trial) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return console_view.NewConsole(screen, trial.Track).Run(ctx, trial)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Println(err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runApp(ctx, opts); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
