package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"autodrive/monitoring"
	"autodrive/trials"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `
kind: trial
def:
  track: bypass
  episodes: 3
  maxticks: 80
  vehicles:
    - start: "2,4"
      heading: east
      velocity: 1.5
`

func TestParseFlags(t *testing.T) {
	Convey("When parsing flags", t, func() {
		opts, err := parseFlags([]string{"-port", "9000", "-nworkers", "2", "-serve=false"})
		So(err, ShouldBeNil)
		So(opts.addr(), ShouldEqual, ":9000")
		So(opts.nworkers, ShouldEqual, 2)
		So(opts.serve, ShouldBeFalse)
		So(opts.configPath, ShouldEqual, "./config.yaml")

		_, err = parseFlags([]string{"-nworkers", "0"})
		So(err, ShouldNotBeNil)
		_, err = parseFlags([]string{"-bogus"})
		So(err, ShouldNotBeNil)
	})
}

func TestRunApp(t *testing.T) {
	monitoring.SetLogger(nil)

	Convey("Given a headless run with plotting", t, func() {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.yaml")
		So(os.WriteFile(configPath, []byte(testConfig), 0o644), ShouldBeNil)
		plotDir := filepath.Join(dir, "plots")

		opts := &options{
			nworkers:   2,
			configPath: configPath,
			plotDir:    plotDir,
		}
		So(runApp(context.Background(), opts), ShouldBeNil)

		Convey("The last episode is plotted", func() {
			files, err := filepath.Glob(filepath.Join(plotDir, "ep_*.png"))
			So(err, ShouldBeNil)
			So(files, ShouldHaveLength, 2)
		})
	})

	Convey("A missing config is an error", t, func() {
		opts := &options{nworkers: 1, configPath: filepath.Join(t.TempDir(), "missing.yaml")}
		So(runApp(context.Background(), opts), ShouldNotBeNil)
	})

	Convey("The shipped config loads", t, func() {
		opts := &options{nworkers: 1, configPath: "./config.yaml"}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		So(runApp(ctx, opts), ShouldBeNil)
	})
}

func TestAwaitReport(t *testing.T) {
	Convey("Given a finished trial whose plots cannot be written", t, func() {
		cfg := trials.DefaultTrialConfig()
		cfg.Track = "bypass"
		cfg.Episodes = 1
		cfg.MaxTicks = 40
		cfg.Vehicles = []trials.VehicleSpec{{Start: "2,4", Heading: "east", Velocity: 1.5}}
		track, err := cfg.LoadTrack()
		So(err, ShouldBeNil)
		trial, err := trials.Run(context.Background(), track, cfg, 1, nil)
		So(err, ShouldBeNil)
		<-trial.Done()

		// A plain file where the plot directory should go.
		blocker := filepath.Join(t.TempDir(), "plots")
		So(os.WriteFile(blocker, nil, 0o644), ShouldBeNil)

		Convey("The failure is logged and still returned", func() {
			var logged []string
			logf := func(format string, v ...interface{}) {
				logged = append(logged, fmt.Sprintf(format, v...))
			}
			err := <-awaitReport(trial, blocker, logf)
			So(err, ShouldNotBeNil)
			So(logged, ShouldHaveLength, 1)
			So(logged[0], ShouldContainSubstring, "trial report failed")
		})

		Convey("Without a logger the failure is only returned", func() {
			So(<-awaitReport(trial, blocker, nil), ShouldNotBeNil)
		})

		Convey("Without a plot directory the report succeeds", func() {
			So(<-awaitReport(trial, "", nil), ShouldBeNil)
		})
	})
}
