package trials

/*
A trial runs many independent episodes of a controller driving a simulated car over a track.
Each worker owns its cars and controllers outright; the only shared state is the heatmap and the
summaries, written by the single aggregator goroutine and read by the views.
*/

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"autodrive/controller"
	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/monitoring"
	"autodrive/simulation"

	"github.com/google/uuid"
	channerics "github.com/niceyeti/channerics/channels"
)

var ErrNoStarts error = errors.New("no configured vehicles and no start cells on the track")

// Step is one tick of an episode, after the car has moved.
type Step struct {
	Tick        int
	Point       geometry.Point
	Orientation geometry.Orientation
	Velocity    float64
	State       controller.HazardState
}

// Episode is one drive from a start until the finish, the tick limit, or cancellation.
type Episode struct {
	ID      string
	Start   Start
	Steps   []Step
	Events  []controller.Event
	Summary EpisodeSummary
}

// EpisodeSummary is the part of an episode kept after aggregation.
type EpisodeSummary struct {
	ID          string  `json:"id"`
	Ticks       int     `json:"ticks"`
	Collisions  int     `json:"collisions"`
	HazardTicks int     `json:"hazardTicks"`
	Avoidances  int     `json:"avoidances"`
	Skips       int     `json:"skips"`
	DeadEnds    int     `json:"deadEnds"`
	Finished    bool    `json:"finished"`
	PeakSpeed   float64 `json:"peakSpeed"`
}

// ProgressFunc is a callback by which the trial reports itself and the number of completed episodes,
// while exercising some level of control over its cancellation to prevent blocking.
// ProgressFunc is synchronous/blocking and should be defined to complete quickly.
type ProgressFunc func(context.Context, *Trial, int)

// Trial collects the results of a running batch of episodes.
type Trial struct {
	Track   *grid_world.Track
	Heatmap *Heatmap

	mu        sync.Mutex
	summaries []EpisodeSummary
	latest    *Episode

	done chan struct{}
}

// Run is async: it deploys nworkers episode workers and returns immediately. Done() closes once
// every episode has been aggregated or ctx is cancelled.
func Run(
	ctx context.Context,
	track *grid_world.Track,
	cfg *TrialConfig,
	nworkers int,
	progressFn ProgressFunc,
) (*Trial, error) {
	starts, err := cfg.Starts()
	if err != nil {
		return nil, err
	}
	startCells := track.StartCells()
	if len(starts) == 0 && len(startCells) == 0 {
		return nil, ErrNoStarts
	}
	if nworkers < 1 {
		nworkers = 1
	}

	trial := &Trial{
		Track:   track,
		Heatmap: NewHeatmap(track.Width, track.Height),
		done:    make(chan struct{}),
	}

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for n := 0; n < cfg.Episodes; n++ {
			select {
			case jobs <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	seed := time.Now().UnixNano()
	workers := []<-chan *Episode{}
	for i := 0; i < nworkers; i++ {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		chooseStart := func(n int) Start {
			if len(starts) > 0 {
				return starts[n%len(starts)]
			}
			return getRandomStart(track, startCells, rng)
		}
		workers = append(workers, episodeWorker(ctx.Done(), jobs, track, cfg, chooseStart))
	}

	// Fan in the workers; the aggregator is the only writer of trial state.
	episodes := channerics.Merge(ctx.Done(), workers...)
	go trial.aggregate(ctx, episodes, progressFn)
	return trial, nil
}

func episodeWorker(
	done <-chan struct{},
	jobs <-chan int,
	track *grid_world.Track,
	cfg *TrialConfig,
	chooseStart func(int) Start,
) <-chan *Episode {
	episodes := make(chan *Episode)
	go func() {
		defer close(episodes)

		for n := range jobs {
			episode, err := runEpisode(done, track, cfg, chooseStart(n))
			if err != nil {
				monitoring.Logf("episode %d: %v", n, err)
				continue
			}

			select {
			case episodes <- episode:
			case <-done:
				return
			}
		}
	}()
	return episodes
}

func runEpisode(
	done <-chan struct{},
	track *grid_world.Track,
	cfg *TrialConfig,
	start Start,
) (*Episode, error) {
	car, err := simulation.NewCar(track, start.Point, start.Heading, cfg.Physics)
	if err != nil {
		return nil, err
	}
	car.SetVelocity(start.Velocity)

	episode := &Episode{
		ID:    "ep_" + uuid.NewString(),
		Start: start,
	}
	ctrl, err := controller.New(
		car,
		cfg.Controller,
		controller.WithObserver(func(ev controller.Event) {
			episode.Events = append(episode.Events, ev)
		}),
		controller.WithLogger(monitoring.Tagged(episode.ID)),
	)
	if err != nil {
		return nil, fmt.Errorf("episode %s: %w", episode.ID, err)
	}

	simulation.Run(car, ctrl, cfg.MaxTicks, func(tick int) bool {
		point, _ := car.Position()
		episode.Steps = append(episode.Steps, Step{
			Tick:        tick,
			Point:       point,
			Orientation: car.Orientation(),
			Velocity:    car.Velocity(),
			State:       ctrl.State(),
		})

		// done-guard
		select {
		case <-done:
			return false
		default:
			return true
		}
	})

	episode.Summary = summarizeEpisode(episode, car)
	return episode, nil
}

func summarizeEpisode(episode *Episode, car *simulation.Car) EpisodeSummary {
	summary := EpisodeSummary{
		ID:          episode.ID,
		Ticks:       car.Ticks(),
		Collisions:  car.Collisions(),
		HazardTicks: car.HazardTicks(),
		Finished:    car.Finished(),
	}
	for _, ev := range episode.Events {
		switch {
		case ev.Kind == controller.EventTransition && ev.To == controller.TURN_AWAY:
			summary.Avoidances++
		case ev.Kind == controller.EventAvoidanceSkipped:
			summary.Skips++
		case ev.Kind == controller.EventDeadEnd:
			summary.DeadEnds++
		}
	}
	for _, step := range episode.Steps {
		summary.PeakSpeed = math.Max(summary.PeakSpeed, math.Abs(step.Velocity))
	}
	return summary
}

// Estimator-style aggregation: fold each episode into the heatmap and summaries.
func (t *Trial) aggregate(ctx context.Context, episodes <-chan *Episode, progressFn ProgressFunc) {
	defer close(t.done)

	count := 0
	for episode := range episodes {
		for _, step := range episode.Steps {
			t.Heatmap.Visit(geometry.ToCell(step.Point), step.Orientation)
		}

		t.mu.Lock()
		t.summaries = append(t.summaries, episode.Summary)
		t.latest = episode
		t.mu.Unlock()

		count++
		if progressFn != nil {
			progressFn(ctx, t, count)
		}
	}
}

// Done closes when the trial has finished or was cancelled.
func (t *Trial) Done() <-chan struct{} {
	return t.done
}

// Summaries returns a copy of the per-episode summaries so far.
func (t *Trial) Summaries() []EpisodeSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]EpisodeSummary(nil), t.summaries...)
}

// Latest returns the most recently aggregated episode, or nil.
func (t *Trial) Latest() *Episode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Summary aggregates the summaries so far.
func (t *Trial) Summary() Summary {
	return Summarize(t.Summaries())
}

// For random starts, grab a random start cell and head down the longest open run from it.
func getRandomStart(track *grid_world.Track, cells []geometry.Position, rng *rand.Rand) Start {
	cell := cells[rng.Intn(len(cells))]
	return Start{
		Point:   cell.Center(),
		Heading: openHeading(track, cell),
	}
}

func openHeading(track *grid_world.Track, cell geometry.Position) (heading geometry.Orientation) {
	longest := -1
	for _, o := range geometry.Orientations {
		run := 0
		for track.At(cell.Offset(o, run+1)) != grid_world.WALL {
			run++
		}
		if run > longest {
			longest = run
			heading = o
		}
	}
	return
}
