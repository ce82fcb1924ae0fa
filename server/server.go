package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"autodrive/monitoring"
	"autodrive/server/cell_views"
	"autodrive/server/fastview"
	"autodrive/server/root_view"
	"autodrive/trials"

	"github.com/gorilla/mux"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves a single page of live trial views, its websocket, and a json stats endpoint.
// The views' update channel can be consumed by only one websocket client at a time.
type Server struct {
	addr     string
	trial    *trials.Trial
	rootView *root_view.RootView
	router   *mux.Router
	log      func(format string, v ...interface{})
}

// StatsResponse is the /stats payload.
type StatsResponse struct {
	Summary  trials.Summary          `json:"summary"`
	Episodes []trials.EpisodeSummary `json:"episodes"`
	Done     bool                    `json:"done"`
}

// NewServer initializes all of the views and routes and returns a server.
func NewServer(
	ctx context.Context,
	addr string,
	trial *trials.Trial,
	trialUpdates <-chan *trials.Trial,
) (*Server, error) {
	rootView, err := root_view.NewRootView(ctx, trial.Track, trialUpdates)
	if err != nil {
		return nil, err
	}

	server := &Server{
		addr:     addr,
		trial:    trial,
		rootView: rootView,
		log:      monitoring.Tagged("server"),
	}

	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/stats", server.serveStats).Methods(http.MethodGet)
	server.router = router

	return server, nil
}

// Handler exposes the routes, e.g. for httptest.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	server.log("serving on %s", server.addr)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveWebsocket publishes view updates to the client via websocket.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		server.log("upgrade: %v", err)
		return
	}
	defer cli.Close()

	if err := cli.Sync(); err != nil {
		server.log("sync: %v", err)
	}
}

// Serve the index.html main page, rendered with the trial's current cells.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	var page bytes.Buffer
	cells := cell_views.Convert(server.trial)
	if err := renderTemplate(&page, server.rootView, cells); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	_, _ = page.WriteTo(w)
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	episodes := server.trial.Summaries()
	done := false
	select {
	case <-server.trial.Done():
		done = true
	default:
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(StatsResponse{
		Summary:  trials.Summarize(episodes),
		Episodes: episodes,
		Done:     done,
	}); err != nil {
		server.log("stats: %v", err)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
