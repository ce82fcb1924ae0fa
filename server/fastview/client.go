package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = 1 * time.Second
	maxMessageSize = 8192

	// Snapshots are flushed at most this often; the page only needs the newest one.
	pubResolution  = 100 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	// Four missed pongs and the page is considered gone.
	pongWait = pingResolution * 4
)

var (
	ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")
	// ErrSockCongestion means a write waited too long for the socket.
	ErrSockCongestion error = errors.New("sock op failed due to congestion")
)

var upgrader = websocket.Upgrader{}

// client pushes view updates to one page. The page never sends data; reads only service
// control frames.
type client[T any] struct {
	updates <-chan T
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades the request. Each item on updates must fully describe the page state,
// since items arriving faster than the flush rate are coalesced to the newest.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*client[T], error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an http error.
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)

	return &client[T]{
		updates: updates,
		ws:      newWebsock(conn),
		rootCtx: r.Context(),
	}, nil
}

// Sync runs the reader, the pinger and the publisher until one of them stops. A page that
// disconnects and an update stream that closes both end it with nil.
func (cli *client[T]) Sync() error {
	ctx, cancel := context.WithCancel(cli.rootCtx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)

	until := func(fn func(context.Context) error) func() error {
		return func() error {
			defer cancel()
			return fn(groupCtx)
		}
	}
	group.Go(until(cli.readMessages))
	group.Go(until(cli.pingPong))
	group.Go(until(cli.publish))
	group.Go(func() error {
		// ReadMessage ignores contexts, so wake it with a deadline.
		<-groupCtx.Done()
		_ = cli.ws.Conn().SetReadDeadline(time.Now())
		return nil
	})

	err := group.Wait()
	if isClosure(err) {
		return nil
	}
	return err
}

func (cli *client[T]) Close() {
	cli.ws.Close()
}

// pingPong relies on readMessages: gorilla only runs the pong handler from inside a read.
func (cli *client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.Conn().SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pong:
			lastPong = time.Now()
		case _, ok := <-pinger:
			if !ok {
				return nil
			}
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			err := cli.ws.Write(ctx, func(conn *websocket.Conn) error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			})
			if isError(err) {
				return fmt.Errorf("ping failed: %w", err)
			}
			if err != nil {
				return err
			}
		}
	}
}

// readMessages discards whatever the page sends. A read error is permanent for the connection.
func (cli *client[T]) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(ctx, func(conn *websocket.Conn) error {
			_, _, err := conn.ReadMessage()
			return err
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// publish keeps only the newest update and writes it on each flush tick. When the stream
// closes, a pending update is written right away so the page ends on the final state.
func (cli *client[T]) publish(ctx context.Context) error {
	flush := channerics.NewTicker(ctx.Done(), pubResolution)
	var (
		latest  T
		pending bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-cli.updates:
			if !ok {
				if pending {
					return cli.send(ctx, latest)
				}
				return nil
			}
			latest, pending = update, true
		case _, ok := <-flush:
			if !ok {
				return nil
			}
			if !pending {
				continue
			}
			if err := cli.send(ctx, latest); err != nil {
				return err
			}
			pending = false
		}
	}
}

func (cli *client[T]) send(ctx context.Context, update T) error {
	return cli.ws.Write(ctx, func(conn *websocket.Conn) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
		err := conn.WriteJSON(update)
		if isError(err) {
			return fmt.Errorf("publish failed: %w", err)
		}
		return err
	})
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

const closeGracePeriod = time.Second

// websock allows one reader and one writer at a time, as gorilla requires. The semaphores
// are one-slot channels so a writer can give up after writeWait.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newWebsock(conn *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     conn,
	}
}

// Conn is for setup only, e.g. installing handlers before Sync.
func (sock *websock) Conn() *websocket.Conn {
	return sock.conn
}

// Close takes both semaphores for good, so it must run after Sync has returned.
func (sock *websock) Close() {
	sock.readSem <- struct{}{}
	sock.writeSem <- struct{}{}

	_ = sock.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.conn.Close()
}

// Read only contends with Close, so it waits for the semaphore without a timeout.
func (sock *websock) Read(ctx context.Context, readFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.conn)
	}
}

func (sock *websock) Write(ctx context.Context, writeFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.conn)
	case <-time.After(writeWait):
		return ErrSockCongestion
	}
}
