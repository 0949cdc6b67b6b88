package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/username/ctxc-desktop/internal/backend"
	"github.com/username/ctxc-desktop/internal/notify"
	"github.com/username/ctxc-desktop/internal/tray"
	"github.com/username/ctxc-desktop/internal/window"
	"go.uber.org/zap"
)

type fakeHost struct {
	mu      sync.Mutex
	hooks   []func(ctx context.Context)
	calls   []string
	emitted []string

	ctx    context.Context
	cancel context.CancelFunc
	quit   chan struct{}
	once   sync.Once
}

func newFakeHost() *fakeHost {
	ctx, cancel := context.WithCancel(context.Background())
	return &fakeHost{ctx: ctx, cancel: cancel, quit: make(chan struct{})}
}

func (h *fakeHost) OnStartup(fn func(ctx context.Context)) {
	h.hooks = append(h.hooks, fn)
}

func (h *fakeHost) Run() error {
	for _, fn := range h.hooks {
		fn(h.ctx)
	}
	<-h.quit
	return nil
}

func (h *fakeHost) Quit() {
	h.once.Do(func() {
		h.cancel()
		close(h.quit)
	})
}

func (h *fakeHost) Window(label string) (window.Window, bool) {
	if label != window.MainLabel {
		return nil, false
	}
	return h, true
}

func (h *fakeHost) Show() error  { h.record("show"); return nil }
func (h *fakeHost) Focus() error { h.record("focus"); return nil }

func (h *fakeHost) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *fakeHost) Emit(event string, payload interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emitted = append(h.emitted, fmt.Sprintf("%s:%v", event, payload))
	return nil
}

func (h *fakeHost) snapshot() ([]string, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...), append([]string(nil), h.emitted...)
}

type fakeTray struct {
	events chan tray.MenuAction
	closed chan struct{}
}

func (t *fakeTray) Events() <-chan tray.MenuAction { return t.events }
func (t *fakeTray) Close()                         { close(t.closed) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartAbortsWhenTrayFails(t *testing.T) {
	host := newFakeHost()
	startTray := func() (TrayEvents, error) {
		return nil, fmt.Errorf("%w: no status notifier", tray.ErrTrayInit)
	}
	dispatcher := tray.NewDispatcher(nil, nil, nil, func(int) {}, zap.NewNop())

	errCh := make(chan error, 1)
	go func() { errCh <- NewDaemon(host, startTray, dispatcher, zap.NewNop()).Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, tray.ErrTrayInit) {
			t.Errorf("Start() error = %v, want ErrTrayInit", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after tray failure")
	}
}

func TestStartDispatchesTrayClicks(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, r.Method+" "+r.URL.Path+" "+string(body))
		mu.Unlock()
	}))
	defer server.Close()

	host := newFakeHost()
	trayEvents := &fakeTray{events: make(chan tray.MenuAction), closed: make(chan struct{})}
	startTray := func() (TrayEvents, error) { return trayEvents, nil }

	client := backend.NewClient(func() string { return server.URL }, zap.NewNop())
	emitter := notify.NewEmitter(host, nil, "", zap.NewNop())
	windows := window.NewManager(host, zap.NewNop())
	var exits []int
	dispatcher := tray.NewDispatcher(windows, client, emitter, func(code int) {
		exits = append(exits, code)
		host.Quit()
	}, zap.NewNop())

	errCh := make(chan error, 1)
	go func() { errCh <- NewDaemon(host, startTray, dispatcher, zap.NewNop()).Start() }()

	trayEvents.events <- tray.ActionOpen
	trayEvents.events <- tray.ActionIngest
	trayEvents.events <- "bogus"

	waitFor(t, func() bool {
		_, emitted := host.snapshot()
		return len(emitted) == 1
	})

	calls, emitted := host.snapshot()
	if len(calls) != 2 || calls[0] != "show" || calls[1] != "focus" {
		t.Errorf("window calls = %v", calls)
	}
	if emitted[0] != "ingest-finished:{Ingest triggered}" {
		t.Errorf("emitted = %v", emitted)
	}
	mu.Lock()
	if len(bodies) != 1 || bodies[0] != `POST /ingest {"all":true}` {
		t.Errorf("backend requests = %v", bodies)
	}
	mu.Unlock()

	trayEvents.events <- tray.ActionQuit

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after quit")
	}

	if len(exits) != 1 || exits[0] != 0 {
		t.Errorf("exits = %v, want [0]", exits)
	}

	select {
	case <-trayEvents.closed:
	case <-time.After(2 * time.Second):
		t.Error("tray was not closed")
	}
}
