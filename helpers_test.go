package goStrength

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"

	"github.com/MrEthical07/goStrength/strength"
)

type bundleServer struct {
	*httptest.Server
	hits atomic.Int64

	mu     sync.Mutex
	status int
	body   string
}

func newBundleServer(t testing.TB, body string) *bundleServer {
	t.Helper()
	s := &bundleServer{status: http.StatusOK, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		status, body := s.status, s.body
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *bundleServer) respond(status int, body string) {
	s.mu.Lock()
	s.status, s.body = status, body
	s.mu.Unlock()
}

func fixedEngines(score int) map[string]strength.Engine {
	return map[string]strength.Engine{
		"fixed": func(string, []string) (strength.Estimate, error) {
			return strength.Estimate{Score: score, Guesses: 1e6, GuessesLog10: 6}, nil
		},
	}
}

func testConfig(src string) Config {
	cfg := DefaultConfig()
	cfg.Loader.Src = src
	cfg.Loader.PollInterval = 5 * time.Millisecond
	cfg.Loader.FetchTimeout = 5 * time.Second
	return cfg
}

func buildTestEngine(t *testing.T, b *Builder) *Engine {
	t.Helper()
	e, err := b.WithLogger(testr.New(t)).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

type orderLog struct {
	mu    sync.Mutex
	order []int
}

func (o *orderLog) add(i int) func() {
	return func() {
		o.mu.Lock()
		o.order = append(o.order, i)
		o.mu.Unlock()
	}
}

func (o *orderLog) snapshot() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.order...)
}
