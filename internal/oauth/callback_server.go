package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"codeassist/pkg/logging"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTimeout is how long an unused callback server stays up.
	DefaultIdleTimeout = 10 * time.Minute

	// callbackHost is IPv4 loopback only. The advertised URI keeps the
	// localhost name registered with the identity provider; browsers that
	// try ::1 first fall back to 127.0.0.1 on refusal.
	callbackHost          = "127.0.0.1"
	shutdownTimeout       = 5 * time.Second
	startFlightKey        = "callback-server"
	loggerSubsystemServer = "CallbackServer"
)

// ErrNoAvailablePort is returned when every candidate port is in use.
var ErrNoAvailablePort = errors.New("no available port for OAuth callback server")

// CallbackServerConfig configures a CallbackServer.
type CallbackServerConfig struct {
	// Ports are tried in order. Port 0 asks the OS for any free port.
	Ports []int

	// RedirectBase is the externally reachable callback URL that incoming
	// requests are forwarded to. Its scheme and host replace the local ones;
	// its path, if any, is prepended to the request path.
	RedirectBase string

	// IdleTimeout tears the server down when CallbackURI has not been called
	// for this long. Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration
}

// CallbackServer is a local HTTP listener that receives the identity
// provider's redirect and forwards it, once, to the external callback URL.
//
// There is at most one live listener per CallbackServer. Concurrent
// CallbackURI calls share a single creation.
type CallbackServer struct {
	cfg CallbackServerConfig

	mu      sync.Mutex
	group   singleflight.Group
	current *callbackListener

	// listen is swapped in tests.
	listen func(network, address string) (net.Listener, error)
}

// callbackListener is one bound server instance. Timer and handler callbacks
// hold a pointer to the instance they belong to so that a stale callback can
// never stop a newer listener.
type callbackListener struct {
	server    *http.Server
	listener  net.Listener
	port      int
	idleTimer *time.Timer
	idleGen   uint64
	handled   atomic.Bool
}

// NewCallbackServer creates a CallbackServer. Nothing is bound until the
// first CallbackURI call.
func NewCallbackServer(cfg CallbackServerConfig) *CallbackServer {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &CallbackServer{
		cfg:    cfg,
		listen: net.Listen,
	}
}

// CallbackURI returns the local callback URI, starting the server on first
// use. Each successful call re-arms the idle timer.
func (s *CallbackServer) CallbackURI(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if cur := s.current; cur != nil {
		s.armIdleTimerLocked(cur)
		s.mu.Unlock()
		return callbackURIForPort(cur.port), nil
	}
	s.mu.Unlock()

	v, err, shared := s.group.Do(startFlightKey, func() (interface{}, error) {
		return s.start()
	})
	if err != nil {
		return "", err
	}
	started := v.(*callbackListener)
	if shared {
		logging.Debug(loggerSubsystemServer, "Joined in-flight callback server creation on port %d", started.port)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != started {
		// Stopped (or replaced) between creation and now.
		return "", fmt.Errorf("callback server stopped during startup")
	}
	s.armIdleTimerLocked(started)
	return callbackURIForPort(started.port), nil
}

// Port returns the bound port, or 0 if no listener is running.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.port
}

// IsRunning reports whether a listener is currently bound.
func (s *CallbackServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Stop shuts down the listener if one is running. It is safe to call any
// number of times.
func (s *CallbackServer) Stop() {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()

	if cur != nil {
		s.stopListener(cur, "stopped")
	}
}

// start binds the first free candidate port and begins serving. It runs
// inside the singleflight group.
func (s *CallbackServer) start() (*callbackListener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}

	ln, err := s.bindLocked()
	if err != nil {
		return nil, err
	}

	cur := &callbackListener{
		listener: ln,
		port:     ln.Addr().(*net.TCPAddr).Port,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handleRedirect(cur, w, r)
	})
	cur.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := cur.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(loggerSubsystemServer, err, "Callback server on port %d failed", cur.port)
			s.stopListener(cur, "serve error")
		}
	}()

	s.current = cur
	logging.Debug(loggerSubsystemServer, "Callback server listening on %s", callbackURIForPort(cur.port))
	return cur, nil
}

// bindLocked tries each candidate port in order. Only EADDRINUSE moves on
// to the next candidate.
func (s *CallbackServer) bindLocked() (net.Listener, error) {
	for _, port := range s.cfg.Ports {
		addr := net.JoinHostPort(callbackHost, strconv.Itoa(port))
		ln, err := s.listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		if errors.Is(err, syscall.EADDRINUSE) {
			logging.Debug(loggerSubsystemServer, "Port %d in use, trying next candidate", port)
			continue
		}
		return nil, fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}
	return nil, ErrNoAvailablePort
}

func (s *CallbackServer) armIdleTimerLocked(cur *callbackListener) {
	if cur.idleTimer != nil {
		cur.idleTimer.Stop()
	}
	// A timer that already fired cannot be stopped; the generation lets its
	// callback see that it was superseded.
	cur.idleGen++
	gen := cur.idleGen
	cur.idleTimer = time.AfterFunc(s.cfg.IdleTimeout, func() {
		s.expireIdle(cur, gen)
	})
}

// expireIdle stops cur unless it was re-armed after timer generation gen.
func (s *CallbackServer) expireIdle(cur *callbackListener, gen uint64) {
	s.mu.Lock()
	if s.current != cur || cur.idleGen != gen {
		s.mu.Unlock()
		return
	}
	s.detachLocked(cur)
	s.mu.Unlock()

	s.shutdownListener(cur, "idle timeout")
}

// stopListener tears down cur if it is still the current listener.
func (s *CallbackServer) stopListener(cur *callbackListener, reason string) {
	s.mu.Lock()
	if s.current != cur {
		s.mu.Unlock()
		return
	}
	s.detachLocked(cur)
	s.mu.Unlock()

	s.shutdownListener(cur, reason)
}

func (s *CallbackServer) detachLocked(cur *callbackListener) {
	s.current = nil
	if cur.idleTimer != nil {
		cur.idleTimer.Stop()
	}
}

// shutdownListener runs outside the lock so a handler that triggered it can
// finish writing.
func (s *CallbackServer) shutdownListener(cur *callbackListener, reason string) {
	// Forget any in-flight creation so the next call binds afresh.
	s.group.Forget(startFlightKey)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := cur.server.Shutdown(ctx); err != nil {
		_ = cur.server.Close()
	}
	_ = cur.listener.Close()

	logging.Debug(loggerSubsystemServer, "Callback server on port %d stopped (%s)", cur.port, reason)
}

// handleRedirect forwards the first request to the external callback URL and
// then stops the listener.
func (s *CallbackServer) handleRedirect(cur *callbackListener, w http.ResponseWriter, r *http.Request) {
	if !cur.handled.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	defer func() {
		go s.stopListener(cur, "request handled")
	}()

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("Referrer-Policy", "no-referrer")

	target, err := RewriteCallbackURL(s.cfg.RedirectBase, r.URL)
	if err != nil {
		logging.Error(loggerSubsystemServer, err, "Failed to forward OAuth callback")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logging.Debug(loggerSubsystemServer, "Forwarding OAuth callback to %s", redactQuery(target))
	http.Redirect(w, r, target, http.StatusFound)
}

// RewriteCallbackURL replaces the authority of the incoming request URL with
// that of base, keeping the request path (prefixed by base's path) and query.
func RewriteCallbackURL(base string, incoming *url.URL) (string, error) {
	if base == "" {
		return "", errors.New("external callback base URL is not configured")
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid external callback base URL: %w", err)
	}
	if b.Scheme == "" || b.Host == "" {
		return "", fmt.Errorf("external callback base URL %q is not absolute", base)
	}

	out := url.URL{
		Scheme:   b.Scheme,
		Host:     b.Host,
		Path:     strings.TrimSuffix(b.Path, "/") + incoming.Path,
		RawQuery: incoming.RawQuery,
	}
	return out.String(), nil
}

func callbackURIForPort(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// redactQuery drops the query string, which carries the authorization code.
func redactQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i] + "?<redacted>"
	}
	return raw
}
