package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"
)

const (
	// updateBufferSize bounds how many stream events can wait for a reader.
	updateBufferSize = 10

	loggerSubsystemStatus = "AuthStatus"
)

// AuthStatusStream yields auth state events. Recv returns io.EOF when the
// stream ends cleanly.
type AuthStatusStream interface {
	Recv() (*corerpc.AuthState, error)
}

// AuthStatusSource opens auth status subscriptions.
type AuthStatusSource interface {
	SubscribeAuthStatus(ctx context.Context) (AuthStatusStream, error)
}

// SubscriberState is the lifecycle state of a StatusSubscriber.
type SubscriberState int

const (
	// SubscriberIdle means the subscription is open but nobody is waiting.
	SubscriberIdle SubscriberState = iota

	// SubscriberListening means WaitForAuthentication is in progress.
	SubscriberListening

	// SubscriberSucceeded means an authenticated event was observed.
	SubscriberSucceeded

	// SubscriberTimedOut means the wait deadline passed.
	SubscriberTimedOut

	// SubscriberCancelled means the subscriber was stopped while waiting.
	SubscriberCancelled

	// SubscriberErrored means the stream failed.
	SubscriberErrored
)

// String returns the string representation of the subscriber state.
func (s SubscriberState) String() string {
	switch s {
	case SubscriberIdle:
		return "idle"
	case SubscriberListening:
		return "listening"
	case SubscriberSucceeded:
		return "succeeded"
	case SubscriberTimedOut:
		return "timed_out"
	case SubscriberCancelled:
		return "cancelled"
	case SubscriberErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsAuthenticated reports whether an auth state event represents a completed
// sign-in: an identity is present and the credential is present and non-empty.
func IsAuthenticated(state *corerpc.AuthState) bool {
	return state != nil && state.User != nil && state.APIKey != nil && *state.APIKey != ""
}

// StatusSubscriber consumes the auth status stream in the background and
// lets a caller wait for the first authenticated event.
type StatusSubscriber struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream AuthStatusStream

	updates chan *corerpc.AuthState
	errs    chan error

	startOnce sync.Once
	done      chan struct{}

	mu    sync.Mutex
	state SubscriberState
}

// NewStatusSubscriber opens a subscription scoped to a child of parent.
// The stream is not read until Start is called.
func NewStatusSubscriber(parent context.Context, source AuthStatusSource) (*StatusSubscriber, error) {
	ctx, cancel := context.WithCancel(parent)

	stream, err := source.SubscribeAuthStatus(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to auth status updates: %w", err)
	}

	return &StatusSubscriber{
		ctx:     ctx,
		cancel:  cancel,
		stream:  stream,
		updates: make(chan *corerpc.AuthState, updateBufferSize),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		state:   SubscriberIdle,
	}, nil
}

// Start launches the consumption goroutine. Calling it more than once has no
// further effect.
func (s *StatusSubscriber) Start() {
	s.startOnce.Do(func() {
		go s.consume()
	})
}

// consume moves events from the stream to the updates channel until the
// stream ends, fails, or the scope is cancelled.
func (s *StatusSubscriber) consume() {
	defer close(s.done)

	for {
		state, err := s.stream.Recv()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logging.Debug(loggerSubsystemStatus, "Auth status stream closed")
			case s.ctx.Err() != nil:
				logging.Debug(loggerSubsystemStatus, "Auth status stream cancelled")
			default:
				logging.Debug(loggerSubsystemStatus, "Auth status stream failed: %v", err)
				select {
				case s.errs <- err:
				default:
				}
			}
			return
		}

		select {
		case s.updates <- state:
		case <-s.ctx.Done():
			return
		}
	}
}

// WaitForAuthentication blocks until an authenticated event arrives, the
// timeout elapses, the subscriber is cancelled, or the stream fails,
// whichever happens first. Events that do not satisfy IsAuthenticated are
// discarded.
func (s *StatusSubscriber) WaitForAuthentication(timeout time.Duration) error {
	s.setState(SubscriberListening)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.setState(SubscriberTimedOut)
			return &AuthTimeoutError{Timeout: timeout}

		case <-s.ctx.Done():
			s.setState(SubscriberCancelled)
			return ErrAuthCancelled

		case err := <-s.errs:
			s.setState(SubscriberErrored)
			return &StreamError{Err: err}

		case state := <-s.updates:
			if IsAuthenticated(state) {
				logging.Debug(loggerSubsystemStatus, "Authentication confirmed for user %s", state.User.UID)
				s.setState(SubscriberSucceeded)
				return nil
			}
			logging.Debug(loggerSubsystemStatus, "Ignoring auth status update without identity and credential")
		}
	}
}

// State returns the current lifecycle state.
func (s *StatusSubscriber) State() SubscriberState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the consumption goroutine has exited.
func (s *StatusSubscriber) Done() <-chan struct{} {
	return s.done
}

// Stop cancels the subscription scope. It is safe to call more than once.
func (s *StatusSubscriber) Stop() {
	s.cancel()
}

func (s *StatusSubscriber) setState(state SubscriberState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
