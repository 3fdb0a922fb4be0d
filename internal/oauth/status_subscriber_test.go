package oauth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"codeassist/pkg/corerpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream delivers events pushed on its channel and honours the
// subscription context like a gRPC client stream does.
type fakeStream struct {
	ctx    context.Context
	events chan *corerpc.AuthState
	errs   chan error
}

func (f *fakeStream) Recv() (*corerpc.AuthState, error) {
	select {
	case <-f.ctx.Done():
		return nil, f.ctx.Err()
	case err := <-f.errs:
		return nil, err
	case ev, ok := <-f.events:
		if !ok {
			return nil, io.EOF
		}
		return ev, nil
	}
}

type fakeSource struct {
	stream *fakeStream
	err    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{stream: &fakeStream{
		events: make(chan *corerpc.AuthState, 32),
		errs:   make(chan error, 1),
	}}
}

func (f *fakeSource) SubscribeAuthStatus(ctx context.Context) (AuthStatusStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.stream.ctx = ctx
	return f.stream, nil
}

func strPtr(s string) *string { return &s }

func authenticatedEvent() *corerpc.AuthState {
	return &corerpc.AuthState{User: &corerpc.UserInfo{UID: "user-1"}, APIKey: strPtr("token")}
}

func TestIsAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		state *corerpc.AuthState
		want  bool
	}{
		{name: "nil event", state: nil, want: false},
		{name: "empty event", state: &corerpc.AuthState{}, want: false},
		{name: "identity only", state: &corerpc.AuthState{User: &corerpc.UserInfo{UID: "u"}}, want: false},
		{name: "credential only", state: &corerpc.AuthState{APIKey: strPtr("k")}, want: false},
		{name: "empty credential", state: &corerpc.AuthState{User: &corerpc.UserInfo{UID: "u"}, APIKey: strPtr("")}, want: false},
		{name: "identity and credential", state: authenticatedEvent(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthenticated(tt.state))
		})
	}
}

func TestStatusSubscriber_ConstructionFailure(t *testing.T) {
	source := newFakeSource()
	source.err = errors.New("core unavailable")

	sub, err := NewStatusSubscriber(context.Background(), source)
	require.Error(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, err.Error(), "core unavailable")
}

func TestStatusSubscriber_Success(t *testing.T) {
	source := newFakeSource()
	sub, err := NewStatusSubscriber(context.Background(), source)
	require.NoError(t, err)
	defer sub.Stop()

	assert.Equal(t, SubscriberIdle, sub.State())
	sub.Start()

	// Non-qualifying events are skipped.
	source.stream.events <- &corerpc.AuthState{}
	source.stream.events <- &corerpc.AuthState{User: &corerpc.UserInfo{UID: "user-1"}}
	source.stream.events <- &corerpc.AuthState{User: &corerpc.UserInfo{UID: "user-1"}, APIKey: strPtr("")}
	source.stream.events <- authenticatedEvent()

	err = sub.WaitForAuthentication(3 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, SubscriberSucceeded, sub.State())
}

func TestStatusSubscriber_ManyNonQualifyingEvents(t *testing.T) {
	source := newFakeSource()
	sub, err := NewStatusSubscriber(context.Background(), source)
	require.NoError(t, err)
	defer sub.Stop()
	sub.Start()

	go func() {
		// Well beyond the buffer size; nothing is capped.
		for i := 0; i < 100; i++ {
			source.stream.events <- &corerpc.AuthState{}
		}
		source.stream.events <- authenticatedEvent()
	}()

	require.NoError(t, sub.WaitForAuthentication(3*time.Second))
}

func TestStatusSubscriber_Timeout(t *testing.T) {
	source := newFakeSource()
	sub, err := NewStatusSubscriber(context.Background(), source)
	require.NoError(t, err)
	defer sub.Stop()
	sub.Start()

	source.stream.events <- &corerpc.AuthState{User: &corerpc.UserInfo{UID: "u"}}

	timeout := 100 * time.Millisecond
	start := time.Now()
	err = sub.WaitForAuthentication(timeout)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsAuthTimeout(err))
	assert.Contains(t, err.Error(), "please try again")
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+2*time.Second)
	assert.Equal(t, SubscriberTimedOut, sub.State())
}

func TestStatusSubscriber_CleanEndThenTimeout(t *testing.T) {
	source := newFakeSource()
	sub, err := NewStatusSubscriber(context.Background(), source)
	require.NoError(t, err)
	defer sub.Stop()
	sub.Start()

	close(source.stream.events)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not exit on end of stream")
	}

	err = sub.WaitForAuthentication(50 * time.Millisecond)
	assert.True(t, IsAuthTimeout(err), "clean end of stream is not an error, got %v", err)
}

func TestStatusSubscriber_Cancelled(t *testing.T) {
	t.Run("stop while waiting", func(t *testing.T) {
		source := newFakeSource()
		sub, err := NewStatusSubscriber(context.Background(), source)
		require.NoError(t, err)
		sub.Start()

		go func() {
			time.Sleep(50 * time.Millisecond)
			sub.Stop()
		}()

		err = sub.WaitForAuthentication(5 * time.Second)
		assert.ErrorIs(t, err, ErrAuthCancelled)
		assert.Equal(t, SubscriberCancelled, sub.State())

		select {
		case <-sub.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not exit after Stop")
		}
		sub.Stop()
	})

	t.Run("parent context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		source := newFakeSource()
		sub, err := NewStatusSubscriber(ctx, source)
		require.NoError(t, err)
		sub.Start()

		cancel()

		err = sub.WaitForAuthentication(5 * time.Second)
		assert.ErrorIs(t, err, ErrAuthCancelled)
	})
}

func TestStatusSubscriber_StreamError(t *testing.T) {
	source := newFakeSource()
	sub, err := NewStatusSubscriber(context.Background(), source)
	require.NoError(t, err)
	defer sub.Stop()
	sub.Start()

	streamErr := errors.New("connection reset")
	source.stream.errs <- streamErr

	err = sub.WaitForAuthentication(5 * time.Second)
	require.Error(t, err)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, streamErr)
	assert.Contains(t, err.Error(), "authentication stream error")
	assert.Equal(t, SubscriberErrored, sub.State())
}

func TestSubscriberState_String(t *testing.T) {
	tests := []struct {
		state SubscriberState
		want  string
	}{
		{SubscriberIdle, "idle"},
		{SubscriberListening, "listening"},
		{SubscriberSucceeded, "succeeded"},
		{SubscriberTimedOut, "timed_out"},
		{SubscriberCancelled, "cancelled"},
		{SubscriberErrored, "errored"},
		{SubscriberState(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
