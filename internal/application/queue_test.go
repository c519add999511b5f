package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuedCallsDrainInArrivalOrder(t *testing.T) {
	t.Parallel()

	server := newCompanionServer()
	client := newTestCore(t, server, Config{})

	results := make(chan error, 3)
	for i, content := range []string{"first", "second", "third"} {
		go func() {
			_, err := client.SendMessage(context.Background(), content)
			results <- err
		}()
		require.Eventually(t, func() bool {
			return client.QueueDepth() == i+1
		}, time.Second, time.Millisecond)
	}

	require.True(t, client.Connect(context.Background(), "", 0))

	for i := 0; i < 3; i++ {
		select {
		case err := <-results:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("queued call never resolved")
		}
	}

	assert.Equal(t, []string{"first", "second", "third"}, server.chatLog())
	assert.Zero(t, client.QueueDepth())
}

func TestFreshCallsQueueBehindDrain(t *testing.T) {
	t.Parallel()

	server := newCompanionServer()
	server.holdChat()
	client := newTestCore(t, server, Config{})

	results := make(chan error, 3)
	for i, content := range []string{"backlog-1", "backlog-2"} {
		go func() {
			_, err := client.SendMessage(context.Background(), content)
			results <- err
		}()
		require.Eventually(t, func() bool {
			return client.QueueDepth() == i+1
		}, time.Second, time.Millisecond)
	}

	require.True(t, client.Connect(context.Background(), "", 0))

	// Wait for the drain to pick up the backlog; it is now stalled on the
	// first entry's held request.
	require.Eventually(t, func() bool {
		return client.QueueDepth() == 0
	}, time.Second, time.Millisecond)

	// A fresh call must park behind the backlog instead of running ahead of
	// it.
	go func() {
		_, err := client.SendMessage(context.Background(), "fresh")
		results <- err
	}()
	require.Eventually(t, func() bool {
		return client.QueueDepth() == 1
	}, time.Second, time.Millisecond)

	server.releaseChat()

	for i := 0; i < 3; i++ {
		select {
		case err := <-results:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("call never resolved")
		}
	}

	assert.Equal(t, []string{"backlog-1", "backlog-2", "fresh"}, server.chatLog())
}

func TestQueuedCallResolvesAfterConnect(t *testing.T) {
	t.Parallel()

	server := newCompanionServer()
	client := newTestCore(t, server, Config{})

	type sendResult struct {
		content string
		err     error
	}
	done := make(chan sendResult, 1)
	go func() {
		exchange, err := client.SendMessage(context.Background(), "queued hello")
		result := sendResult{err: err}
		if exchange != nil {
			result.content = exchange.AssistantMessage.Content
		}
		done <- result
	}()

	require.Eventually(t, func() bool {
		return client.QueueDepth() == 1
	}, time.Second, time.Millisecond)

	require.True(t, client.Connect(context.Background(), "", 0))

	select {
	case result := <-done:
		require.NoError(t, result.err)
		assert.Equal(t, "ack", result.content)
	case <-time.After(2 * time.Second):
		t.Fatal("queued send never resolved")
	}
}

func TestAbandonedCallIsSkippedDuringDrain(t *testing.T) {
	t.Parallel()

	server := newCompanionServer()
	client := newTestCore(t, server, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.SendMessage(ctx, "never sent")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return client.QueueDepth() == 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled call never returned")
	}

	require.True(t, client.Connect(context.Background(), "", 0))
	require.Eventually(t, func() bool {
		return client.QueueDepth() == 0
	}, time.Second, time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, server.chatLog())
}

func TestConnectedCallRunsImmediately(t *testing.T) {
	t.Parallel()

	server := newCompanionServer()
	client := newTestCore(t, server, Config{})

	require.True(t, client.Connect(context.Background(), "", 0))

	exchange, err := client.SendMessage(context.Background(), "direct")
	require.NoError(t, err)
	assert.Equal(t, "direct", exchange.UserMessage.Content)
	assert.Zero(t, client.QueueDepth())
}

func TestQueuedCallFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	server := newCompanionServer()
	client := newTestCore(t, server, Config{})

	first := make(chan error, 1)
	second := make(chan error, 1)

	go func() {
		// Empty project id fails locally when the call finally runs.
		_, err := client.OpenProject(context.Background(), "")
		first <- err
	}()
	require.Eventually(t, func() bool {
		return client.QueueDepth() == 1
	}, time.Second, time.Millisecond)

	go func() {
		_, err := client.SendMessage(context.Background(), "after failure")
		second <- err
	}()
	require.Eventually(t, func() bool {
		return client.QueueDepth() == 2
	}, time.Second, time.Millisecond)

	require.True(t, client.Connect(context.Background(), "", 0))

	require.Error(t, <-first)
	require.NoError(t, <-second)
	assert.Equal(t, []string{"after failure"}, server.chatLog())
}
