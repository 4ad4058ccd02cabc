package execctx

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

type recordingConn struct {
	mu     sync.Mutex
	sent   []string
	closed bool
}

func (c *recordingConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *recordingConn) Close(string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func readAsync(ctx *Interactive) <-chan string {
	ch := make(chan string, 1)
	go func() {
		value, err := ctx.Read("")
		if err != nil {
			value = "error: " + err.Error()
		}
		ch <- value
	}()
	return ch
}

func TestInteractive_ReadBlocksUntilDelivered(t *testing.T) {
	t.Parallel()

	ctx := NewInteractive(&recordingConn{})
	result := readAsync(ctx)

	select {
	case got := <-result:
		t.Fatalf("read returned %q before any message was delivered", got)
	case <-time.After(50 * time.Millisecond):
	}

	ctx.Deliver("hello")

	select {
	case got := <-result:
		require.Equal(t, "hello", got)
	case <-time.After(time.Second):
		t.Fatal("read did not return after delivery")
	}
}

func TestInteractive_PayloadObservedExactlyOnce(t *testing.T) {
	t.Parallel()

	ctx := NewInteractive(&recordingConn{})
	ctx.Deliver("once")

	got, err := ctx.Read("")
	require.NoError(t, err)
	require.Equal(t, "once", got)

	second := readAsync(ctx)
	select {
	case got := <-second:
		t.Fatalf("second read observed %q without a new delivery", got)
	case <-time.After(50 * time.Millisecond):
	}

	ctx.Deliver("twice")
	require.Equal(t, "twice", <-second)
}

func TestInteractive_BackToBackDeliveriesKeepLatest(t *testing.T) {
	t.Parallel()

	ctx := NewInteractive(&recordingConn{})
	ctx.Deliver("first")
	ctx.Deliver("second")

	got, err := ctx.Read("")
	require.NoError(t, err)
	require.Equal(t, "second", got)
}

func TestInteractive_CloseReleasesBlockedRead(t *testing.T) {
	t.Parallel()

	ctx := NewInteractive(&recordingConn{})
	done := make(chan error, 1)
	go func() {
		_, err := ctx.Read("")
		done <- err
	}()

	ctx.Close()

	select {
	case err := <-done:
		require.ErrorIs(t, err, execution.ErrConnectionClosed)
	case <-time.After(time.Second):
		t.Fatal("close did not release the blocked read")
	}

	ctx.Deliver("late")
	_, err := ctx.Read("")
	require.ErrorIs(t, err, execution.ErrConnectionClosed)
}

func TestInteractive_EmitForwardsAndSurvivesClosedConnection(t *testing.T) {
	t.Parallel()

	conn := &recordingConn{}
	ctx := NewInteractive(conn)

	ctx.Emit("a")
	ctx.Emit("b")
	require.NoError(t, conn.Close("done"))
	require.NotPanics(t, func() { ctx.Emit("dropped") })

	require.Equal(t, []string{"a", "b"}, conn.messages())
}

func TestInteractive_MemoryIsFreshAndReplaceable(t *testing.T) {
	t.Parallel()

	first := NewInteractive(&recordingConn{})
	second := NewInteractive(&recordingConn{})
	require.NotSame(t, first.Memory(), second.Memory())

	child := first.Memory().Child()
	first.SetMemory(child)
	require.Same(t, child, first.Memory())
}
