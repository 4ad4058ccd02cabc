package execctx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsole_QueuedInputsThenReaderThenDefault(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ctx := NewConsole(strings.NewReader("from-reader\r\n"), &out, "", "queued")

	got, err := ctx.Read("def")
	require.NoError(t, err)
	require.Equal(t, "queued", got)

	got, err = ctx.Read("def")
	require.NoError(t, err)
	require.Equal(t, "from-reader", got)

	got, err = ctx.Read("def")
	require.NoError(t, err)
	require.Equal(t, "def", got)
}

func TestConsole_EmitWritesLinesAndPrompts(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ctx := NewConsole(strings.NewReader("x\n"), &out, "> ")

	ctx.Emit("hello")
	_, err := ctx.Read("")
	require.NoError(t, err)
	ctx.Emit("bye")

	require.Equal(t, "hello\n> bye\n", out.String())
	require.NoError(t, ctx.Err())
}
