package host

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminatorExitsOnceAfterDelay(t *testing.T) {
	codes := make(chan int, 2)
	term := NewTerminator(func(code int) { codes <- code }, nil)

	start := time.Now()
	term.ScheduleExit(20 * time.Millisecond)
	term.ScheduleExit(time.Millisecond)

	select {
	case code := <-codes:
		assert.Equal(t, 0, code)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("exit was never called")
	}

	select {
	case <-codes:
		t.Fatal("exit called twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPrintOpener(t *testing.T) {
	var buf bytes.Buffer
	NewPrintOpener(&buf).Open("https://example.com/app")
	assert.Equal(t, "open https://example.com/app\n", buf.String())
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"optional_update","confirm_url":"https://example.com"}`), 0o644))

	status, err := FileFetcher{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gate.OptionalUpdateRequired{ConfirmLinkURL: "https://example.com"}, status)
}

func TestFileFetcherErrorsAreFetchErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"kind":"forced_update"}`), 0o644))

	cases := map[string]string{
		filepath.Join(dir, "missing.json"): "status unavailable",
		bad:                                "status malformed",
	}
	for path, msg := range cases {
		_, err := FileFetcher{Path: path}.Fetch(context.Background())
		require.Error(t, err)
		var fe *gate.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, msg, fe.Message)
	}
}

func TestFileFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileFetcher{Path: "unused"}.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
