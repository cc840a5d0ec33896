package router

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloader(t *testing.T) {
	rl := &reloader{tabs: map[chan struct{}]struct{}{}}
	assert.Equal(t, 0, rl.trigger())

	a, doneA := rl.subscribe()
	b, doneB := rl.subscribe()
	assert.Equal(t, 2, rl.trigger())
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)

	// A second signal before the first is consumed is dropped.
	rl.trigger()
	assert.Len(t, a, 1)

	doneA()
	doneB()
	assert.Equal(t, 0, rl.trigger())
}

func TestSetupReload(t *testing.T) {
	r := chi.NewRouter()
	setupReload(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/reload", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// The stream is subscribed once headers are out; keep poking until
	// the tab is counted.
	require.Eventually(t, func() bool {
		res, err := http.Get(srv.URL + "/hotreload")
		if err != nil {
			return false
		}
		defer func() { _ = res.Body.Close() }()
		line, _ := bufio.NewReader(res.Body).ReadString('\n')
		return strings.TrimSpace(line) == "reloaded 1"
	}, 3*time.Second, 20*time.Millisecond)

	var body strings.Builder
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		body.WriteString(sc.Text())
		if strings.Contains(body.String(), "window.location.reload()") {
			break
		}
	}
	assert.Contains(t, body.String(), "window.location.reload()")
}
