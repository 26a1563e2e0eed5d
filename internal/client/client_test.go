package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/neurograph/internal/layout"
	"github.com/lazypower/neurograph/internal/scene"
	"github.com/lazypower/neurograph/internal/server"
	"github.com/lazypower/neurograph/internal/store"
)

func testClient(t *testing.T) (*Client, *scene.Scene) {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sc := scene.New(scene.Options{Width: 400, Height: 300, DemoCount: 6, Seed: 2})
	ts := httptest.NewServer(server.New(db, sc, "test"))
	t.Cleanup(ts.Close)

	t.Setenv(EnvURL, "")
	return New(ts.URL), sc
}

func TestSetMode(t *testing.T) {
	c, sc := testClient(t)

	mode, err := c.SetMode(context.Background(), "interactive")
	require.NoError(t, err)
	assert.Equal(t, layout.Interactive(), mode)
	assert.Equal(t, layout.ModeInteractive, sc.Mode().Mode)

	_, err = c.SetMode(context.Background(), "frantic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frantic")
}

func TestRebuild(t *testing.T) {
	c, sc := testClient(t)

	res, err := c.Rebuild(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, "demo", res.Source)
	assert.Equal(t, 6, res.Nodes)
	assert.Len(t, sc.Snapshot().Nodes, 6)
}

func TestHealthy(t *testing.T) {
	c, _ := testClient(t)
	assert.True(t, c.Healthy(context.Background()))

	down := New("127.0.0.1:1")
	assert.False(t, down.Healthy(context.Background()))
}

func TestNewURL(t *testing.T) {
	t.Setenv(EnvURL, "")
	assert.Equal(t, "http://127.0.0.1:37778", New("127.0.0.1:37778").URL())
	assert.Equal(t, "https://graph.local", New("https://graph.local/").URL())

	t.Setenv(EnvURL, "http://elsewhere:9000")
	assert.Equal(t, "http://elsewhere:9000", New("127.0.0.1:37778").URL())
}
