package httpapi

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	s := newTestServer(&fakeResolver{}, &fakeAuthenticator{}, &fakeRegistrar{})

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.serve(ctx, listen) }()

	resp, err := http.Get("http://" + listen.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_Run_BadAddress(t *testing.T) {
	s := newTestServer(&fakeResolver{}, &fakeAuthenticator{}, &fakeRegistrar{})
	s.address = "bad::address::"

	err := s.Run(context.Background())
	assert.Error(t, err)
}

func TestRequestTimeout_BoundsContext(t *testing.T) {
	engine := gin.New()
	engine.Use(requestTimeout(50 * time.Millisecond))

	var hasDeadline bool
	engine.GET("/x", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	rec := httpRecorder(engine, "/x")
	assert.Equal(t, http.StatusNoContent, rec)
	assert.True(t, hasDeadline)
}

func TestRequestLogger_Logs(t *testing.T) {
	var buf safeBuffer
	l := logging.NewSlogJSONLogger(&buf, "info")

	engine := gin.New()
	engine.Use(requestLogger(l))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	httpRecorder(engine, "/x")

	out := buf.String()
	assert.Contains(t, out, `"msg":"request served"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/x"`)
}
