package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestServeGracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	ln, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(started)
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, srv, ln, time.Second, zap.NewNop())
	}()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()

	result := make(chan int, 1)
	go func() {
		resp, err := client.Get(fmt.Sprintf("http://%s/", ln.Addr()))
		if err != nil {
			result <- 0
			return
		}
		resp.Body.Close()
		result <- resp.StatusCode
	}()

	<-started
	cancel()

	assert.Equal(t, http.StatusOK, <-result)
	require.NoError(t, <-done)
}

func TestServeListenerError(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	ln.Close()

	err = Serve(context.Background(), &http.Server{}, ln, time.Second, zap.NewNop())
	assert.Error(t, err)
}
