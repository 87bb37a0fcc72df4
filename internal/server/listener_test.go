package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartcampus/portal/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListener_ConcurrentStartBindsOnce(t *testing.T) {
	var binds int32
	l := NewListener(config.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second}).
		WithListen(func(network, address string) (net.Listener, error) {
			atomic.AddInt32(&binds, 1)
			return net.Listen(network, address)
		})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("up")) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Start(h))
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&binds))
	require.NotNil(t, l.Addr())

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "up", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Shutdown(ctx))
}

func TestListener_BindErrorIsSticky(t *testing.T) {
	var binds int32
	boom := errors.New("address in use")
	l := NewListener(config.ServerConfig{Host: "127.0.0.1", Port: "5000"}).
		WithListen(func(network, address string) (net.Listener, error) {
			atomic.AddInt32(&binds, 1)
			assert.Equal(t, "127.0.0.1:5000", address)
			return nil, boom
		})

	assert.ErrorIs(t, l.Start(http.NotFoundHandler()), boom)
	assert.ErrorIs(t, l.Start(http.NotFoundHandler()), boom)
	assert.Equal(t, int32(1), binds)
	assert.Nil(t, l.Addr())
	assert.NoError(t, l.Shutdown(context.Background()))
}
