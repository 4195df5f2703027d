package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	appkafka "example.com/socialfeed/internal/broker"
	"example.com/socialfeed/internal/store"
	"github.com/gin-gonic/gin"
)

// freeAddr reserves a local port and releases it for the server under test.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

// TestServer_GracefulShutdown verifies that Run serves requests and returns
// once its context is canceled, leaving the store and Kafka closable.
func TestServer_GracefulShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Use mock store and Kafka to avoid real dependencies
	mockStore := store.NewMock()
	mockKafka := &appkafka.MockKafka{}

	s := New(testConfig(), Options{
		Store:  mockStore,
		Events: appkafka.NewPublisher(mockKafka),
	})

	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		Run(ctx, s, addr, "", "")
		close(done)
	}()

	// Wait until the server answers before shutting it down
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200 from healthz, got %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()

	// Wait for shutdown to complete or timeout
	select {
	case <-done:
		if err := mockStore.Close(); err != nil {
			t.Fatalf("store close error: %v", err)
		}
		if err := mockKafka.Close(); err != nil {
			t.Fatalf("Kafka close error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shutdown gracefully within the expected time")
	}
}
