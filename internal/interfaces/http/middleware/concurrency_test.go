package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestConcurrency_CapsInFlightRequests(t *testing.T) {
	var inFlight int32
	entered := make(chan struct{}, 10)
	release := make(chan struct{})

	engine := gin.New()
	engine.Use(Concurrency(2))
	engine.GET("/x", func(c *gin.Context) {
		atomic.AddInt32(&inFlight, 1)
		entered <- struct{}{}
		<-release
		atomic.AddInt32(&inFlight, -1)
		c.String(http.StatusOK, "ok")
	})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			engine.ServeHTTP(w, req)
		}()
	}

	// Exactly 2 of the 3 requests should be able to enter the handler
	// while the cap holds; the third stays queued on the semaphore.
	<-entered
	<-entered
	select {
	case <-entered:
		t.Fatal("a third request entered the handler despite the cap of 2")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&inFlight))

	close(release)
	wg.Wait()
}

func TestConcurrency_ZeroLimitDisablesCap(t *testing.T) {
	engine := gin.New()
	engine.Use(Concurrency(0))
	engine.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
