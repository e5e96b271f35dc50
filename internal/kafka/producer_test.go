package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Shutdown order in main is Close then WaitClosed; WaitClosed must
// return once the drain goroutine has exited, broker or no broker.
func TestCloseReleasesWaitClosed(t *testing.T) {
	p := NewProducer([]string{"localhost:1"}, "order.placed", 4)
	p.Start()
	p.Close()

	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitClosed did not return after Close")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := NewProducer([]string{"localhost:1"}, "order.placed", 4)
	p.Start()

	assert.NotPanics(t, func() {
		p.Close()
		p.Close()
	})
	p.WaitClosed()
}
