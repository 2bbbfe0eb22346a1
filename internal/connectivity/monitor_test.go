package connectivity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kasbook/internal/connectivity"
)

func TestMonitor_EdgesOnly(t *testing.T) {
	log, _ := test.NewNullLogger()
	m := connectivity.NewMonitor(false, log)

	var fired atomic.Int32
	m.OnOnline(func() { fired.Add(1) })

	events, cancel := m.Subscribe(8)
	defer cancel()

	assert.False(t, m.Set(false), "no change while already offline")
	assert.True(t, m.Set(true))
	assert.False(t, m.Set(true), "repeated online is not an edge")
	assert.True(t, m.Set(false))
	assert.True(t, m.Set(true))

	assert.True(t, m.Online())
	assert.Equal(t, int32(2), fired.Load())

	var got []bool

	for range 3 {
		select {
		case ev := <-events:
			got = append(got, ev.Online)
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}

	assert.Equal(t, []bool{true, false, true}, got)
}

func TestMonitor_CancelClosesStream(t *testing.T) {
	log, _ := test.NewNullLogger()
	m := connectivity.NewMonitor(true, log)

	events, cancel := m.Subscribe(1)
	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)

	assert.True(t, m.Set(false))
}

func TestMonitor_FullSubscriberDoesNotBlock(t *testing.T) {
	log, hook := test.NewNullLogger()
	m := connectivity.NewMonitor(false, log)

	_, cancel := m.Subscribe(0)
	defer cancel()

	done := make(chan struct{})

	go func() {
		m.Set(true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Set blocked on a slow subscriber")
	}

	require.NotNil(t, hook.LastEntry())
}

func TestProber_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))

	log, _ := test.NewNullLogger()
	m := connectivity.NewMonitor(false, log)
	p := connectivity.NewProber(m, srv.URL, time.Second, log)

	assert.True(t, p.Probe(context.Background()), "any HTTP response means reachable")
	assert.True(t, m.Online())

	srv.Close()

	assert.False(t, p.Probe(context.Background()))
	assert.False(t, m.Online())
}
