package migrate

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)

	s, err := NewScheduler(f.migrator, time.Hour, log.New(io.Discard))
	require.NoError(t, err)

	assert.Len(t, s.Entries(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)

	s, err := NewScheduler(f.migrator, time.Hour, log.New(io.Discard))
	require.NoError(t, err)

	s.Start()
	stopped := s.Stop()

	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
