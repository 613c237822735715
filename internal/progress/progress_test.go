package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinks_Concurrent(t *testing.T) {
	counter := &Counter{}
	recorder := &Recorder{}
	sink := Multi(counter, nil, recorder)

	const n = 100
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Advance(Event{Path: "/p.csproj", Outcome: Loaded})
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n), counter.Count(), "no update may be lost")
	assert.Len(t, recorder.Events(), n)
}

func TestOrNop(t *testing.T) {
	assert.NotPanics(t, func() { OrNop(nil).Advance(Event{}) })

	c := &Counter{}
	OrNop(c).Advance(Event{})
	assert.Equal(t, int64(1), c.Count())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "metadata", MetadataOnly.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}
