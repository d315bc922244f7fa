package frontdesk

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	// GIVEN: Three arrivals
	q := NewQueue()
	require.NoError(t, q.Enqueue("A"))
	require.NoError(t, q.Enqueue("B"))
	require.NoError(t, q.Enqueue("C"))

	// WHEN: Calling the next patient
	head, err := q.DequeueFront()

	// THEN: The first arrival is served and the rest keep their order
	require.NoError(t, err)
	assert.Equal(t, "A", head)
	assert.Equal(t, []QueueEntry{{Position: 1, Label: "B"}, {Position: 2, Label: "C"}}, q.PeekAll())
	assert.Equal(t, 2, q.Len())

	head, err = q.DequeueFront()
	require.NoError(t, err)
	assert.Equal(t, "B", head)
	head, err = q.DequeueFront()
	require.NoError(t, err)
	assert.Equal(t, "C", head)

	_, err = q.DequeueFront()
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestQueue_EmptyDequeue(t *testing.T) {
	q := NewQueue()

	_, err := q.DequeueFront()

	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Empty(t, q.PeekAll())
	assert.NotNil(t, q.PeekAll())
}

func TestQueue_RejectsBlankLabel(t *testing.T) {
	q := NewQueue()

	assert.ErrorIs(t, q.Enqueue("   "), ErrInvalidLabel)
	assert.Equal(t, 0, q.Len())

	require.NoError(t, q.Enqueue("  Milo - Budi "))
	assert.Equal(t, "Milo - Budi", q.PeekAll()[0].Label)
}

func TestQueue_DrainAfterConcurrentEnqueue(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Enqueue("patient")
		}()
	}
	wg.Wait()

	served := 0
	for {
		if _, err := q.DequeueFront(); err != nil {
			assert.ErrorIs(t, err, ErrEmptyQueue)
			break
		}
		served++
	}
	assert.Equal(t, 50, served)
}
