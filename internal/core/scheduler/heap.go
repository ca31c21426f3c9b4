package scheduler

import "container/heap"

// jobHeap is a container/heap.Interface min-heap of QueuedJob, ordered
// primarily by ascending ScheduledTime and secondarily by descending
// Priority. Stability between equal keys is not guaranteed.
type jobHeap []*QueuedJob

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if !h[i].ScheduledTime.Equal(h[j].ScheduledTime) {
		return h[i].ScheduledTime.Before(h[j].ScheduledTime)
	}
	return h[i].Priority > h[j].Priority
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *jobHeap) Push(x any) {
	q := x.(*QueuedJob)
	q.index = len(*h)
	*h = append(*h, q)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	q := old[n-1]
	old[n-1] = nil
	q.index = -1
	*h = old[:n-1]
	return q
}

// priorityQueue wraps jobHeap with the remove-by-job-id operation
// cancellation needs, which container/heap.Interface does not provide
// on its own.
type priorityQueue struct {
	entries jobHeap
}

func newPriorityQueue() *priorityQueue {
	pq := &priorityQueue{entries: make(jobHeap, 0)}
	heap.Init(&pq.entries)
	return pq
}

func (pq *priorityQueue) push(q *QueuedJob) {
	heap.Push(&pq.entries, q)
}

// peek returns the earliest entry without removing it.
func (pq *priorityQueue) peek() (*QueuedJob, bool) {
	if len(pq.entries) == 0 {
		return nil, false
	}
	return pq.entries[0], true
}

// pop removes and returns the earliest entry.
func (pq *priorityQueue) pop() (*QueuedJob, bool) {
	if len(pq.entries) == 0 {
		return nil, false
	}
	return heap.Pop(&pq.entries).(*QueuedJob), true
}

// removeJob drops every heap entry for jobID, used by cancellation.
func (pq *priorityQueue) removeJob(jobID string) {
	var kept []*QueuedJob
	for _, q := range pq.entries {
		if q.JobID != jobID {
			kept = append(kept, q)
		}
	}
	pq.entries = jobHeap(kept)
	heap.Init(&pq.entries)
}

func (pq *priorityQueue) len() int {
	return len(pq.entries)
}
