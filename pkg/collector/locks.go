package collector

import (
	"hash/fnv"
	"slices"
	"sync"
)

const lockStripes = 64

// sensorLocks serializes work on the same sensor while letting different
// sensors proceed in parallel. Sensors hash onto a fixed set of stripes, so
// memory does not grow with the number of sensors.
type sensorLocks struct {
	stripes [lockStripes]sync.Mutex
}

func stripeFor(sensorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sensorID))

	return int(h.Sum32() % lockStripes)
}

// lock acquires the stripes of every given sensor and returns the function
// releasing them. Stripes are taken in ascending order so two batches sharing
// sensors cannot deadlock.
func (l *sensorLocks) lock(sensorIDs []string) (unlock func()) {
	idx := make([]int, 0, len(sensorIDs))
	for _, id := range sensorIDs {
		idx = append(idx, stripeFor(id))
	}

	slices.Sort(idx)
	idx = slices.Compact(idx)

	for _, i := range idx {
		l.stripes[i].Lock()
	}

	return func() {
		for j := len(idx) - 1; j >= 0; j-- {
			l.stripes[idx[j]].Unlock()
		}
	}
}
