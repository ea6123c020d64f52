//go:build bufferdebug

package buffer

import "fmt"

// assertBounds runs inside the critical section of every mutation in bufferdebug builds.
func assertBounds(count int, capacity int) {
	if count < 0 || count > capacity {
		panic(fmt.Sprintf("buffer occupancy %d outside [0, %d]", count, capacity))
	}
}
