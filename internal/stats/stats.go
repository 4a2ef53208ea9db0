package stats

import (
	"runtime"

	"github.com/rs/zerolog/log"
)

const mib = 1024 * 1024

// LogMemUsage logs the heap, total and OS memory in MiB together with the number of completed GC cycles.
// The currently allocated bytes are returned.
func LogMemUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// see https://golang.org/pkg/runtime/#MemStats
	log.Debug().
		Uint64("allocMiB", m.Alloc/mib).
		Uint64("heapAllocMiB", m.HeapAlloc/mib).
		Uint64("totalAllocMiB", m.TotalAlloc/mib).
		Uint64("sysMiB", m.Sys/mib).
		Uint32("numGC", m.NumGC).
		Msg("memory usage")

	return m.Alloc
}
