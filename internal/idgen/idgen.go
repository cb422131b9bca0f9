// Package idgen generates demo-grade record identifiers of the form
// prefix_<base36 unix millis>. Identifiers are unique within a process but are
// not collision-checked across processes and are not secret.
package idgen

import (
	"strconv"
	"sync/atomic"
	"time"
)

// DefaultPrefix is used when New is called with an empty prefix.
const DefaultPrefix = "id"

var last atomic.Int64 //nolint:gochecknoglobals // process-wide monotonic counter

// New returns prefix + "_" + a time-derived suffix. The suffix is bumped past
// the previously issued one when the clock has not advanced.
func New(prefix string) string {
	return format(prefix, next(time.Now().UnixMilli()))
}

func next(now int64) int64 {
	for {
		prev := last.Load()
		n := now
		if n <= prev {
			n = prev + 1
		}
		if last.CompareAndSwap(prev, n) {
			return n
		}
	}
}

func format(prefix string, n int64) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "_" + strconv.FormatInt(n, 36)
}
