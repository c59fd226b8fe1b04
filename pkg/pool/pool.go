// Package pool provides object pooling to reduce GC pressure in the
// per-position scan paths of the rule engine.
package pool

import (
	"sync"
)

// stringSlicePool pools []string scratch buffers for phrase-window scans.
var stringSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]string, 0, 16)
		return &s
	},
}

// GetStrings gets an empty string slice from the pool.
func GetStrings() *[]string {
	s := stringSlicePool.Get().(*[]string)
	*s = (*s)[:0]
	return s
}

// PutStrings returns a string slice to the pool.
func PutStrings(s *[]string) {
	stringSlicePool.Put(s)
}
