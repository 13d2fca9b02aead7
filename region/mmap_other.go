//go:build !unix

package region

// mapAnon falls back to a heap slice when anonymous mmap is not available.
// The Go heap does not move objects, so the base address stays fixed.
func mapAnon(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), func([]byte) error { return nil }, nil
}
