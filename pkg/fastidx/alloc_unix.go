//go:build linux || darwin

package fastidx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// layoutMem is the backing allocation for the blocked tree image. On
// unix it comes straight from an anonymous mmap, which the kernel hands
// out page aligned; that satisfies both alignment regimes (page
// alignment for deep trees, 64 bytes otherwise) at once.
type layoutMem struct {
	data []byte
}

// allocLayout reserves size bytes of zeroed, aligned memory for the
// image. align is at most the page size here, so the mmap guarantee
// already covers it.
func allocLayout(size, align int) (*layoutMem, error) {
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return &layoutMem{data: data}, nil
}

func (m *layoutMem) release() error {
	data := m.data
	m.data = nil
	if data == nil {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap layout: %w", err)
	}
	return nil
}

func (m *layoutMem) size() int {
	return len(m.data)
}

// int32s views the allocation as key slots. mmap regions are page
// aligned, so the cast is always well aligned.
func (m *layoutMem) int32s() []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(&m.data[0])), len(m.data)/4)
}
