//go:build !linux && !darwin

package fastidx

import "unsafe"

// layoutMem is the backing allocation for the blocked tree image. On
// platforms without a page-granular allocation primitive we over-allocate
// from the Go heap and slice at the requested alignment; the index stays
// correct and only the TLB benefit of page alignment is lost.
type layoutMem struct {
	raw  []byte
	data []byte
}

func allocLayout(size, align int) (*layoutMem, error) {
	raw := make([]byte, size+align-1)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) % uintptr(align)); rem != 0 {
		off = align - rem
	}
	return &layoutMem{raw: raw, data: raw[off : off+size]}, nil
}

func (m *layoutMem) release() error {
	m.raw = nil
	m.data = nil
	return nil
}

func (m *layoutMem) size() int {
	return len(m.data)
}

func (m *layoutMem) int32s() []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(&m.data[0])), len(m.data)/4)
}
