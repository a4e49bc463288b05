// Package keyfile reads and writes the flat binary files the index
// tooling ships sorted key sets in. The format is a small fixed header
// followed by the keys as little-endian int32 values in ascending order.
package keyfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

const (
	// Magic identifies a key file ("FIDX" little-endian).
	Magic   = uint32(0x58444946)
	Version = uint16(1)

	headerSize = 16
)

var (
	ErrBadMagic   = errors.New("not a key file: bad magic")
	ErrBadVersion = errors.New("unsupported key file version")
	ErrTruncated  = errors.New("key file shorter than its header claims")
	ErrUnsorted   = errors.New("key file not sorted in ascending order")
)

// header is the on-disk layout of the first 16 bytes
type header struct {
	Magic    uint32
	Version  uint16
	Reserved uint16
	Count    uint64
}

// Write stores keys at path, replacing any existing file. The keys must
// already be sorted; Write refuses ill-ordered input so a bad file can
// never be produced.
func Write(path string, keys []int32) error {
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			return fmt.Errorf("%w: keys[%d] > keys[%d]", ErrUnsorted, i-1, i)
		}
	}

	buf := make([]byte, headerSize+4*len(keys))
	binary.LittleEndian.PutUint32(buf[0:], Magic)
	binary.LittleEndian.PutUint16(buf[4:], Version)
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(keys)))
	for i, k := range keys {
		binary.LittleEndian.PutUint32(buf[headerSize+4*i:], uint32(k))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Load reads the keys at path through a memory mapping and validates
// the header and the ordering before returning them.
func Load(path string) ([]int32, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer reader.Close()

	var hdrBuf [headerSize]byte
	if _, err := reader.ReadAt(hdrBuf[:], 0); err != nil {
		return nil, fmt.Errorf("read key file header: %w", err)
	}

	hdr := header{
		Magic:    binary.LittleEndian.Uint32(hdrBuf[0:]),
		Version:  binary.LittleEndian.Uint16(hdrBuf[4:]),
		Reserved: binary.LittleEndian.Uint16(hdrBuf[6:]),
		Count:    binary.LittleEndian.Uint64(hdrBuf[8:]),
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, hdr.Version)
	}
	if uint64(reader.Len()) < headerSize+4*hdr.Count {
		return nil, fmt.Errorf("%w: header says %d keys, file has %d bytes",
			ErrTruncated, hdr.Count, reader.Len())
	}

	body := make([]byte, 4*hdr.Count)
	if hdr.Count > 0 {
		if _, err := reader.ReadAt(body, headerSize); err != nil {
			return nil, fmt.Errorf("read key file body: %w", err)
		}
	}

	keys := make([]int32, hdr.Count)
	for i := range keys {
		keys[i] = int32(binary.LittleEndian.Uint32(body[4*i:]))
		if i > 0 && keys[i-1] > keys[i] {
			return nil, fmt.Errorf("%w: keys[%d] > keys[%d]", ErrUnsorted, i-1, i)
		}
	}
	return keys, nil
}
