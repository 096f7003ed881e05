package intelligence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Persist writes the id→vector map to the cache file. The write goes to a
// temp file first and is renamed into place.
//
// Layout, little-endian: uint32 entry count, then per entry int64 id,
// uint32 dimension, dimension float32 values.
func (s *EmbeddingStore) Persist() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := 4
	for _, vec := range s.vecs {
		size += 8 + 4 + len(vec)*4
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.vecs)))
	for id, vec := range s.vecs {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(id))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(vec)))
		for _, v := range vec {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Restore replaces the in-memory map with the cache file contents. A missing
// file leaves the store empty and is not an error; a truncated or garbled
// file is, since resolution must not run against an unknown embedding set.
func (s *EmbeddingStore) Restore() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache: %w", err)
	}
	vecs, err := decodeCache(data)
	if err != nil {
		return fmt.Errorf("cache file %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.vecs = vecs
	s.mu.Unlock()
	return nil
}

func decodeCache(data []byte) (map[int64][]float32, error) {
	if len(data) < 4 {
		return nil, errors.New("truncated header")
	}
	count := binary.LittleEndian.Uint32(data[:4])
	data = data[4:]
	vecs := make(map[int64][]float32, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 12 {
			return nil, errors.New("truncated entry")
		}
		id := int64(binary.LittleEndian.Uint64(data[:8]))
		dim := int(binary.LittleEndian.Uint32(data[8:12]))
		data = data[12:]
		if len(data) < dim*4 {
			return nil, errors.New("truncated vector")
		}
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = math.Float32frombits(binary.LittleEndian.Uint32(data[d*4 : d*4+4]))
		}
		data = data[dim*4:]
		vecs[id] = vec
	}
	if len(data) != 0 {
		return nil, errors.New("trailing bytes")
	}
	return vecs, nil
}
