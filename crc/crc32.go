// Package crc computes the IEEE CRC-32 checksum the container trailer
// stores, with support for resuming a checksum across chunk boundaries.
package crc

import "hash/crc32"

// ieeeTable is the standard reflected IEEE 802.3 polynomial table
// (0xEDB88320).
var ieeeTable = crc32.IEEETable

// Sum32 computes a fresh CRC-32/IEEE checksum of data.
func Sum32(data []byte) uint32 {
	return crc32.Checksum(data, ieeeTable)
}

// Continue resumes a checksum from a previously finalized value, folding
// in data as if it had been part of the original input. prev must be the
// return value of an earlier Sum32 or Continue call, not an intermediate
// hash.Hash32 state.
func Continue(prev uint32, data []byte) uint32 {
	return crc32.Update(prev, ieeeTable, data)
}

// Writer incrementally accumulates a CRC-32 across successive Write calls,
// for use alongside a streaming encoder that has not yet assembled its
// full value stream in memory.
type Writer struct {
	sum uint32
}

// NewWriter creates a Writer with an empty running checksum.
func NewWriter() *Writer {
	return &Writer{}
}

// Write folds p into the running checksum. It never returns an error.
func (w *Writer) Write(p []byte) (int, error) {
	w.sum = crc32.Update(w.sum, ieeeTable, p)
	return len(p), nil
}

// Sum32 returns the checksum accumulated so far.
func (w *Writer) Sum32() uint32 { return w.sum }

// Reset zeroes the running checksum.
func (w *Writer) Reset() { w.sum = 0 }
