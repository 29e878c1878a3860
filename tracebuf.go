package main

import (
	"fmt"
	"time"
)

// The trace buffer keeps what moved on the line recently so a protocol error
// can be reported with context. Entries age out, nothing here is persisted.
const traceBufMaxAge = 30 * time.Second
const traceBufMaxEntries = 128

type traceBufEntry struct {
	dir     string
	data    []byte
	addedAt time.Time
}

type traceBufStruct struct {
	entries []traceBufEntry
}

func (s *traceBufStruct) add(dir string, p []byte) {
	// frames get reused by the caller, keep our own copy
	d := make([]byte, len(p))
	copy(d, p)
	s.entries = append(s.entries, traceBufEntry{
		dir:     dir,
		data:    d,
		addedAt: time.Now(),
	})
	s.purgeOldEntries()
}

func (s *traceBufStruct) purgeOldEntries() {
	for len(s.entries) > 0 &&
		(time.Since(s.entries[0].addedAt) > traceBufMaxAge || len(s.entries) > traceBufMaxEntries) {
		s.entries = s.entries[1:]
	}
}

// formatted trace lines, oldest first
func (s *traceBufStruct) dump() []string {
	s.purgeOldEntries()
	lines := make([]string, 0, len(s.entries))
	for i := range s.entries {
		lines = append(lines, fmt.Sprintf("%v %-2v [% x]",
			s.entries[i].addedAt.Format("15:04:05.000"), s.entries[i].dir, s.entries[i].data))
	}
	return lines
}
