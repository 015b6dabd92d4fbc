package itunesdbutil

import "fmt"

// PlayCountEntry is one per-track statistics record from the Play Counts
// file. Entries correlate with database tracks by decode position, not by
// track id: the two files are written together and agree on track ordering.
type PlayCountEntry struct {
	PlayCount  uint32
	LastPlayed uint32
	Bookmark   uint32
}

const (
	playCountsHeaderLen = 16
	playCountsEntryLen  = 12

	// Upper bound for the pre-allocation hint only; the actual entry count
	// is still honored up to the end of the buffer.
	playCountsAllocCap = 1 << 16
)

// ParsePlayCounts decodes the Play Counts statistics file. A buffer shorter
// than the fixed header yields no entries and no error. The declared entry
// stride may exceed the 12 bytes we decode; trailing per-entry fields are
// opaque and skipped. An entry that would run past the end of the buffer
// truncates the sequence rather than failing the parse.
func ParsePlayCounts(data []byte) ([]PlayCountEntry, error) {
	if len(data) < playCountsHeaderLen {
		return nil, nil
	}

	tag, _ := TagAt(data, 0)
	headerLen, _ := Uint32At(data, 4)
	entryLen, _ := Uint32At(data, 8)
	numEntries, _ := Uint32At(data, 12)

	if tag != TagPlayCounts {
		return nil, fmt.Errorf("unexpected play counts tag %q", tag)
	}
	if entryLen == 0 {
		return nil, fmt.Errorf("play counts entry length is zero")
	}

	capHint := int(numEntries)
	if capHint > playCountsAllocCap {
		capHint = playCountsAllocCap
	}
	entries := make([]PlayCountEntry, 0, capHint)

	offset := int(headerLen)
	for i := uint32(0); i < numEntries; i++ {
		if offset+int(entryLen) > len(data) || offset+playCountsEntryLen > len(data) {
			break
		}

		playCount, _ := Uint32At(data, offset)
		lastPlayed, _ := Uint32At(data, offset+4)
		bookmark, _ := Uint32At(data, offset+8)
		entries = append(entries, PlayCountEntry{
			PlayCount:  playCount,
			LastPlayed: lastPlayed,
			Bookmark:   bookmark,
		})

		offset += int(entryLen)
	}

	return entries, nil
}
