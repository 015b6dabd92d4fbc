package itunesdbutil

import "encoding/binary"

// Chunk tags used by the iTunesDB and Play Counts file formats. Every chunk
// is self-describing: a 4-byte tag followed by explicit header and total
// length fields, all little-endian.
const (
	TagDatabase     = "mhbd"
	TagDataset      = "mhsd"
	TagTrackList    = "mhlt"
	TagTrack        = "mhit"
	TagSubRecord    = "mhod"
	TagPlaylistList = "mhlp"
	TagPlaylist     = "mhyp"
	TagMember       = "mhip"
	TagPlayCounts   = "mhdp"
)

// TagAt reads a 4-byte chunk tag, reporting false when the buffer is too
// short.
func TagAt(data []byte, offset int) (string, bool) {
	if offset < 0 || offset+4 > len(data) {
		return "", false
	}
	return string(data[offset : offset+4]), true
}

// Uint32At reads a little-endian uint32, reporting false when the buffer is
// too short.
func Uint32At(data []byte, offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[offset:]), true
}

// Uint64At reads a little-endian uint64, reporting false when the buffer is
// too short.
func Uint64At(data []byte, offset int) (uint64, bool) {
	if offset < 0 || offset+8 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[offset:]), true
}

// ByteAt reads a single byte, reporting false when the buffer is too short.
func ByteAt(data []byte, offset int) (byte, bool) {
	if offset < 0 || offset >= len(data) {
		return 0, false
	}
	return data[offset], true
}
