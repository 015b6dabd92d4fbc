package itunesget

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/pmerlin1/itunes-get/itunesget/itunesdbutil"
)

// Binary fixture builders for decoder tests. Layouts follow the on-disk
// iTunesDB chunk formats; see the layout constants in the decoders.

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func putU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}

// stringSubRecord builds an mhod string sub-record of the given sub-type.
func stringSubRecord(subType uint32, text string) []byte {
	payload := utf16leBytes(text)
	total := 24 + 16 + len(payload)
	buf := make([]byte, total)
	copy(buf, itunesdbutil.TagSubRecord)
	putU32(buf, 4, 24)
	putU32(buf, 8, uint32(total))
	putU32(buf, 12, subType)
	putU32(buf, 28, uint32(len(payload)))
	copy(buf[40:], payload)
	return buf
}

// rawSubRecord builds an mhod sub-record of an arbitrary sub-type with
// opaque zero content, used for types the decoders skip.
func rawSubRecord(subType uint32, totalLen int) []byte {
	buf := make([]byte, totalLen)
	copy(buf, itunesdbutil.TagSubRecord)
	putU32(buf, 4, 24)
	putU32(buf, 8, uint32(totalLen))
	putU32(buf, 12, subType)
	return buf
}

// trackRecord builds an mhit track chunk. Field groups beyond the fixed
// header are populated only when headerLen is long enough to carry them,
// matching the format's length-gated versioning.
func trackRecord(id uint32, headerLen int, rating byte, year uint32, persistentID uint64, subs ...[]byte) []byte {
	header := make([]byte, headerLen)
	copy(header, itunesdbutil.TagTrack)
	putU32(header, 4, uint32(headerLen))
	putU32(header, 12, uint32(len(subs)))
	putU32(header, 16, id)
	if headerLen > 31 {
		header[31] = rating
	}
	if headerLen >= 60 {
		putU32(header, 36, 4*1024*1024) // file size
		putU32(header, 40, 215000)      // duration
		putU32(header, 44, 1)           // track number
		putU32(header, 48, 12)          // total tracks
		putU32(header, 52, year)
		putU32(header, 56, 192) // bitrate
	}
	if headerLen >= 120 {
		putU64(header, 112, persistentID)
	}

	body := bytes.Join(subs, nil)
	putU32(header, 8, uint32(headerLen+len(body)))
	return append(header, body...)
}

// trackList builds an mhlt chunk wrapping the given track records.
func trackList(tracks ...[]byte) []byte {
	buf := make([]byte, 12)
	copy(buf, itunesdbutil.TagTrackList)
	putU32(buf, 4, 12)
	putU32(buf, 8, uint32(len(tracks)))
	return append(buf, bytes.Join(tracks, nil)...)
}

// memberRecord builds an mhip membership record carrying a track id.
func memberRecord(trackID uint32, headerLen int) []byte {
	buf := make([]byte, headerLen)
	copy(buf, itunesdbutil.TagMember)
	putU32(buf, 4, uint32(headerLen))
	putU32(buf, 8, uint32(headerLen))
	if headerLen >= 28 {
		putU32(buf, 24, trackID)
	}
	return buf
}

// playlistRecord builds an mhyp playlist chunk with the given sub-records
// and membership records.
func playlistRecord(subs [][]byte, members [][]byte) []byte {
	header := make([]byte, 20)
	copy(header, itunesdbutil.TagPlaylist)
	putU32(header, 4, 20)
	putU32(header, 12, uint32(len(subs)))
	putU32(header, 16, uint32(len(members)))

	body := append(bytes.Join(subs, nil), bytes.Join(members, nil)...)
	putU32(header, 8, uint32(20+len(body)))
	return append(header, body...)
}

// playlistList builds an mhlp chunk wrapping the given playlist records.
func playlistList(playlists ...[]byte) []byte {
	buf := make([]byte, 12)
	copy(buf, itunesdbutil.TagPlaylistList)
	putU32(buf, 4, 12)
	putU32(buf, 8, uint32(len(playlists)))
	return append(buf, bytes.Join(playlists, nil)...)
}

// dataset builds an mhsd wrapper chunk with a type discriminant.
func dataset(dsType uint32, content []byte) []byte {
	buf := make([]byte, 16)
	copy(buf, itunesdbutil.TagDataset)
	putU32(buf, 4, 16)
	putU32(buf, 8, uint32(16+len(content)))
	putU32(buf, 12, dsType)
	return append(buf, content...)
}

// database builds an mhbd root chunk wrapping the given dataset children.
func database(children ...[]byte) []byte {
	body := bytes.Join(children, nil)
	buf := make([]byte, 24)
	copy(buf, itunesdbutil.TagDatabase)
	putU32(buf, 4, 24)
	putU32(buf, 8, uint32(24+len(body)))
	putU32(buf, 16, 0x19) // version
	putU32(buf, 20, uint32(len(children)))
	return append(buf, body...)
}

// playCountsFile builds an mhdp statistics file with the given play counts.
func playCountsFile(counts ...uint32) []byte {
	buf := make([]byte, 16)
	copy(buf, itunesdbutil.TagPlayCounts)
	putU32(buf, 4, 16)
	putU32(buf, 8, 12)
	putU32(buf, 12, uint32(len(counts)))
	for i, c := range counts {
		entry := make([]byte, 12)
		putU32(entry, 0, c)
		putU32(entry, 4, uint32(1000+i))
		buf = append(buf, entry...)
	}
	return buf
}
