package itunesget

import (
	"github.com/pmerlin1/itunes-get/itunesget/itunesdbutil"
	"github.com/pmerlin1/itunes-get/itunesget/logger"
)

// Track is one decoded database track. Fields gated by header length keep
// their zero values when the header is too short to carry them.
type Track struct {
	ID     uint32
	Title  string
	Artist string
	Album  string
	Genre  string

	// Rating is normalized to a 0-5 star scale from the raw 0-100 byte.
	Rating int

	FileSize    uint32
	Duration    uint32
	TrackNumber uint32
	TotalTracks uint32
	Year        uint32
	HasYear     bool
	Bitrate     uint32

	PersistentID    uint64
	HasPersistentID bool

	// PlayCount comes from the Play Counts file, correlated by decode
	// position. Zero when no statistics entry exists for this position.
	PlayCount uint32
}

// Track header layout. The fixed fields end at offset 20; everything after
// is gated by the declared header length, which doubles as the format's
// version marker: older databases carry shorter mhit headers and simply omit
// the later field groups.
//
//	header length > 31   rating byte at offset 31 (raw 0-100)
//	header length >= 60  six uint32s at offsets 36-60: file size, duration,
//	                     track number, total tracks, year, bitrate
//	header length >= 120 uint64 persistent id at offset 112
const (
	trackHeaderLen = 20

	trackRatingOffset       = 31
	trackNumericGroupOffset = 36
	trackNumericGroupMin    = 60
	trackPersistentIDOffset = 112
	trackPersistentIDMin    = 120

	// Advance distance when a track header is too corrupt to yield a total
	// length.
	trackFallbackSkip = 100
)

// Sub-record types routed to the string decoder.
const (
	subTypeTitle  = 1
	subTypeAlbum  = 3
	subTypeArtist = 4
	subTypeGenre  = 5
)

// stringField maps a sub-record type to its destination field, or nil for
// types we do not decode.
func (t *Track) stringField(subType uint32) *string {
	switch subType {
	case subTypeTitle:
		return &t.Title
	case subTypeAlbum:
		return &t.Album
	case subTypeArtist:
		return &t.Artist
	case subTypeGenre:
		return &t.Genre
	}
	return nil
}

// parseTrack decodes one track chunk at offset, returning the decoded track
// and the offset of the next sibling. A skipped record returns a nil track;
// the caller advances by the returned offset either way.
func parseTrack(data []byte, offset int) (*Track, int) {
	tag, okTag := itunesdbutil.TagAt(data, offset)
	headerLen, okHeader := itunesdbutil.Uint32At(data, offset+4)
	totalLen, okTotal := itunesdbutil.Uint32At(data, offset+8)
	numSubRecords, okSubs := itunesdbutil.Uint32At(data, offset+12)
	trackID, okID := itunesdbutil.Uint32At(data, offset+16)

	next := offset + trackFallbackSkip
	if okTotal && totalLen > 0 {
		next = offset + int(totalLen)
	}

	if !okTag || !okHeader || !okTotal || !okSubs || !okID {
		logger.Warn("truncated track record at offset %d, skipping", offset)
		return nil, next
	}
	if tag != itunesdbutil.TagTrack {
		logger.Warn("unexpected tag %q at offset %d, skipping record", tag, offset)
		return nil, next
	}

	track := &Track{ID: trackID}

	if headerLen > trackRatingOffset {
		if raw, ok := itunesdbutil.ByteAt(data, offset+trackRatingOffset); ok {
			track.Rating = int(raw) / 20
		}
	}

	if headerLen >= trackNumericGroupMin {
		base := offset + trackNumericGroupOffset
		if v, ok := itunesdbutil.Uint32At(data, base); ok {
			track.FileSize = v
		}
		if v, ok := itunesdbutil.Uint32At(data, base+4); ok {
			track.Duration = v
		}
		if v, ok := itunesdbutil.Uint32At(data, base+8); ok {
			track.TrackNumber = v
		}
		if v, ok := itunesdbutil.Uint32At(data, base+12); ok {
			track.TotalTracks = v
		}
		if v, ok := itunesdbutil.Uint32At(data, base+16); ok {
			track.Year = v
			track.HasYear = true
		}
		if v, ok := itunesdbutil.Uint32At(data, base+20); ok {
			track.Bitrate = v
		}
	}

	if headerLen >= trackPersistentIDMin {
		if v, ok := itunesdbutil.Uint64At(data, offset+trackPersistentIDOffset); ok {
			track.PersistentID = v
			track.HasPersistentID = true
		}
	}

	trackEnd := offset + int(totalLen)
	subOffset := offset + int(headerLen)
	for i := uint32(0); i < numSubRecords; i++ {
		if subOffset >= trackEnd || subOffset+16 > len(data) {
			break
		}

		subType, _ := itunesdbutil.Uint32At(data, subOffset+12)

		var consumed int
		if dest := track.stringField(subType); dest != nil {
			text, n := itunesdbutil.ParseStringField(data, subOffset)
			*dest = text
			consumed = n
		} else {
			// Unknown sub-record types advance by their own declared total
			// length without decoding.
			subTotal, ok := itunesdbutil.Uint32At(data, subOffset+8)
			if !ok {
				break
			}
			consumed = int(subTotal)
		}

		if consumed <= 0 {
			break
		}
		subOffset += consumed
	}

	return track, next
}
