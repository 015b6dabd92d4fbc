package itunesget

import (
	"fmt"
	"strings"

	"github.com/pmerlin1/itunes-get/itunesget/itunesdbutil"
	"github.com/pmerlin1/itunes-get/itunesget/logger"
)

// Playlist groups tracks by id. TrackIDs holds only ids that resolved
// against the decoded track set, in record order; dangling references are
// dropped at decode time rather than stored.
type Playlist struct {
	Name     string
	TrackIDs []uint32
}

const (
	playlistHeaderLen = 20

	memberMinHeaderLen  = 28
	memberTrackIDOffset = 24

	// Bounds the name scan so a corrupt sub-record count cannot cause
	// unbounded work.
	maxNameSubRecords = 20

	// Advance distance when a playlist header is too corrupt to yield a
	// total length.
	playlistFallbackSkip = 100
)

// Names that mark legitimately-empty playlists worth keeping. Everything
// else with zero resolved members is a placeholder and gets dropped.
var keepEmptyPlaylistNames = []string{"podcasts", "on-the-go", "otg"}

// parsePlaylist decodes one playlist chunk at offset, returning the playlist
// and the offset of the next sibling. knownTracks is the set of
// already-decoded tracks used to drop dangling membership references. A nil
// playlist means the record was skipped or filtered out.
func parsePlaylist(data []byte, offset int, index int, knownTracks map[uint32]*Track) (*Playlist, int) {
	tag, okTag := itunesdbutil.TagAt(data, offset)
	headerLen, okHeader := itunesdbutil.Uint32At(data, offset+4)
	totalLen, okTotal := itunesdbutil.Uint32At(data, offset+8)
	numSubRecords, okSubs := itunesdbutil.Uint32At(data, offset+12)
	numMembers, okMembers := itunesdbutil.Uint32At(data, offset+16)

	next := offset + playlistFallbackSkip
	if okTotal && totalLen > 0 {
		next = offset + int(totalLen)
	}

	if !okTag || !okHeader || !okTotal || !okSubs || !okMembers {
		logger.Warn("truncated playlist record at offset %d, skipping", offset)
		return nil, next
	}
	if tag != itunesdbutil.TagPlaylist {
		logger.Warn("unexpected tag %q at offset %d, skipping record", tag, offset)
		return nil, next
	}

	playlist := &Playlist{Name: fmt.Sprintf("Playlist_%d", index)}
	playlistEnd := offset + int(totalLen)

	// First pass over the sub-record span: find the playlist name. Stops at
	// the first non-empty name sub-record.
	subOffset := offset + int(headerLen)
	nameScan := numSubRecords
	if nameScan > maxNameSubRecords {
		nameScan = maxNameSubRecords
	}
	for i := uint32(0); i < nameScan; i++ {
		if subOffset+16 > len(data) || subOffset >= playlistEnd {
			break
		}

		subTag, _ := itunesdbutil.TagAt(data, subOffset)
		subTotal, _ := itunesdbutil.Uint32At(data, subOffset+8)
		subType, _ := itunesdbutil.Uint32At(data, subOffset+12)

		if subTag == itunesdbutil.TagSubRecord && subType == subTypeTitle {
			name, _ := itunesdbutil.ParseStringField(data, subOffset)
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				playlist.Name = trimmed
				break
			}
		}

		if subTotal == 0 {
			break
		}
		subOffset += int(subTotal)
	}

	// Second pass from the same starting offset: skip all declared
	// sub-records to locate where membership records begin. Runs
	// independently of the name scan, which may have stopped early.
	memberOffset := offset + int(headerLen)
	for i := uint32(0); i < numSubRecords; i++ {
		if memberOffset+16 > len(data) || memberOffset >= playlistEnd {
			break
		}

		subTag, _ := itunesdbutil.TagAt(data, memberOffset)
		if subTag != itunesdbutil.TagSubRecord {
			break
		}
		subTotal, _ := itunesdbutil.Uint32At(data, memberOffset+8)
		if subTotal == 0 {
			break
		}
		memberOffset += int(subTotal)
	}

	// Membership records: one track id each, resolved directly against the
	// decoded track set.
	for i := uint32(0); i < numMembers; i++ {
		if memberOffset+16 > len(data) || memberOffset >= playlistEnd {
			break
		}

		memberTag, _ := itunesdbutil.TagAt(data, memberOffset)
		memberHeaderLen, _ := itunesdbutil.Uint32At(data, memberOffset+4)
		memberTotal, _ := itunesdbutil.Uint32At(data, memberOffset+8)

		if memberTag == itunesdbutil.TagMember && memberHeaderLen >= memberMinHeaderLen {
			if trackID, ok := itunesdbutil.Uint32At(data, memberOffset+memberTrackIDOffset); ok {
				if _, exists := knownTracks[trackID]; exists {
					playlist.TrackIDs = append(playlist.TrackIDs, trackID)
				}
			}
		}

		if memberTotal == 0 {
			break
		}
		memberOffset += int(memberTotal)
	}

	if len(playlist.TrackIDs) == 0 && !keepWhenEmpty(playlist.Name) {
		return nil, next
	}
	return playlist, next
}

// keepWhenEmpty reports whether an empty playlist should be retained based
// on its name (case-insensitive substring match).
func keepWhenEmpty(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range keepEmptyPlaylistNames {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
