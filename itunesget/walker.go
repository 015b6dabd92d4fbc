package itunesget

import (
	"github.com/pmerlin1/itunes-get/itunesget/itunesdbutil"
	"github.com/pmerlin1/itunes-get/itunesget/logger"
)

// ProgressFunc is called during decoding to report progress.
// current: tracks decoded so far
// total: declared track count
type ProgressFunc func(current int64, total int64)

// Dataset type discriminants carried by the root chunk's children.
const (
	datasetTypeTracks    = 1
	datasetTypePlaylists = 2
)

const (
	rootHeaderLen    = 24
	datasetHeaderLen = 16
)

// parseDatabase walks the root chunk's declared children and returns the
// decoded library. Datasets appear in file order with the track list ahead
// of the playlist lists, which is what makes both the positional play count
// correlation and membership resolution against decoded tracks work.
// Unknown dataset types are skipped via their declared total length.
func parseDatabase(data []byte, playCounts []itunesdbutil.PlayCountEntry, progress ProgressFunc) (*Library, error) {
	if len(data) < rootHeaderLen {
		return nil, ErrInvalidDatabase.WithMessage("database file too short").WithDetail("size", len(data))
	}

	tag, _ := itunesdbutil.TagAt(data, 0)
	if tag != itunesdbutil.TagDatabase {
		return nil, ErrInvalidDatabase.WithDetail("tag", tag)
	}

	headerLen, _ := itunesdbutil.Uint32At(data, 4)
	version, _ := itunesdbutil.Uint32At(data, 16)
	numChildren, _ := itunesdbutil.Uint32At(data, 20)

	logger.Info("database version 0x%02x, %d children", version, numChildren)

	lib := &Library{
		Tracks:        make(map[uint32]*Track),
		Playlists:     make(map[string]*Playlist),
		Version:       version,
		trackOrdinals: make(map[int]uint32),
	}

	offset := int(headerLen)
	for i := uint32(0); i < numChildren; i++ {
		if offset+datasetHeaderLen > len(data) {
			logger.Warn("database truncated after %d of %d children", i, numChildren)
			break
		}

		childHeaderLen, _ := itunesdbutil.Uint32At(data, offset+4)
		childTotalLen, _ := itunesdbutil.Uint32At(data, offset+8)
		childType, _ := itunesdbutil.Uint32At(data, offset+12)

		switch childType {
		case datasetTypeTracks:
			parseTrackList(data, offset+int(childHeaderLen), lib, playCounts, progress)
		case datasetTypePlaylists:
			parsePlaylistList(data, offset+int(childHeaderLen), lib)
		}

		if childTotalLen == 0 {
			break
		}
		offset += int(childTotalLen)
	}

	return lib, nil
}

// parseTrackList decodes the mhlt child: a run of track chunks laid end to
// end. The i-th position in the walk receives the i-th play count entry.
func parseTrackList(data []byte, offset int, lib *Library, playCounts []itunesdbutil.PlayCountEntry, progress ProgressFunc) {
	tag, okTag := itunesdbutil.TagAt(data, offset)
	headerLen, okHeader := itunesdbutil.Uint32At(data, offset+4)
	numTracks, okCount := itunesdbutil.Uint32At(data, offset+8)
	if !okTag || !okHeader || !okCount || tag != itunesdbutil.TagTrackList {
		logger.Warn("track list at offset %d has unexpected tag %q", offset, tag)
		return
	}

	logger.Info("found %d tracks", numTracks)

	trackOffset := offset + int(headerLen)
	for i := uint32(0); i < numTracks; i++ {
		if trackOffset+trackHeaderLen >= len(data) {
			logger.Warn("track list truncated after %d of %d tracks", i, numTracks)
			break
		}

		track, next := parseTrack(data, trackOffset)
		if track != nil {
			if int(i) < len(playCounts) {
				track.PlayCount = playCounts[i].PlayCount
			}
			lib.Tracks[track.ID] = track

			// Legacy playlist references may be positional, and the format
			// does not say whether they count from 0 or 1. Record the track
			// under both ordinals; membership records resolve by id and
			// remain the primary mechanism.
			lib.trackOrdinals[int(i)] = track.ID
			lib.trackOrdinals[int(i)+1] = track.ID
		}
		trackOffset = next

		if progress != nil {
			progress(int64(i)+1, int64(numTracks))
		}
	}
}

// parsePlaylistList decodes the mhlp child: a run of playlist chunks.
func parsePlaylistList(data []byte, offset int, lib *Library) {
	tag, okTag := itunesdbutil.TagAt(data, offset)
	headerLen, okHeader := itunesdbutil.Uint32At(data, offset+4)
	numPlaylists, okCount := itunesdbutil.Uint32At(data, offset+8)
	if !okTag || !okHeader || !okCount || tag != itunesdbutil.TagPlaylistList {
		logger.Warn("playlist list at offset %d has unexpected tag %q", offset, tag)
		return
	}

	logger.Info("found %d playlists", numPlaylists)

	playlistOffset := offset + int(headerLen)
	for i := uint32(0); i < numPlaylists; i++ {
		if playlistOffset+playlistHeaderLen+4 > len(data) {
			logger.Warn("playlist list truncated after %d of %d playlists", i, numPlaylists)
			break
		}

		playlist, next := parsePlaylist(data, playlistOffset, int(i), lib.Tracks)
		if playlist != nil {
			lib.Playlists[playlist.Name] = playlist
		}
		playlistOffset = next
	}
}
