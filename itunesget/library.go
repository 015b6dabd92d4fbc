package itunesget

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/pmerlin1/itunes-get/itunesget/itunesdbutil"
	"github.com/pmerlin1/itunes-get/itunesget/logger"
)

// Library is the decoded result of one database parse: an immutable snapshot
// of tracks and playlists handed to the caller. Nothing mutates a Library
// after Load returns it.
type Library struct {
	Tracks    map[uint32]*Track
	Playlists map[string]*Playlist
	Version   uint32

	// DatabaseDigest is the sha256 digest of the raw database buffer.
	DatabaseDigest digest.Digest

	// trackOrdinals stores every track id under both its 0-based and its
	// 1-based decode position, see parseTrackList.
	trackOrdinals map[int]uint32
}

// TrackByOrdinal looks up a track by its decode position. Both the 0-based
// and the 1-based position of a track resolve; prefer id lookups through
// Tracks where an id is available.
func (l *Library) TrackByOrdinal(position int) (*Track, bool) {
	id, ok := l.trackOrdinals[position]
	if !ok {
		return nil, false
	}
	track, ok := l.Tracks[id]
	return track, ok
}

// PlaylistNames returns all playlist names sorted alphabetically.
func (l *Library) PlaylistNames() []string {
	names := make([]string, 0, len(l.Playlists))
	for name := range l.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TracksForPlaylist resolves a playlist's members against the track map, in
// playlist order.
func (l *Library) TracksForPlaylist(name string) ([]*Track, error) {
	playlist, ok := l.Playlists[name]
	if !ok {
		return nil, ErrPlaylistNotFound.
			WithDetail("playlist", name).
			WithDetail("available", l.PlaylistNames())
	}

	tracks := make([]*Track, 0, len(playlist.TrackIDs))
	for _, id := range playlist.TrackIDs {
		if track, ok := l.Tracks[id]; ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// LibraryStats summarizes a decoded library.
type LibraryStats struct {
	TotalTracks     int
	PlayedTracks    int
	HighRatedTracks int // rated 4 stars or more
	TotalPlaylists  int
}

// Stats computes summary statistics over the library.
func (l *Library) Stats() LibraryStats {
	stats := LibraryStats{
		TotalTracks:    len(l.Tracks),
		TotalPlaylists: len(l.Playlists),
	}
	for _, track := range l.Tracks {
		if track.PlayCount > 0 {
			stats.PlayedTracks++
		}
		if track.Rating >= 4 {
			stats.HighRatedTracks++
		}
	}
	return stats
}

// LibraryLoader loads and decodes an iTunesDB database together with its
// optional Play Counts companion file.
type LibraryLoader interface {
	Load(ctx context.Context, progress ProgressFunc) (*Library, error)
}

type libraryLoader struct {
	dbPath         string
	playCountsPath string
}

// NewLibraryLoader creates a loader for the given database path and Play
// Counts path. playCountsPath may be empty to skip statistics entirely.
func NewLibraryLoader(dbPath, playCountsPath string) LibraryLoader {
	return &libraryLoader{
		dbPath:         dbPath,
		playCountsPath: playCountsPath,
	}
}

// Load reads both input files into memory, then runs the single synchronous
// decode pass. A missing or malformed Play Counts file is never fatal: play
// counts default to zero.
func (l *libraryLoader) Load(ctx context.Context, progress ProgressFunc) (*Library, error) {
	var dbData, playCountsData []byte

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := readMaybeGzip(l.dbPath)
		if err != nil {
			if os.IsNotExist(err) {
				return ErrDatabaseNotFound.WithDetail("path", l.dbPath)
			}
			return ErrDatabaseNotFound.WithDetail("path", l.dbPath).WithCause(err)
		}
		dbData = data
		return nil
	})
	g.Go(func() error {
		if l.playCountsPath == "" {
			return nil
		}
		data, err := readMaybeGzip(l.playCountsPath)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Info("play counts file not found, play counts default to 0")
			} else {
				logger.Warn("cannot read play counts file: %v", err)
			}
			return nil
		}
		playCountsData = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	playCounts, err := itunesdbutil.ParsePlayCounts(playCountsData)
	if err != nil {
		logger.Warn("%v", ErrInvalidPlayCounts.WithDetail("path", l.playCountsPath).WithCause(err))
		playCounts = nil
	} else if len(playCounts) > 0 {
		logger.Info("found %d play count entries", len(playCounts))
	}

	lib, err := parseDatabase(dbData, playCounts, progress)
	if err != nil {
		return nil, err
	}
	lib.DatabaseDigest = digest.FromBytes(dbData)
	return lib, nil
}

// readMaybeGzip reads a file, transparently decompressing gzip-compressed
// backups.
func readMaybeGzip(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip reader: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
