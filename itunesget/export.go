package itunesget

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
)

var csvHeader = []string{"Artist", "Album", "Title", "Genre", "Year", "Rating", "Play Count"}

// ExportCSV writes tracks as CSV rows to w. When playlistName is empty the
// whole library is exported, otherwise only that playlist's resolved
// members. Returns the number of track rows written.
func (l *Library) ExportCSV(w io.Writer, playlistName string) (int, error) {
	var tracks []*Track
	if playlistName != "" {
		selected, err := l.TracksForPlaylist(playlistName)
		if err != nil {
			return 0, err
		}
		tracks = selected
	} else {
		tracks = make([]*Track, 0, len(l.Tracks))
		for _, track := range l.Tracks {
			tracks = append(tracks, track)
		}
	}

	sortTracksForExport(tracks)

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return 0, ErrExportFailed.WithCause(err)
	}

	for _, track := range tracks {
		year := ""
		if track.HasYear {
			year = strconv.FormatUint(uint64(track.Year), 10)
		}
		record := []string{
			track.Artist,
			track.Album,
			track.Title,
			track.Genre,
			year,
			strconv.Itoa(track.Rating),
			strconv.FormatUint(uint64(track.PlayCount), 10),
		}
		if err := writer.Write(record); err != nil {
			return 0, ErrExportFailed.WithCause(err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, ErrExportFailed.WithCause(err)
	}
	return len(tracks), nil
}

// sortTracksForExport orders tracks by play count (highest first), then
// rating, then artist and album.
func sortTracksForExport(tracks []*Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.PlayCount != b.PlayCount {
			return a.PlayCount > b.PlayCount
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		return a.Album < b.Album
	})
}
