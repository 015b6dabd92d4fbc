package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pmerlin1/itunes-get/itunesget"
	"github.com/pmerlin1/itunes-get/itunesget/logger"
)

var (
	dbPath         string
	playCountsPath string
	verbose        bool

	playlistName string
	outputPath   string
	noProgress   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "itunget",
		Short: "Extract music library data from iPod iTunesDB files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLogLevel(logger.LogLevelInfo)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "itunes-db", envOr("ITUNES_DB_PATH", "./iTunes/iTunesDB"), "Path to the iTunesDB file")
	rootCmd.PersistentFlags().StringVar(&playCountsPath, "play-counts", envOr("PLAY_COUNTS_PATH", "./iTunes/Play Counts"), "Path to the Play Counts file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// export command
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full library or a single playlist to CSV",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}
	exportCmd.Flags().StringVarP(&playlistName, "playlist", "p", "", "Export a specific playlist instead of the full library")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV file path (default: ipod_music_library.csv or <playlist>.csv)")
	exportCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")

	// playlists command
	playlistsCmd := &cobra.Command{
		Use:   "playlists",
		Short: "List all playlists in the database",
		Args:  cobra.NoArgs,
		Run:   runPlaylists,
	}

	// info command
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show database summary information",
		Args:  cobra.NoArgs,
		Run:   runInfo,
	}

	rootCmd.AddCommand(exportCmd, playlistsCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func loadLibrary(progress itunesget.ProgressFunc) *itunesget.Library {
	loader := itunesget.NewLibraryLoader(dbPath, playCountsPath)
	lib, err := loader.Load(context.Background(), progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return lib
}

func runExport(cmd *cobra.Command, args []string) {
	var progress itunesget.ProgressFunc
	var bar *progressbar.ProgressBar
	var initOnce bool

	if !noProgress {
		// Initialize the progress bar once the declared track count is known
		progress = func(current, total int64) {
			if !initOnce && total > 0 {
				bar = progressbar.Default(total, "Decoding tracks")
				initOnce = true
			}
			if bar != nil {
				bar.Set64(current)
			}
		}
	}

	lib := loadLibrary(progress)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	target := outputPath
	if target == "" {
		outputDir := envOr("OUTPUT_DIR", ".")
		if playlistName != "" {
			target = filepath.Join(outputDir, sanitizeFilename(playlistName)+".csv")
		} else {
			target = filepath.Join(outputDir, "ipod_music_library.csv")
		}
	}

	outFile, err := os.Create(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	exported, err := lib.ExportCSV(outFile, playlistName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d tracks to %s\n", exported, target)
	printSummary(lib)

	if playlistName != "" {
		tracks, err := lib.TracksForPlaylist(playlistName)
		if err == nil {
			var totalPlays uint32
			for _, track := range tracks {
				totalPlays += track.PlayCount
			}
			fmt.Printf("  Playlist %q: %d tracks, %d total plays\n", playlistName, len(tracks), totalPlays)
		}
	}
}

func runPlaylists(cmd *cobra.Command, args []string) {
	lib := loadLibrary(nil)

	names := lib.PlaylistNames()
	fmt.Printf("Found %d playlists:\n", len(names))
	for _, name := range names {
		fmt.Printf("  - %s (%d tracks)\n", name, len(lib.Playlists[name].TrackIDs))
	}
}

func runInfo(cmd *cobra.Command, args []string) {
	lib := loadLibrary(nil)
	stats := lib.Stats()

	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("  Digest:    %s\n", lib.DatabaseDigest)
	fmt.Printf("  Version:   0x%02x\n", lib.Version)
	fmt.Printf("  Tracks:    %d\n", stats.TotalTracks)
	fmt.Printf("  Playlists: %d\n", stats.TotalPlaylists)
}

func printSummary(lib *itunesget.Library) {
	stats := lib.Stats()
	fmt.Println("\nSummary:")
	fmt.Printf("  Total tracks: %d\n", stats.TotalTracks)
	fmt.Printf("  Tracks with play counts: %d\n", stats.PlayedTracks)
	fmt.Printf("  Highly rated tracks (4+ stars): %d\n", stats.HighRatedTracks)
	fmt.Printf("  Total playlists: %d\n", stats.TotalPlaylists)
}

// sanitizeFilename converts a playlist name into a safe lowercase filename.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimRight(b.String(), " ")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	return strings.ToLower(cleaned)
}
