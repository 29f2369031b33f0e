// package formatter renders pipeline results (playlist diffs, mood
// summaries, track exports) to text, Markdown, JSON, and CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// DiffToText renders playlist diffs as a unified-diff style report.
//
// Additions are prefixed with "+", duplicate removals with "-". Playlists
// without pending changes are listed with an unchanged marker so the report
// always accounts for every target.
func DiffToText(diffs []models.PlaylistDiff) []byte {
	var buf bytes.Buffer

	for i, diff := range diffs {
		if i > 0 {
			buf.WriteString("\n")
		}
		header := diff.Name
		if diff.PlaylistID != "" {
			header = fmt.Sprintf("%s (%s)", diff.Name, diff.PlaylistID)
		} else {
			header = fmt.Sprintf("%s (new playlist)", diff.Name)
		}
		buf.WriteString(fmt.Sprintf("=== %s\n", header))
		buf.WriteString(fmt.Sprintf("--- remote: %d tracks\n", len(diff.ExistingIDs)))
		buf.WriteString(fmt.Sprintf("+++ target: %d tracks\n", len(diff.TargetIDs)))

		if !diff.HasChanges() {
			buf.WriteString("    (no changes)\n")
			continue
		}
		for _, id := range diff.Duplicates {
			buf.WriteString(fmt.Sprintf("- %s (duplicate)\n", id))
		}
		for _, id := range diff.NewToAdd {
			buf.WriteString(fmt.Sprintf("+ %s\n", id))
		}
	}

	return buf.Bytes()
}

// DiffToMarkdown renders playlist diffs as a Markdown report.
func DiffToMarkdown(diffs []models.PlaylistDiff) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Playlist Sync Preview\n\n")

	changed := 0
	for _, diff := range diffs {
		if diff.HasChanges() {
			changed++
		}
	}
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n", len(diffs)))
	buf.WriteString(fmt.Sprintf("**With changes**: %d\n\n", changed))

	for _, diff := range diffs {
		buf.WriteString(fmt.Sprintf("## %s\n\n", diff.Name))
		if diff.PlaylistID == "" {
			buf.WriteString("*New playlist*\n\n")
		}
		if !diff.HasChanges() {
			buf.WriteString("No changes.\n\n")
			continue
		}
		if len(diff.NewToAdd) > 0 {
			buf.WriteString(fmt.Sprintf("**To add** (%d):\n\n", len(diff.NewToAdd)))
			for _, id := range diff.NewToAdd {
				buf.WriteString(fmt.Sprintf("- `%s`\n", id))
			}
			buf.WriteString("\n")
		}
		if len(diff.Duplicates) > 0 {
			buf.WriteString(fmt.Sprintf("**Duplicates to remove** (%d):\n\n", len(diff.Duplicates)))
			for _, id := range diff.Duplicates {
				buf.WriteString(fmt.Sprintf("- `%s`\n", id))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes()
}

// DiffToJSON renders playlist diffs as indented JSON.
func DiffToJSON(diffs []models.PlaylistDiff) ([]byte, error) {
	data, err := json.MarshalIndent(diffs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diffs: %w", err)
	}
	return data, nil
}

// WriteDiffReport writes the text diff report to a file and returns its path.
// The filename defaults to auto_playlists_{epoch}.diff.
func WriteDiffReport(diffs []models.PlaylistDiff, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("auto_playlists_%d.diff", time.Now().Unix())
	}
	if err := os.WriteFile(path, DiffToText(diffs), 0644); err != nil {
		return "", fmt.Errorf("failed to write diff report: %w", err)
	}
	return path, nil
}

// MoodSummaryToText renders mood counts as an aligned table, largest mood
// first, ties broken alphabetically.
func MoodSummaryToText(counts map[string]int) []byte {
	moods := make([]string, 0, len(counts))
	for mood := range counts {
		moods = append(moods, mood)
	}
	sort.Slice(moods, func(i, j int) bool {
		if counts[moods[i]] != counts[moods[j]] {
			return counts[moods[i]] > counts[moods[j]]
		}
		return moods[i] < moods[j]
	})

	total := 0
	for _, n := range counts {
		total += n
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Tracks classified: %d\n\n", total))
	for _, mood := range moods {
		buf.WriteString(fmt.Sprintf("%-16s %d\n", mood, counts[mood]))
	}
	return buf.Bytes()
}

// TracksToCSV converts a track list to CSV with columns: ID, Title, Artist,
// Album, ReleaseDate, AddedAt
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "ReleaseDate", "AddedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			track.ReleaseDate,
			track.AddedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteTracksCSV exports the fetched library to a CSV file. The filename
// defaults to liked_tracks.csv.
func WriteTracksCSV(tracks []models.Track, path string) (string, error) {
	if path == "" {
		path = "liked_tracks.csv"
	}
	data, err := TracksToCSV(tracks)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}

// JobsToText renders jobs as a fixed-width status table, oldest first.
func JobsToText(jobs []models.PipelineJob) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%-36s %-10s %-8s %-9s %s\n", "ID", "STEP", "STATUS", "PROGRESS", "CREATED"))
	for _, job := range jobs {
		buf.WriteString(fmt.Sprintf("%-36s %-10s %-8s %8.0f%% %s\n",
			job.ID, job.Step, job.Status, job.Progress*100,
			job.CreatedAt.Format(time.RFC3339)))
	}
	return buf.Bytes()
}
