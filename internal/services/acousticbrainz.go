// MusicBrainz + AcousticBrainz feature provider
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

const (
	musicBrainzBaseURL    = "https://musicbrainz.org/ws/2"
	acousticBrainzBaseURL = "https://acousticbrainz.org/api/v1"
)

// AcousticBrainzProvider resolves high-level audio features for a track in
// two hops: a MusicBrainz recording search (title + main artist) yields a
// recording MBID, then AcousticBrainz supplies the high-level feature
// document for that MBID.
//
// Either hop failing to match is a normal outcome surfaced as
// shared.ErrNoMatch; transport and parse failures come back as wrapped
// request errors. The provider performs no caching of its own.
type AcousticBrainzProvider struct {
	httpClient *http.Client
	userAgent  string
	mbBaseURL  string
	abBaseURL  string
}

// NewAcousticBrainzProvider creates the provider. MusicBrainz etiquette
// requires a descriptive User-Agent identifying the application.
func NewAcousticBrainzProvider(client *http.Client, userAgent string) *AcousticBrainzProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if userAgent == "" {
		userAgent = "spotify-auto-playlists/0.1"
	}
	return &AcousticBrainzProvider{
		httpClient: client,
		userAgent:  userAgent,
		mbBaseURL:  musicBrainzBaseURL,
		abBaseURL:  acousticBrainzBaseURL,
	}
}

func (p *AcousticBrainzProvider) ID() string {
	return "acousticbrainz"
}

func (p *AcousticBrainzProvider) Version() string {
	return "v1"
}

type mbRecordingSearch struct {
	Recordings []struct {
		ID string `json:"id"`
	} `json:"recordings"`
}

// Resolve looks up the track's recording MBID and fetches its high-level
// features. The returned payload carries the MBID alongside the flattened
// highlevel document.
func (p *AcousticBrainzProvider) Resolve(ctx context.Context, track models.Track) (map[string]any, error) {
	mbid, err := p.searchRecording(ctx, track)
	if err != nil {
		return nil, err
	}

	highlevel, err := p.fetchHighLevel(ctx, mbid)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"mbid": mbid}
	for k, v := range highlevel {
		payload[k] = v
	}
	return payload, nil
}

// searchRecording resolves a MusicBrainz recording MBID from the track's
// title and main artist. No usable query or an empty result set is a
// no-match, not an error.
func (p *AcousticBrainzProvider) searchRecording(ctx context.Context, track models.Track) (string, error) {
	artist := track.MainArtist()
	if track.Title == "" || artist == "" {
		return "", fmt.Errorf("%w: track %q has no searchable title/artist", shared.ErrNoMatch, track.ID)
	}

	query := fmt.Sprintf("recording:%q AND artist:%q", track.Title, artist)
	endpoint := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=5", p.mbBaseURL, url.QueryEscape(query))

	var result mbRecordingSearch
	if err := p.getJSON(ctx, endpoint, &result); err != nil {
		return "", err
	}

	if len(result.Recordings) == 0 || result.Recordings[0].ID == "" {
		return "", fmt.Errorf("%w: no recording for %q by %q", shared.ErrNoMatch, track.Title, artist)
	}
	return result.Recordings[0].ID, nil
}

// fetchHighLevel retrieves the AcousticBrainz high-level document for an
// MBID and flattens the probability values the classifier consumes.
func (p *AcousticBrainzProvider) fetchHighLevel(ctx context.Context, mbid string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/%s/high-level", p.abBaseURL, mbid)

	var result map[string]any
	if err := p.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	if highlevel, ok := result["highlevel"].(map[string]any); ok {
		return flattenHighLevel(highlevel), nil
	}
	return result, nil
}

// flattenHighLevel reduces AcousticBrainz classifier nodes of the form
// {"value": "danceable", "probability": 0.93} into the flat keys the rule
// and classification engines address directly.
//
// Binary mood nodes are normalized to a 0..1 signal for the positive class:
// 0.93 when the value is "danceable", 1 − 0.93 when it is "not_danceable".
// The "mood_" prefix is stripped, so mood_party becomes party. The raw label
// is kept under <name>_value for rule authors who want the string form.
func flattenHighLevel(highlevel map[string]any) map[string]any {
	flat := map[string]any{}
	for name, raw := range highlevel {
		node, ok := raw.(map[string]any)
		if !ok {
			flat[name] = raw
			continue
		}

		value, _ := node["value"].(string)
		probability, hasProb := node["probability"].(float64)

		key := strings.TrimPrefix(name, "mood_")

		if value != "" {
			flat[key+"_value"] = value
		}
		if hasProb {
			signal := probability
			if strings.HasPrefix(value, "not_") {
				signal = 1 - probability
			}
			flat[key] = signal
		}
	}
	return flat
}

func (p *AcousticBrainzProvider) getJSON(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status 404", shared.ErrNoMatch)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
