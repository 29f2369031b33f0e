// package services defines the remote store and feature provider
// collaborators consumed by the pipeline
package services

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
)

// Service is the remote playlist store used by the fetch and sync stages.
//
// Batching limits (Spotify caps additions and removals at 100 ids per call)
// are the implementation's concern; callers pass full id lists.
type Service interface {
	// Authenticate performs OAuth or token-based authentication.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUserID returns the authenticated user's id, needed to create
	// playlists on their behalf.
	CurrentUserID(ctx context.Context) (string, error)

	// LikedTracks retrieves the user's full saved-track library, paginating
	// internally.
	LikedTracks(ctx context.Context) ([]models.Track, error)

	// GetPlaylists retrieves all playlists owned by or followed by the user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// PlaylistTrackIDs returns the ordered track ids of a playlist,
	// including duplicate occurrences.
	PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error)

	// CreatePlaylist creates an empty private playlist and returns it.
	CreatePlaylist(ctx context.Context, userID, name string) (*models.Playlist, error)

	// AddTracks appends tracks to a playlist.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// RemoveTracks removes every occurrence of each given track from a
	// playlist.
	RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the service name (e.g. "Spotify").
	Name() string
}

// OAuthService extends Service for providers with a browser-based
// authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// OAuthConfig exposes the underlying OAuth2 configuration for the local
	// callback server.
	OAuthConfig() *oauth2.Config
}

// FeatureProvider resolves auxiliary per-track data from an external source.
//
// Resolve is read-only: providers never touch the enrichment cache. A track
// the provider cannot match returns shared.ErrNoMatch; transport and parse
// failures are reported as errors and downgraded to "no match" by the
// enrichment stage.
type FeatureProvider interface {
	// ID returns the stable provider identifier (e.g. "acousticbrainz").
	ID() string

	// Version returns the provider implementation version recorded on each
	// enrichment entry it produces.
	Version() string

	// Resolve returns the feature payload for one track.
	Resolve(ctx context.Context, track models.Track) (map[string]any, error)
}

// ProviderRegistry holds feature providers keyed by id. Registering a new
// provider requires no change to the enrichment algorithm.
type ProviderRegistry struct {
	order     []string
	providers map[string]FeatureProvider
}

// NewProviderRegistry creates a registry containing the given providers, in
// order.
func NewProviderRegistry(providers ...FeatureProvider) *ProviderRegistry {
	r := &ProviderRegistry{providers: map[string]FeatureProvider{}}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider by id.
func (r *ProviderRegistry) Register(p FeatureProvider) {
	if _, exists := r.providers[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.providers[p.ID()] = p
}

// Get returns the provider with the given id, or false when unknown.
func (r *ProviderRegistry) Get(id string) (FeatureProvider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// List returns all registered providers in registration order.
func (r *ProviderRegistry) List() []FeatureProvider {
	providers := make([]FeatureProvider, 0, len(r.order))
	for _, id := range r.order {
		providers = append(providers, r.providers[id])
	}
	return providers
}
