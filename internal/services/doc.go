// Package services defines the [Service] interface for the remote playlist
// store and the [FeatureProvider] interface for external enrichment sources,
// with Spotify and AcousticBrainz implementations.
//
// # Service Interface
//
// The pipeline talks to the remote store only through [Service]: fetching the
// liked-track library, listing playlists, reading member ids, creating
// playlists, and adding/removing tracks. [SpotifyService] is the production
// implementation; tests substitute in-memory fakes.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 with automatic token refresh through
// [oauth2.Config.Client]. All list endpoints paginate internally so callers
// always receive complete results. Playlist mutations batch at 100 ids per
// request, matching the Spotify API limit.
//
// # Feature Providers
//
// [AcousticBrainzProvider] resolves a MusicBrainz recording MBID from title
// and main artist, then fetches the AcousticBrainz high-level document and
// flattens its classifier nodes into normalized 0..1 signals. Providers are
// registered in a [ProviderRegistry]; the enrichment stage iterates whatever
// the registry holds, so adding a provider requires no pipeline changes.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : no usable credential supplied
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrNoMatch] : provider found no data for a track
package services
