// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
)

// MockService is a stateful test double for [services.Service].
//
// It behaves like a tiny in-memory Spotify: CreatePlaylist, AddTracks, and
// RemoveTracks mutate Playlists and PlaylistTracks, so tests can assert on
// the resulting remote state instead of on call sequences.
type MockService struct {
	mu sync.Mutex

	Liked          []models.Track
	Playlists      []models.Playlist
	PlaylistTracks map[string][]string // playlist id → ordered track ids
	UserID         string
	Err            error // when set, every call fails with it

	calls   map[string]int
	created int
}

func (m *MockService) fail(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[method]++
	return m.Err
}

// Calls returns how many times the named method was invoked.
func (m *MockService) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.fail("Authenticate")
}

func (m *MockService) CurrentUserID(ctx context.Context) (string, error) {
	if err := m.fail("CurrentUserID"); err != nil {
		return "", err
	}
	if m.UserID == "" {
		return "mock-user", nil
	}
	return m.UserID, nil
}

func (m *MockService) LikedTracks(ctx context.Context) ([]models.Track, error) {
	if err := m.fail("LikedTracks"); err != nil {
		return nil, err
	}
	return append([]models.Track(nil), m.Liked...), nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := m.fail("GetPlaylists"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Playlist(nil), m.Playlists...), nil
}

func (m *MockService) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	if err := m.fail("PlaylistTrackIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.PlaylistTracks[playlistID]...), nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name string) (*models.Playlist, error) {
	if err := m.fail("CreatePlaylist"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	pl := models.Playlist{
		ID:      fmt.Sprintf("mock-pl-%d", m.created),
		Name:    name,
		OwnerID: userID,
	}
	m.Playlists = append(m.Playlists, pl)
	if m.PlaylistTracks == nil {
		m.PlaylistTracks = map[string][]string{}
	}
	m.PlaylistTracks[pl.ID] = nil
	return &pl, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := m.fail("AddTracks"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlaylistTracks == nil {
		m.PlaylistTracks = map[string][]string{}
	}
	m.PlaylistTracks[playlistID] = append(m.PlaylistTracks[playlistID], trackIDs...)
	return nil
}

func (m *MockService) RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := m.fail("RemoveTracks"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	remove := map[string]bool{}
	for _, id := range trackIDs {
		remove[id] = true
	}
	var kept []string
	for _, id := range m.PlaylistTracks[playlistID] {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	m.PlaylistTracks[playlistID] = kept
	return nil
}

func (m *MockService) Name() string { return "mock" }

// MockProvider is a test double for [services.FeatureProvider]. Resolve
// consults Payloads by track id and counts calls, so tests can verify which
// lookups actually hit the provider.
type MockProvider struct {
	ProviderID string
	Ver        string
	Payloads   map[string]map[string]any // track id → feature payload
	Err        error                     // when set, every Resolve fails

	mu    sync.Mutex
	calls int
}

func (p *MockProvider) ID() string {
	if p.ProviderID == "" {
		return "mock-provider"
	}
	return p.ProviderID
}

func (p *MockProvider) Version() string {
	if p.Ver == "" {
		return "test"
	}
	return p.Ver
}

func (p *MockProvider) Resolve(ctx context.Context, track models.Track) (map[string]any, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	payload, ok := p.Payloads[track.ID]
	if !ok {
		return nil, shared.ErrNoMatch
	}
	return payload, nil
}

// ResolveCalls returns how many times Resolve was invoked.
func (p *MockProvider) ResolveCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
