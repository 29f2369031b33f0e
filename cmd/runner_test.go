package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/me-odo/spotify-auto-playlists/internal/cache"
	"github.com/me-odo/spotify-auto-playlists/internal/models"
	"github.com/me-odo/spotify-auto-playlists/internal/shared"
	tu "github.com/me-odo/spotify-auto-playlists/internal/testing"
)

// newTestRunner builds a runner over a throwaway file cache with buffered output.
func newTestRunner(t *testing.T, spotify *tu.MockService) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	logger := shared.NewLogger(io.Discard)
	runner := NewRunner(RunnerOpts{
		Spotify: spotify,
		Store:   cache.NewFileStore(t.TempDir(), logger),
		Logger:  logger,
		Output:  output,
	})
	return runner, output
}

// runCLI invokes a command line against the runner's registered commands.
func runCLI(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "autolists", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"autolists"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			spotify := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Spotify:    spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("wires repositories and engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.tracks == nil || runner.enrich == nil || runner.class == nil {
				t.Error("expected cache repositories to be wired")
			}
			if runner.engine == nil {
				t.Error("expected pipeline engine to be wired")
			}
			if runner.manager == nil {
				t.Error("expected job manager to be wired")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("requireSpotify", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		err := runner.requireSpotify()
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}

		runner = NewRunner(RunnerOpts{Spotify: &tu.MockService{}})
		if err := runner.requireSpotify(); err != nil {
			t.Errorf("expected no error with service wired, got %v", err)
		}
	})
}

func TestFetchCommand(t *testing.T) {
	svc := &tu.MockService{Liked: []models.Track{
		{ID: "t1", Title: "Song One", Artist: "Artist"},
		{ID: "t2", Title: "Song Two", Artist: "Artist"},
	}}
	runner, output := newTestRunner(t, svc)

	if err := runCLI(t, runner, "fetch"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(output.String(), "2 liked tracks") {
		t.Errorf("expected track count in output, got %q", output.String())
	}

	saved, err := runner.tracks.Load()
	if err != nil {
		t.Fatalf("failed to load cached tracks: %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("expected 2 cached tracks, got %d", len(saved))
	}
}

func TestFetchCommand_NoService(t *testing.T) {
	runner := NewRunner(RunnerOpts{
		Store:  cache.NewFileStore(t.TempDir(), shared.NewLogger(io.Discard)),
		Logger: shared.NewLogger(io.Discard),
		Output: &bytes.Buffer{},
	})

	err := runCLI(t, runner, "fetch")
	if !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestBuildCommand_EmptyCache(t *testing.T) {
	runner, _ := newTestRunner(t, &tu.MockService{})

	err := runCLI(t, runner, "build")
	if !errors.Is(err, shared.ErrCacheEmpty) {
		t.Errorf("expected ErrCacheEmpty, got %v", err)
	}
}

func TestJobsCommand(t *testing.T) {
	svc := &tu.MockService{Liked: []models.Track{{ID: "t1", Title: "Song"}}}
	runner, output := newTestRunner(t, svc)

	if err := runCLI(t, runner, "jobs", "submit", "--wait", "fetch"); err != nil {
		t.Fatalf("jobs submit failed: %v", err)
	}
	if !strings.Contains(output.String(), "Job submitted") {
		t.Errorf("expected submission confirmation, got %q", output.String())
	}

	output.Reset()
	if err := runCLI(t, runner, "jobs", "list"); err != nil {
		t.Fatalf("jobs list failed: %v", err)
	}
	if !strings.Contains(output.String(), "fetch") {
		t.Errorf("expected job step in listing, got %q", output.String())
	}
	if !strings.Contains(output.String(), "done") {
		t.Errorf("expected finished status in listing, got %q", output.String())
	}
}

func TestJobsCommand_RejectsApply(t *testing.T) {
	runner, _ := newTestRunner(t, &tu.MockService{})

	err := runCLI(t, runner, "jobs", "submit", "apply")
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRulesCommand(t *testing.T) {
	runner, output := newTestRunner(t, &tu.MockService{})

	path := t.TempDir() + "/rule.json"
	ruleJSON := `{"id":"night-drive","name":"Night Drive","enabled":true,` +
		`"rules":{"operator":"and","conditions":[{"field":"bpm","operator":"gte","value":100}]}}`
	if err := os.WriteFile(path, []byte(ruleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, runner, "rules", "add", path); err != nil {
		t.Fatalf("rules add failed: %v", err)
	}
	if !strings.Contains(output.String(), "Night Drive") {
		t.Errorf("expected saved rule name, got %q", output.String())
	}

	output.Reset()
	if err := runCLI(t, runner, "rules", "list"); err != nil {
		t.Fatalf("rules list failed: %v", err)
	}
	if !strings.Contains(output.String(), "night-drive") {
		t.Errorf("expected rule id in listing, got %q", output.String())
	}

	output.Reset()
	if err := runCLI(t, runner, "rules", "delete", "night-drive"); err != nil {
		t.Fatalf("rules delete failed: %v", err)
	}

	output.Reset()
	if err := runCLI(t, runner, "rules", "list"); err != nil {
		t.Fatalf("rules list failed: %v", err)
	}
	if !strings.Contains(output.String(), "No rule sets stored") {
		t.Errorf("expected empty listing, got %q", output.String())
	}
}

func TestRulesCommand_MissingFile(t *testing.T) {
	runner, _ := newTestRunner(t, &tu.MockService{})

	if err := runCLI(t, runner, "rules", "add", "/nonexistent/rule.json"); err == nil {
		t.Fatal("expected error for missing rule file")
	}
}
