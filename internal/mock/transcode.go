package mock

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fhuszti/vod-ms-go/internal/port"
)

// TranscodeSubmitter implements port.TranscodeSubmitter for tests.
type TranscodeSubmitter struct {
	mu sync.Mutex

	Err error
	// OnSubmit runs after a successful submission, e.g. to publish a playlist.
	OnSubmit func(in port.TranscodeInput)

	Inputs []port.TranscodeInput
}

func (m *TranscodeSubmitter) SubmitTranscode(ctx context.Context, in port.TranscodeInput) error {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, in)
	err, hook := m.Err, m.OnSubmit
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		hook(in)
	}
	return nil
}

// Calls returns the number of submissions.
func (m *TranscodeSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inputs)
}

// Transcoder implements port.Transcoder for tests by writing Files into the
// output directory.
type Transcoder struct {
	Files map[string]string // relative path -> content
	Err   error

	Called      bool
	InputPath   string
	OutputDir   string
	GotReencode bool
}

func (m *Transcoder) Run(ctx context.Context, inputPath, outputDir string, reencode bool) (string, error) {
	m.Called = true
	m.InputPath = inputPath
	m.OutputDir = outputDir
	m.GotReencode = reencode
	if m.Err != nil {
		return "", m.Err
	}
	for rel, content := range m.Files {
		p := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return "", err
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			return "", err
		}
	}
	return filepath.Join(outputDir, "index.m3u8"), nil
}
