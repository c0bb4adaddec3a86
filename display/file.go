package display

import (
	"context"
	"os"
	"path/filepath"

	"github.com/seekwell/seekwell/errors"
)

// FileSink writes the rendered result to a single file, creating parent
// directories as needed.
type FileSink struct {
	Path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Deliver(ctx context.Context, report *Report) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}
	if err := os.WriteFile(s.Path, []byte(report.Result), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write result to %s", s.Path)
	}
	return nil
}
