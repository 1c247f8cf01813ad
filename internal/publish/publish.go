// Package publish writes a template board as markdown files (an index plus one page per
// template) for review or a help-center export.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"replydesk/internal/model"
	"replydesk/internal/mutate"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written" yaml:"written"`
}

// WriteTemplate writes <toDir>/templates/<id>.md.
func WriteTemplate(t model.Template, group *model.Group, toDir string, opt WriteOptions) (WriteResult, error) {
	if strings.TrimSpace(t.ID) == "" {
		return WriteResult{}, errors.New("missing template id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	outDir := filepath.Join(toDir, "templates")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	outPath := filepath.Join(outDir, t.ID+".md")
	if err := writeFile(outPath, []byte(RenderTemplateMarkdown(t, group)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

// WriteBoard writes <toDir>/index.md and a page for every template on the board. It stops at
// the first error.
func WriteBoard(b *mutate.Board, toDir string, opt WriteOptions) (WriteResult, error) {
	if b == nil {
		return WriteResult{}, errors.New("missing board")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderBoardIndexMarkdown(b)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{indexPath}

	lanes := make([]mutate.Lane, 0, len(b.Groups)+1)
	lanes = append(lanes, b.Groups...)
	lanes = append(lanes, b.Ungrouped)
	for _, l := range lanes {
		for _, t := range l.Templates {
			res, err := WriteTemplate(t, l.Group, toDir, opt)
			if err != nil {
				return WriteResult{}, err
			}
			written = append(written, res.Written...)
		}
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
