package gherkin_parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	FeatureExtension = ".feature"
)

// SearchFeatureFilesIn returns every .feature file below the given
// directories in lexical order per directory.
func SearchFeatureFilesIn(directories []string) ([]string, error) {
	featureFiles := make([]string, 0)

	for _, directory := range directories {
		err := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), FeatureExtension) {
				featureFiles = append(featureFiles, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("could not search feature files in %s: %w", directory, err)
		}
	}

	return featureFiles, nil
}

// ParseGherkinFile parses a single feature document. Node ids are random
// UUIDs.
func ParseGherkinFile(reader io.Reader) (*messages.GherkinDocument, error) {
	return gherkin.ParseGherkinDocument(reader, uuid.NewString)
}

// FileParser reads and parses feature files from disk.
type FileParser struct {
	// Concurrency limits how many files are parsed at once.
	// Zero uses GOMAXPROCS.
	Concurrency int
}

// NewFileParser creates a FileParser.
func NewFileParser() *FileParser {
	return &FileParser{}
}

// Search returns the feature files below directories.
func (p *FileParser) Search(directories []string) ([]string, error) {
	return SearchFeatureFilesIn(directories)
}

// ParseFiles parses paths concurrently. Documents are returned in the order
// of paths with Uri set to the file path. The first failure cancels the
// remaining work.
func (p *FileParser) ParseFiles(ctx context.Context, paths []string) ([]*messages.GherkinDocument, error) {
	documents := make([]*messages.GherkinDocument, len(paths))

	limit := p.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("could not read file %s: %w", path, err)
			}

			document, err := ParseGherkinFile(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("gherkin parse error in file %s: %w", path, err)
			}
			document.Uri = path

			documents[i] = document
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return documents, nil
}
