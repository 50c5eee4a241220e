// Package service wires the generation pipeline: load documents, build the
// prompt, call the provider, split the response, write the artifacts.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"archgen/internal/output"
	"archgen/internal/port"
	"archgen/internal/prompt"
)

// RunParams carries the dependencies and settings for a RunService.
type RunParams struct {
	Source    port.DocumentSource
	Generator port.Generator
	Writer    *output.Writer

	// DocsDesc is a human-readable description of the document source,
	// e.g. "discovery-docs" or "s3://bucket/prefix".
	DocsDesc  string
	Provider  string
	Model     string
	MaxTokens int

	// Archive is optional; when set together with ArchiveBucket, the
	// written artifacts are uploaded under runs/<run-id>/.
	Archive       port.ObjectStorage
	ArchiveBucket string

	Logger  *zap.Logger
	Console io.Writer
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID     string
	Documents int
	Paths     *output.ArtifactPaths
}

// RunService executes one generation run end to end.
type RunService struct {
	p RunParams
}

// NewRunService creates a RunService. Logger and Console may be nil.
func NewRunService(p RunParams) *RunService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Console == nil {
		p.Console = os.Stdout
	}
	return &RunService{p: p}
}

// Run loads the discovery documents, generates the architecture proposal and
// writes the three artifacts. Zero documents is informational, not fatal.
func (s *RunService) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.NewString()
	logger := s.p.Logger.With(zap.String("run_id", runID))

	documents, err := s.p.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading discovery documents: %w", err)
	}
	if len(documents) == 0 {
		fmt.Fprintf(s.p.Console, "No discovery docs found in %s. Add .md/.txt/.pdf files and re-run.\n", s.p.DocsDesc)
		logger.Info("no discovery documents found", zap.String("source", s.p.DocsDesc))
	}

	built := prompt.Build(documents)
	logger.Debug("prompt assembled",
		zap.Int("documents", len(documents)),
		zap.Int("prompt_bytes", len(built)))

	fmt.Fprintf(s.p.Console, "Calling %s... (this may take ~10-20s)\n", s.p.Provider)
	logger.Info("invoking provider",
		zap.String("provider", s.p.Provider),
		zap.String("model", s.p.Model),
		zap.Int("max_tokens", s.p.MaxTokens))

	result, err := s.p.Generator.Generate(ctx, port.GenerateInput{
		Prompt:    built,
		Model:     s.p.Model,
		MaxTokens: s.p.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generating architecture: %w", err)
	}

	diagram, remainder := output.SplitDiagram(result.Text)
	if diagram == "" {
		logger.Warn("response contained no mermaid block")
	}

	paths, err := s.p.Writer.Write(diagram, remainder, result.Text, result.Raw)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.p.Console, "Saved:\n")
	fmt.Fprintf(s.p.Console, "- diagram: %s\n", paths.Diagram)
	fmt.Fprintf(s.p.Console, "- explanation: %s\n", paths.Explanation)
	fmt.Fprintf(s.p.Console, "- full response JSON: %s\n", paths.RawResponse)

	if s.p.Archive != nil && s.p.ArchiveBucket != "" {
		if err := s.archive(ctx, runID, paths); err != nil {
			return nil, err
		}
		logger.Info("artifacts archived",
			zap.String("bucket", s.p.ArchiveBucket),
			zap.String("prefix", "runs/"+runID))
	}

	return &RunResult{
		RunID:     runID,
		Documents: len(documents),
		Paths:     paths,
	}, nil
}

// archive uploads the three artifacts under runs/<run-id>/ in the archive
// bucket. Any failure names the artifact that could not be uploaded.
func (s *RunService) archive(ctx context.Context, runID string, paths *output.ArtifactPaths) error {
	artifacts := []struct {
		path        string
		contentType string
	}{
		{paths.Diagram, "text/plain"},
		{paths.Explanation, "text/markdown"},
		{paths.RawResponse, "application/json"},
	}
	for _, a := range artifacts {
		data, err := os.ReadFile(a.path)
		if err != nil {
			return fmt.Errorf("reading artifact %s for archive: %w", a.path, err)
		}
		key := "runs/" + runID + "/" + filepath.Base(a.path)
		_, err = s.p.Archive.Upload(ctx, port.UploadInput{
			Bucket:      s.p.ArchiveBucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: a.contentType,
		})
		if err != nil {
			return fmt.Errorf("archiving %s: %w", a.path, err)
		}
	}
	return nil
}
