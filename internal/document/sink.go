// Package document stores the comparison result returned by the endpoint.
//
// Replacing the document means atomically replacing the file at the
// configured path, so a viewer never sees a half-written result.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kyaw-zaya123/checking/internal/archive"
	"github.com/kyaw-zaya123/checking/internal/diskspace"
	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/models"
)

// Announcer is told when a new document is in place.
type Announcer interface {
	DocumentReady(title, path string)
}

// Document describes a stored response.
type Document struct {
	Path            string
	Title           string
	Text            string
	ArchiveLocation string
}

// Options configures a Sink.
type Options struct {
	Path          string           // file replaced on every success
	Archive       archive.Store    // optional
	ArchivePrefix string           // key prefix inside the archive
	Bus           *events.EventBus // optional, receives DocumentEvent
	Announcer     Announcer        // optional
	Logger        *logging.Logger
}

// Sink replaces the current document with each successful response.
type Sink struct {
	opts   Options
	logger *logging.Logger

	mu   sync.Mutex
	last *Document
}

// NewSink creates a sink.
func NewSink(opts Options) *Sink {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Sink{opts: opts, logger: logger}
}

// Last returns the most recent document, or nil.
func (s *Sink) Last() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Replace writes the response body over the current document. Archiving is
// best effort: a failed archive upload is logged and does not fail Replace.
func (s *Sink) Replace(ctx context.Context, attemptID string, resp *models.Response) error {
	if err := writeAtomic(s.opts.Path, resp.Body); err != nil {
		return err
	}

	title, text := Parse(resp.Body)
	doc := &Document{Path: s.opts.Path, Title: title, Text: text}
	if abs, err := filepath.Abs(s.opts.Path); err == nil {
		doc.Path = abs
	}

	s.logger.Info().
		Str("attempt", attemptID).
		Str("path", doc.Path).
		Str("title", title).
		Int("bytes", len(resp.Body)).
		Msg("Comparison document saved")

	if s.opts.Archive != nil {
		contentType := resp.ContentType
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		key := archive.Key(s.opts.ArchivePrefix, attemptID)
		location, err := s.opts.Archive.Put(ctx, key, resp.Body, contentType)
		if err != nil {
			s.logger.Warn().Err(err).Str("backend", s.opts.Archive.Name()).Str("key", key).Msg("Failed to archive document")
		} else {
			doc.ArchiveLocation = location
			s.logger.Info().Str("backend", s.opts.Archive.Name()).Str("location", location).Msg("Document archived")
		}
	}

	s.mu.Lock()
	s.last = doc
	s.mu.Unlock()

	if s.opts.Bus != nil {
		s.opts.Bus.Publish(&events.DocumentEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventDocument, Time: time.Now()},
			Path:      doc.Path,
			Title:     doc.Title,
			Text:      doc.Text,
		})
	}
	if s.opts.Announcer != nil {
		s.opts.Announcer.DocumentReady(doc.Title, doc.Path)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("document path is not configured")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := diskspace.Check(dir, int64(len(data))); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set document permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
