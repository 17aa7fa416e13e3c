package site

import (
	"context"
	"log/slog"
	"sync"
)

// SiteOptions control how a Site publishes builds.
type SiteOptions struct {
	// WriteOutput writes every published build to the generator's output path.
	WriteOutput bool
	// LiveReload injects the reload script into the served page.
	LiveReload bool
}

// Site holds the most recently published build.
type Site struct {
	gen      *Generator
	opts     SiteOptions
	logger   *slog.Logger
	notifier *notifier

	mu          sync.RWMutex
	current     *Result
	page        []byte
	fingerprint uint64
}

// NewSite creates a Site around gen.
func NewSite(gen *Generator, opts SiteOptions) *Site {
	return &Site{
		gen:      gen,
		opts:     opts,
		logger:   gen.logger,
		notifier: newNotifier(),
	}
}

// Rebuild runs the pipeline and publishes the result. It reports false when
// the inputs are unchanged since the last published build.
func (s *Site) Rebuild(ctx context.Context) (bool, error) {
	s.mu.RLock()
	published := s.current != nil
	last := s.fingerprint
	s.mu.RUnlock()

	if published {
		fp, err := s.gen.Fingerprint()
		if err != nil {
			return false, err
		}
		if fp == last {
			s.logger.Debug("inputs unchanged, skipping rebuild")
			return false, nil
		}
	}

	res, err := s.gen.Build(ctx)
	if err != nil {
		return false, err
	}
	page, err := s.gen.Page(res, s.opts.LiveReload)
	if err != nil {
		return false, err
	}
	if s.opts.WriteOutput {
		if err := s.gen.Write(res); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	s.current = res
	s.page = page
	s.fingerprint = res.Fingerprint
	s.mu.Unlock()

	s.notifier.broadcast()
	return true, nil
}

// Current returns the published build and its page, nil before the first build.
func (s *Site) Current() (*Result, []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.page
}
