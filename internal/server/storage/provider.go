package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sharebox/internal/common"
)

// SettingsSource resolves a non-empty profile code to store settings.
type SettingsSource interface {
	Settings(ctx context.Context, code string) (Settings, error)
}

// SettingsSourceFunc adapts a function to SettingsSource.
type SettingsSourceFunc func(ctx context.Context, code string) (Settings, error)

func (f SettingsSourceFunc) Settings(ctx context.Context, code string) (Settings, error) {
	return f(ctx, code)
}

// Provider lazily builds and caches one Client per profile code. The empty
// code uses the default settings. Safe for concurrent use.
type Provider struct {
	defaults Settings
	source   SettingsSource
	opts     []Option
	build    func(ctx context.Context, s Settings, opts ...Option) (*Client, error)

	mu      sync.Mutex
	clients map[string]*Client
	gen     map[string]uint64
	epoch   uint64
}

// NewProvider returns a Provider. source may be nil, in which case only the
// default profile resolves.
func NewProvider(defaults Settings, source SettingsSource, opts ...Option) *Provider {
	return &Provider{
		defaults: defaults,
		source:   source,
		opts:     opts,
		build:    NewClient,
		clients:  make(map[string]*Client),
		gen:      make(map[string]uint64),
	}
}

// Client returns the cached client for code, building it on first use.
func (p *Provider) Client(ctx context.Context, code string) (*Client, error) {
	p.mu.Lock()
	if c, ok := p.clients[code]; ok {
		p.mu.Unlock()
		return c, nil
	}
	gen, epoch := p.gen[code], p.epoch
	p.mu.Unlock()

	s, err := p.settings(ctx, code)
	if err != nil {
		return nil, err
	}
	c, err := p.build(ctx, s, p.opts...)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.clients[code]; ok {
		return existing, nil
	}
	// A Reset during the build means s may be stale; hand it out uncached.
	if p.gen[code] == gen && p.epoch == epoch {
		p.clients[code] = c
	}
	return c, nil
}

// ForContext returns the client for the profile selected in ctx.
func (p *Provider) ForContext(ctx context.Context) (*Client, error) {
	return p.Client(ctx, ProfileFromContext(ctx))
}

// Reset drops the cached client for code.
func (p *Provider) Reset(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, code)
	p.gen[code]++
}

// ResetAll drops every cached client.
func (p *Provider) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch++
	p.clients = make(map[string]*Client)
}

func (p *Provider) settings(ctx context.Context, code string) (Settings, error) {
	switch {
	case code == "":
		return p.defaults, nil
	case p.source == nil:
		return Settings{}, fmt.Errorf("profile %q no longer exists: %w", code, common.ErrorUnknownProfile)
	}
	s, err := p.source.Settings(ctx, code)
	if errors.Is(err, common.ErrorNotFound) {
		return Settings{}, fmt.Errorf("profile %q no longer exists: %w", code, common.ErrorUnknownProfile)
	}
	return s, err
}
