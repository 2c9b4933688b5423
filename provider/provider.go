// Package provider talks to hosted large-language-model completion services.
// Each backend owns its request/response translation and its credential;
// the Registry routes a backend name to an implementation.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aman1195/risk-scan-pro/config"
)

// Backend names accepted as aiModel
const (
	OpenAIName = "openai"
	GeminiName = "gemini"
	GrokName   = "grok"
)

var (
	ErrUnknownBackend = errors.New("unknown AI backend")
	ErrNotConfigured  = errors.New("AI backend not configured")
	ErrUpstream       = errors.New("AI backend request failed")

	// ErrMalformedCompletion is an upstream failure where the call succeeded
	// but the payload could not be read as a completion.
	ErrMalformedCompletion = fmt.Errorf("%w: malformed response", ErrUpstream)
	ErrEmptyCompletion     = fmt.Errorf("%w: response contained no content", ErrMalformedCompletion)
)

// CredentialError reports a backend whose API key is missing
type CredentialError struct {
	Backend string
	Label   string
	EnvVar  string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s API key not found. Please set the %s environment variable.", e.Label, e.EnvVar)
}

func (e *CredentialError) Unwrap() error {
	return ErrNotConfigured
}

// Request is a single completion call
type Request struct {
	System string
	Prompt string
	// Model overrides the backend's configured model when set
	Model string
}

// Backend is one hosted completion service
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Info describes a route for catalog listings
type Info struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Configured bool   `json:"configured"`
}

type route struct {
	backend Backend
	label   string
	envVar  string
}

// Registry is the routing table from backend name to implementation.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]route
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]route)}
}

// NewFromConfig registers the OpenAI, Gemini and Grok routes. A backend
// without an API key is registered as unconfigured so that selecting it
// reports the missing variable instead of falling through to another route.
func NewFromConfig(cfg *config.AIConfig) *Registry {
	r := NewRegistry()

	if cfg.OpenAI.APIKey != "" {
		r.Register(NewOpenAI(cfg.OpenAI), "OpenAI")
	} else {
		r.RegisterUnconfigured(OpenAIName, "OpenAI", "OPENAI_API_KEY")
	}

	if cfg.Gemini.APIKey != "" {
		r.Register(NewGemini(cfg.Gemini), "Gemini")
	} else {
		r.RegisterUnconfigured(GeminiName, "Gemini", "GEMINI_API_KEY")
	}

	if cfg.Grok.APIKey != "" {
		r.Register(NewGrok(cfg.Grok), "Grok")
	} else {
		r.RegisterUnconfigured(GrokName, "Grok", "GROK_API_KEY")
	}

	return r
}

// Register adds a usable backend under its own name
func (r *Registry) Register(b Backend, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[b.Name()] = route{backend: b, label: label}
}

// RegisterUnconfigured adds a route that fails with a CredentialError
func (r *Registry) RegisterUnconfigured(name, label, envVar string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = route{label: label, envVar: envVar}
}

// Get resolves a backend by name
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if rt.backend == nil {
		return nil, &CredentialError{Backend: name, Label: rt.label, EnvVar: rt.envVar}
	}
	return rt.backend, nil
}

// Has reports whether name is a known route, configured or not
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[name]
	return ok
}

// List returns every route sorted by name
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.routes))
	for name, rt := range r.routes {
		infos = append(infos, Info{Name: name, Label: rt.label, Configured: rt.backend != nil})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
