package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/provider"
	"github.com/aman1195/risk-scan-pro/provider/mock"
)

func newTestGenerator(requireAddresses bool, backends ...provider.Backend) *Generator {
	registry := provider.NewRegistry()
	for _, b := range backends {
		registry.Register(b, b.Name())
	}
	registry.RegisterUnconfigured(provider.GrokName, "Grok", "GROK_API_KEY")
	return NewGenerator(registry, &config.GenerationConfig{RequireAddresses: requireAddresses})
}

func TestProtectionLevel(t *testing.T) {
	tests := []struct {
		intensity model.Intensity
		want      string
	}{
		{model.IntensityLight, "minimal protection, focusing on simple and straightforward terms"},
		{model.IntensityModerate, "standard legal protection with balanced terms for both parties"},
		{model.IntensityAggressive, "strong legal protection favoring the first party with comprehensive safeguards"},
		{"Extreme", "standard legal protection"},
	}
	for _, tt := range tests {
		if got := ProtectionLevel(tt.intensity); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.intensity, tt.want, got)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	p := testParams()
	p.Description = "Sharing product roadmap"
	p.KeyTerms = "2 year term"
	prompt := BuildPrompt(p)

	for _, want := range []string{
		"Generate a professional, legally-sound Non-Disclosure Agreement (NDA) in HTML format.",
		"- First Party: Acme Corp",
		"- First Party Address: 1 Main St",
		"- Second Party: Jane Doe",
		"- Jurisdiction: California",
		"- Description: Sharing product roadmap",
		"- Key Terms: 2 year term",
		"Include signature blocks at the end",
		"numbered sections",
		"recognized as valid in California",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}

	p.Jurisdiction = ""
	if !strings.Contains(BuildPrompt(p), "recognized as valid in the appropriate jurisdiction") {
		t.Error("Expected generic jurisdiction when none is given")
	}
}

func TestGenerateAggressiveFavorsFirstParty(t *testing.T) {
	backend := mock.New("openai", "<h1>Agreement</h1>")
	g := newTestGenerator(false, backend)

	p := testParams()
	p.Intensity = model.IntensityAggressive
	html, err := g.Generate(context.Background(), p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if html != "<h1>Agreement</h1>" {
		t.Errorf("Unexpected markup %q", html)
	}

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Expected one upstream call, got %d", len(reqs))
	}
	if !strings.Contains(reqs[0].Prompt, "strong legal protection favoring the first party") {
		t.Error("Aggressive prompt does not favor the first party")
	}
	if reqs[0].System != DraftingInstruction {
		t.Errorf("Unexpected system prompt %q", reqs[0].System)
	}
}

func TestGenerateValidation(t *testing.T) {
	backend := mock.New("openai", "<h1/>")

	tests := []struct {
		name    string
		require bool
		mutate  func(p *model.ContractParams)
	}{
		{"missing type", false, func(p *model.ContractParams) { p.ContractType = "" }},
		{"unknown type", false, func(p *model.ContractParams) { p.ContractType = "Treaty of Westphalia" }},
		{"short first party", false, func(p *model.ContractParams) { p.FirstParty.Name = " A " }},
		{"short second party", false, func(p *model.ContractParams) { p.SecondParty.Name = "" }},
		{"missing address when required", true, func(p *model.ContractParams) { p.SecondParty.Address = "" }},
		{"bad email", false, func(p *model.ContractParams) { p.FirstParty.Email = "not-an-email" }},
		{"unknown jurisdiction", false, func(p *model.ContractParams) { p.Jurisdiction = "Atlantis" }},
		{"bad intensity", false, func(p *model.ContractParams) { p.Intensity = "Extreme" }},
		{"missing aiModel", false, func(p *model.ContractParams) { p.AIModel = "" }},
		{"unknown aiModel", false, func(p *model.ContractParams) { p.AIModel = "claude" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(tt.require, backend)
			p := testParams()
			tt.mutate(&p)
			if _, err := g.Generate(context.Background(), p); !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}

	if backend.Calls() != 0 {
		t.Errorf("Validation failures reached the backend %d times", backend.Calls())
	}
}

func TestGenerateAcceptsOptionalFields(t *testing.T) {
	g := newTestGenerator(false, mock.New("openai", "<h1/>"))
	p := testParams()
	p.FirstParty.Address = ""
	p.SecondParty.Address = ""
	p.Jurisdiction = ""
	p.AIModel = " OpenAI "

	if _, err := g.Generate(context.Background(), p); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestGenerateUnconfiguredBackend(t *testing.T) {
	g := newTestGenerator(false, mock.New("openai", "<h1/>"))
	p := testParams()
	p.AIModel = "grok"

	html, err := g.Generate(context.Background(), p)
	if !errors.Is(err, provider.ErrNotConfigured) {
		t.Fatalf("Expected ErrNotConfigured, got %v", err)
	}
	if !strings.Contains(err.Error(), "GROK_API_KEY") {
		t.Errorf("Expected message to name GROK_API_KEY, got %q", err.Error())
	}
	if html != "" {
		t.Errorf("Expected no content, got %q", html)
	}
}

func TestGenerateUpstreamFailureHasNoContent(t *testing.T) {
	g := newTestGenerator(false, mock.Failing("openai", fmt.Errorf("%w: status 500", provider.ErrUpstream)))

	html, err := g.Generate(context.Background(), testParams())
	if !errors.Is(err, provider.ErrUpstream) {
		t.Fatalf("Expected ErrUpstream, got %v", err)
	}
	if html != "" {
		t.Errorf("Expected no content, got %q", html)
	}
}
