package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/aman1195/risk-scan-pro/provider"
)

// DraftingInstruction is the system prompt sent with every generation
const DraftingInstruction = "You are a legal expert who drafts professional contracts in clean HTML format. Return only the HTML, no explanations or preamble."

const minPartyNameLength = 2

// ProtectionLevel describes how protective the drafted language should be
func ProtectionLevel(i model.Intensity) string {
	switch i {
	case model.IntensityLight:
		return "minimal protection, focusing on simple and straightforward terms"
	case model.IntensityModerate:
		return "standard legal protection with balanced terms for both parties"
	case model.IntensityAggressive:
		return "strong legal protection favoring the first party with comprehensive safeguards"
	default:
		return "standard legal protection"
	}
}

// BuildPrompt renders the drafting request for params
func BuildPrompt(p model.ContractParams) string {
	jurisdiction := p.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = "the appropriate jurisdiction"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional, legally-sound %s in HTML format.\n\n", p.ContractType)
	b.WriteString("Contract Details:\n")
	fmt.Fprintf(&b, "- First Party: %s\n", p.FirstParty.Name)
	fmt.Fprintf(&b, "- First Party Address: %s\n", p.FirstParty.Address)
	if p.FirstParty.Email != "" {
		fmt.Fprintf(&b, "- First Party Email: %s\n", p.FirstParty.Email)
	}
	fmt.Fprintf(&b, "- Second Party: %s\n", p.SecondParty.Name)
	fmt.Fprintf(&b, "- Second Party Address: %s\n", p.SecondParty.Address)
	if p.SecondParty.Email != "" {
		fmt.Fprintf(&b, "- Second Party Email: %s\n", p.SecondParty.Email)
	}
	fmt.Fprintf(&b, "- Jurisdiction: %s\n", p.Jurisdiction)
	fmt.Fprintf(&b, "- Description: %s\n", p.Description)
	fmt.Fprintf(&b, "- Key Terms: %s\n", p.KeyTerms)
	fmt.Fprintf(&b, "- Protection Level: %s\n\n", ProtectionLevel(p.Intensity))

	b.WriteString("Instructions:\n")
	b.WriteString("1. Format the contract professionally with proper sections and clauses\n")
	b.WriteString("2. Include all standard clauses required for this type of agreement\n")
	b.WriteString("3. Add appropriate legal language based on the jurisdiction\n")
	b.WriteString("4. Structure with clear headings, numbered sections, and proper spacing\n")
	b.WriteString("5. Include signature blocks at the end\n")
	b.WriteString("6. Output in clean HTML with appropriate tags (<h1>, <h2>, <p>, etc.)\n")
	b.WriteString("7. Use professional legal terminology\n")
	fmt.Fprintf(&b, "8. Create a contract that would be recognized as valid in %s\n", jurisdiction)
	b.WriteString("9. Format dates as Month Day, Year (e.g., June 1, 2023)\n")
	b.WriteString("10. Only return the HTML for the contract, properly formatted\n")
	return b.String()
}

// Generator drafts contract markup through the backend named by aiModel
type Generator struct {
	registry         *provider.Registry
	requireAddresses bool
}

func NewGenerator(registry *provider.Registry, cfg *config.GenerationConfig) *Generator {
	return &Generator{registry: registry, requireAddresses: cfg.RequireAddresses}
}

// Validate trims params in place and rejects anything the drafting
// request cannot be built from.
func (g *Generator) Validate(p *model.ContractParams) error {
	trimParams(p)

	if p.ContractType == "" {
		return validationError("contract type is required")
	}
	if !model.IsContractType(p.ContractType) {
		return validationError("unknown contract type %q", p.ContractType)
	}
	if err := g.validateParty("first party", p.FirstParty); err != nil {
		return err
	}
	if err := g.validateParty("second party", p.SecondParty); err != nil {
		return err
	}
	if p.Jurisdiction != "" && !model.IsJurisdiction(p.Jurisdiction) {
		return validationError("unknown jurisdiction %q", p.Jurisdiction)
	}
	if !p.Intensity.Valid() {
		return validationError("intensity must be Light, Moderate or Aggressive")
	}
	if p.AIModel == "" {
		return validationError("aiModel is required")
	}
	if !g.registry.Has(p.AIModel) {
		return validationError("unknown aiModel %q", p.AIModel)
	}
	return nil
}

func (g *Generator) validateParty(role string, party model.Party) error {
	if utf8.RuneCountInString(party.Name) < minPartyNameLength {
		return validationError("%s name must be at least %d characters", role, minPartyNameLength)
	}
	if g.requireAddresses && party.Address == "" {
		return validationError("%s address is required", role)
	}
	if party.Email != "" {
		if _, err := mail.ParseAddress(party.Email); err != nil {
			return validationError("%s email is invalid", role)
		}
	}
	return nil
}

func trimParams(p *model.ContractParams) {
	for _, s := range []*string{
		&p.ContractType, &p.Jurisdiction, &p.Description, &p.KeyTerms, &p.AIModel,
		&p.FirstParty.Name, &p.FirstParty.Address, &p.FirstParty.Email,
		&p.SecondParty.Name, &p.SecondParty.Address, &p.SecondParty.Email,
	} {
		*s = strings.TrimSpace(*s)
	}
	p.AIModel = strings.ToLower(p.AIModel)
}

// Generate validates params and makes a single drafting call. Missing
// credentials and upstream failures are returned as is; no content is
// ever substituted.
func (g *Generator) Generate(ctx context.Context, params model.ContractParams) (string, error) {
	if err := g.Validate(&params); err != nil {
		return "", err
	}

	backend, err := g.registry.Get(params.AIModel)
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "contract generation dispatched", "backend", backend.Name(), "type", params.ContractType)
	html, err := backend.Complete(ctx, provider.Request{
		System: DraftingInstruction,
		Prompt: BuildPrompt(params),
	})
	if err != nil {
		return "", err
	}
	return html, nil
}
