package model

import (
	"time"
)

// ContractStatus tracks a contract through generation
type ContractStatus string

// ContractStatus constants
const (
	ContractDraft      ContractStatus = "draft"
	ContractGenerating ContractStatus = "generating"
	ContractGenerated  ContractStatus = "generated"
	ContractFailed     ContractStatus = "failed"
	ContractSaved      ContractStatus = "saved"
)

// Intensity controls how protective generated language is toward the first party
type Intensity string

const (
	IntensityLight      Intensity = "Light"
	IntensityModerate   Intensity = "Moderate"
	IntensityAggressive Intensity = "Aggressive"
)

// Intensities lists every intensity, mildest first
var Intensities = []Intensity{IntensityLight, IntensityModerate, IntensityAggressive}

// Valid reports whether i is a known intensity
func (i Intensity) Valid() bool {
	switch i {
	case IntensityLight, IntensityModerate, IntensityAggressive:
		return true
	}
	return false
}

// Party is one side of an agreement
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// ContractParams is the structured input a contract is generated from
type ContractParams struct {
	ContractType string    `json:"contractType"`
	FirstParty   Party     `json:"firstParty"`
	SecondParty  Party     `json:"secondParty"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	Description  string    `json:"description,omitempty"`
	KeyTerms     string    `json:"keyTerms,omitempty"`
	Intensity    Intensity `json:"intensity"`
	AIModel      string    `json:"aiModel"`
}

// Contract is a generated (or to-be-generated) agreement owned by a user
type Contract struct {
	ID         string         `json:"id"`
	UserID     string         `json:"-"`
	Title      string         `json:"title"`
	Params     ContractParams `json:"params"`
	Status     ContractStatus `json:"status"`
	Content    *string        `json:"contractContent"`
	Error      string         `json:"error,omitempty"`
	ArchiveKey string         `json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewContract returns a draft contract
func NewContract(id, userID, title string, params ContractParams, now time.Time) *Contract {
	return &Contract{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Params:    params,
		Status:    ContractDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy of c that shares no pointers with it
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	if c.Content != nil {
		content := *c.Content
		out.Content = &content
	}
	return &out
}

// CanGenerate reports whether generation may start from the current status
func (c *Contract) CanGenerate() bool {
	switch c.Status {
	case ContractDraft, ContractFailed, ContractGenerated:
		return true
	}
	return false
}
