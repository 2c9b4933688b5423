package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocumentStatus discriminates the variants of a document's state
type DocumentStatus string

// DocumentStatus constants
const (
	StatusAnalyzing DocumentStatus = "analyzing"
	StatusCompleted DocumentStatus = "completed"
	StatusError     DocumentStatus = "error"
)

// DateLayout is how a document's creation date is shown to users
const DateLayout = "Jan 2, 2006"

// State is one of Analyzing, Completed or Failed. The set is closed: the
// unexported marker keeps other packages from adding variants, so a type
// switch with a default branch covers every case.
type State interface {
	Status() DocumentStatus
	Terminal() bool
	isState()
}

// Analyzing is the initial state. Progress never decreases.
type Analyzing struct {
	Progress int
}

// Completed holds the outcome of a successful analysis
type Completed struct {
	Analysis Analysis
	Body     string
}

// Failed holds a human-readable reason the analysis did not finish
type Failed struct {
	Error string
}

func (Analyzing) Status() DocumentStatus { return StatusAnalyzing }
func (Completed) Status() DocumentStatus { return StatusCompleted }
func (Failed) Status() DocumentStatus    { return StatusError }

func (Analyzing) Terminal() bool { return false }
func (Completed) Terminal() bool { return true }
func (Failed) Terminal() bool    { return true }

func (Analyzing) isState() {}
func (Completed) isState() {}
func (Failed) isState()    {}

// Analysis is the structured risk assessment returned by the AI backend
type Analysis struct {
	Findings        []string  `json:"findings"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	RiskScore       int       `json:"riskScore"`
	Recommendations string    `json:"recommendations"`
}

// Validate checks that every field is present and in range
func (a *Analysis) Validate() error {
	if a.Findings == nil {
		return fmt.Errorf("findings missing")
	}
	if !a.RiskLevel.Valid() {
		return fmt.Errorf("invalid risk level %q", a.RiskLevel)
	}
	if !ValidScore(a.RiskScore) {
		return fmt.Errorf("risk score %d out of range", a.RiskScore)
	}
	return nil
}

// Clone returns a copy that shares no slices with a
func (a Analysis) Clone() Analysis {
	if a.Findings != nil {
		a.Findings = append([]string{}, a.Findings...)
	}
	return a
}

// Document is a unit of submitted text subject to risk analysis
type Document struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDocument returns a document in Analyzing{0}
func NewDocument(id, userID, title, content string, now time.Time) *Document {
	return &Document{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		State:     Analyzing{Progress: 0},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status returns the discriminator of the current state
func (d *Document) Status() DocumentStatus {
	if d.State == nil {
		return StatusAnalyzing
	}
	return d.State.Status()
}

// Clone returns a deep copy of d
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if s, ok := d.State.(Completed); ok {
		s.Analysis = s.Analysis.Clone()
		c.State = s
	}
	return &c
}

// DocumentView is the flattened JSON shape browsers consume
type DocumentView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Date            string         `json:"date"`
	Status          DocumentStatus `json:"status"`
	Progress        *int           `json:"progress,omitempty"`
	RiskLevel       RiskLevel      `json:"riskLevel,omitempty"`
	RiskScore       *int           `json:"riskScore,omitempty"`
	Findings        *[]string      `json:"findings,omitempty"`
	Recommendations string         `json:"recommendations,omitempty"`
	Body            string         `json:"body,omitempty"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// View flattens the document and its state variant
func (d Document) View() DocumentView {
	v := DocumentView{
		ID:        d.ID,
		Title:     d.Title,
		Date:      d.CreatedAt.Format(DateLayout),
		Status:    d.Status(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	switch s := d.State.(type) {
	case nil:
		p := 0
		v.Progress = &p
	case Analyzing:
		p := s.Progress
		v.Progress = &p
	case Completed:
		a := s.Analysis.Clone()
		if a.Findings == nil {
			a.Findings = []string{}
		}
		v.RiskLevel = a.RiskLevel
		v.RiskScore = &a.RiskScore
		v.Findings = &a.Findings
		v.Recommendations = a.Recommendations
		v.Body = s.Body
	case Failed:
		v.Error = s.Error
	default:
		panic(fmt.Sprintf("model: unhandled document state %T", s))
	}
	return v
}

// MarshalJSON encodes the flattened view. Content is never encoded.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.View())
}
