package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/aman1195/risk-scan-pro/provider"
)

// AnalysisInstruction is the system prompt sent with every analysis
const AnalysisInstruction = `You are a legal document analysis expert. Analyze the provided legal document and extract the following information:
1. Key findings (list of potential issues, non-standard clauses, or areas of concern)
2. Risk level (low, medium, or high)
3. Risk score (a number between 0 and 100)
4. Recommendations for improvement

Return the results in JSON format with the following structure:
{
  "findings": ["Finding 1", "Finding 2", ...],
  "riskLevel": "low|medium|high",
  "riskScore": number,
  "recommendations": "text with recommendations"
}`

// Progress milestones reported while an analysis runs
const (
	progressPickedUp   = 10
	progressDispatched = 40
	progressResponded  = 90
)

// FallbackAnalysis is stored when the backend answers but the answer
// cannot be parsed into a usable analysis.
func FallbackAnalysis() model.Analysis {
	return model.Analysis{
		Findings:        []string{"Could not properly analyze document"},
		RiskLevel:       model.RiskMedium,
		RiskScore:       50,
		Recommendations: "Please review the document manually or try again with a clearer document.",
	}
}

// Analyzer runs AI risk analysis for documents
type Analyzer struct {
	lifecycle *Lifecycle
	registry  *provider.Registry
	pool      *Pool
	archive   Archive
	backend   string
	model     string
}

// NewAnalyzer wires the analyzer. archive may be nil. The configured
// analysis backend must be a known route; an unconfigured one is accepted
// and fails each analysis with its credential error.
func NewAnalyzer(lifecycle *Lifecycle, registry *provider.Registry, pool *Pool, archive Archive, cfg *config.AnalysisConfig) (*Analyzer, error) {
	if !registry.Has(cfg.Backend) {
		return nil, fmt.Errorf("analysis backend %q: %w", cfg.Backend, provider.ErrUnknownBackend)
	}
	return &Analyzer{
		lifecycle: lifecycle,
		registry:  registry,
		pool:      pool,
		archive:   archive,
		backend:   cfg.Backend,
		model:     cfg.Model,
	}, nil
}

// Analyze sends content to the analysis backend and moves the document to
// a terminal state. Unparseable answers complete the document with the
// fallback analysis; backend failures move it to error and are returned.
// Only the backend call observes ctx cancellation.
func (a *Analyzer) Analyze(ctx context.Context, documentID, content string) (*model.Analysis, error) {
	if documentID == "" {
		return nil, validationError("document id is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationError("document content is required")
	}
	ctx = logger.With(ctx, logger.DocumentIDKey, documentID)

	// the outcome is recorded even if the caller goes away mid-call
	writeCtx := context.WithoutCancel(ctx)

	doc, err := a.lifecycle.store.GetDocument(writeCtx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status() != model.StatusAnalyzing {
		return nil, fmt.Errorf("document %s is %s: %w", documentID, doc.Status(), ErrAlreadyFinal)
	}

	if err := a.lifecycle.ReportProgress(writeCtx, documentID, progressPickedUp); err != nil {
		return nil, a.abandon(writeCtx, documentID, err)
	}

	backend, err := a.registry.Get(a.backend)
	if err != nil {
		return nil, a.fail(writeCtx, documentID, err)
	}

	if err := a.lifecycle.ReportProgress(writeCtx, documentID, progressDispatched); err != nil {
		return nil, a.abandon(writeCtx, documentID, err)
	}
	logger.Info(ctx, "analysis dispatched", "backend", backend.Name())

	text, err := backend.Complete(ctx, provider.Request{
		System: AnalysisInstruction,
		Prompt: content,
		Model:  a.model,
	})
	if err != nil && !errors.Is(err, provider.ErrMalformedCompletion) {
		return nil, a.fail(writeCtx, documentID, err)
	}

	if err := a.lifecycle.ReportProgress(writeCtx, documentID, progressResponded); err != nil {
		return nil, a.abandon(writeCtx, documentID, err)
	}

	analysis, ok := ParseAnalysis(text)
	if !ok {
		logger.Warn(ctx, "analysis response unusable, storing fallback", "response_length", len(text), "error", err)
		analysis = FallbackAnalysis()
	}
	if band := model.LevelForScore(analysis.RiskScore); band != analysis.RiskLevel {
		logger.Warn(ctx, "risk level disagrees with score band",
			"risk_level", analysis.RiskLevel, "risk_score", analysis.RiskScore, "score_band", band)
	}

	if err := a.lifecycle.CompleteDocument(writeCtx, documentID, analysis, content); err != nil {
		return nil, a.abandon(writeCtx, documentID, err)
	}
	return &analysis, nil
}

// fail records cause on the document and returns cause
func (a *Analyzer) fail(ctx context.Context, documentID string, cause error) error {
	if err := a.lifecycle.FailDocument(ctx, documentID, cause.Error()); err != nil {
		logger.Error(ctx, "failed to record analysis failure", "error", err, "cause", cause)
	}
	return cause
}

// abandon handles a lifecycle write that failed mid-analysis. A deleted or
// already finished document is left alone; anything else is failed so it
// does not stay analyzing.
func (a *Analyzer) abandon(ctx context.Context, documentID string, cause error) error {
	if errors.Is(cause, ErrNotFound) || errors.Is(cause, ErrInvalidTransition) {
		return cause
	}
	return a.fail(ctx, documentID, cause)
}

// Submit creates a document and queues its analysis. The returned
// document is still analyzing.
func (a *Analyzer) Submit(ctx context.Context, userID, title, content string) (*model.Document, error) {
	doc, err := a.lifecycle.CreateDocument(ctx, userID, title, content)
	if err != nil {
		return nil, err
	}
	ctx = logger.With(ctx, logger.DocumentIDKey, doc.ID)

	archived := false
	key := DocumentKey(userID, doc.ID)
	if a.archive != nil {
		if err := a.archive.Put(ctx, key, []byte(content), "text/plain; charset=utf-8"); err != nil {
			logger.Warn(ctx, "failed to archive document source", "error", err)
		} else {
			archived = true
		}
	}

	err = a.pool.Submit(ctx, func(ctx context.Context) {
		if _, err := a.Analyze(ctx, doc.ID, content); err != nil {
			logger.Error(ctx, "analysis failed", "error", err)
		}
	})
	if err != nil {
		writeCtx := context.WithoutCancel(ctx)
		a.fail(writeCtx, doc.ID, err)
		if archived {
			if rerr := a.archive.Remove(writeCtx, key); rerr != nil {
				logger.Warn(ctx, "failed to remove archived source", "error", rerr)
			}
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes a document and its archived source
func (a *Analyzer) Delete(ctx context.Context, userID, id string) error {
	if err := a.lifecycle.DeleteDocument(ctx, userID, id); err != nil {
		return err
	}
	if a.archive != nil {
		if err := a.archive.Remove(ctx, DocumentKey(userID, id)); err != nil {
			logger.Warn(logger.With(ctx, logger.DocumentIDKey, id), "failed to remove archived source", "error", err)
		}
	}
	return nil
}

type rawAnalysis struct {
	Findings        *[]string `json:"findings"`
	RiskLevel       *string   `json:"riskLevel"`
	RiskScore       *float64  `json:"riskScore"`
	Recommendations *string   `json:"recommendations"`
}

// ParseAnalysis extracts the first well-formed JSON object from text and
// reads an analysis from it. Surrounding prose is ignored. It reports
// false when no object is found or a required field is missing or out of
// range.
func ParseAnalysis(text string) (model.Analysis, bool) {
	obj, ok := firstJSONObject(text)
	if !ok {
		return model.Analysis{}, false
	}

	var raw rawAnalysis
	if err := json.Unmarshal(obj, &raw); err != nil {
		return model.Analysis{}, false
	}
	if raw.Findings == nil || raw.RiskLevel == nil || raw.RiskScore == nil {
		return model.Analysis{}, false
	}

	level, err := model.ParseRiskLevel(*raw.RiskLevel)
	if err != nil {
		return model.Analysis{}, false
	}
	score := *raw.RiskScore
	if math.IsNaN(score) || score < model.MinRiskScore || score > model.MaxRiskScore {
		return model.Analysis{}, false
	}

	analysis := model.Analysis{
		Findings:  append([]string{}, (*raw.Findings)...),
		RiskLevel: level,
		RiskScore: int(math.Round(score)),
	}
	if raw.Recommendations != nil {
		analysis.Recommendations = *raw.Recommendations
	}
	return analysis, true
}

func firstJSONObject(text string) (json.RawMessage, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&obj); err == nil {
			return obj, true
		}
	}
	return nil, false
}
