package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/google/uuid"
)

// Lifecycle owns every state change of documents and contracts. Writes
// for one record are serialized; different records never contend.
type Lifecycle struct {
	store Store
	locks *keyLock
	now   func() time.Time
	newID func() string
}

func NewLifecycle(store Store) *Lifecycle {
	return &Lifecycle{
		store: store,
		locks: newKeyLock(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// DocumentFilter narrows a document listing. Zero fields match everything.
type DocumentFilter struct {
	Status model.DocumentStatus
	Risk   model.RiskLevel
	Query  string // case-insensitive title substring
}

func (f DocumentFilter) match(d *model.Document) bool {
	if f.Status != "" && d.Status() != f.Status {
		return false
	}
	if f.Risk != "" {
		done, ok := d.State.(model.Completed)
		if !ok || done.Analysis.RiskLevel != f.Risk {
			return false
		}
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// CreateDocument stores a new document in Analyzing{0}
func (l *Lifecycle) CreateDocument(ctx context.Context, userID, title, content string) (*model.Document, error) {
	if userID == "" {
		return nil, validationError("user is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationError("document content is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled document"
	}

	doc := model.NewDocument(l.newID(), userID, title, content, l.now())
	if err := l.store.CreateDocument(ctx, doc); err != nil {
		return nil, persistenceError("create document", err)
	}
	logger.Info(logger.With(ctx, logger.DocumentIDKey, doc.ID), "document created", "title", title)
	return doc, nil
}

// Document returns the document if userID owns it. Other users' documents
// are reported as not found.
func (l *Lifecycle) Document(ctx context.Context, userID, id string) (*model.Document, error) {
	doc, err := l.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

// Documents lists userID's documents newest first
func (l *Lifecycle) Documents(ctx context.Context, userID string, filter DocumentFilter) ([]*model.Document, error) {
	docs, err := l.store.ListDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]*model.Document, 0, len(docs))
	for _, d := range docs {
		if filter.match(d) {
			result = append(result, d)
		}
	}
	return result, nil
}

// DeleteDocument removes a document owned by userID. An analysis still
// running for it finds the record gone and drops its result.
func (l *Lifecycle) DeleteDocument(ctx context.Context, userID, id string) error {
	unlock := l.locks.Lock("document:" + id)
	defer unlock()

	if _, err := l.Document(ctx, userID, id); err != nil {
		return err
	}
	return l.store.DeleteDocument(ctx, id)
}

// ReportProgress moves an analyzing document forward. Lower values and
// updates after a terminal state are ignored.
func (l *Lifecycle) ReportProgress(ctx context.Context, id string, progress int) error {
	if progress < 0 || progress > 100 {
		return validationError("progress %d out of range", progress)
	}
	return l.updateDocument(ctx, id, func(d *model.Document) (bool, error) {
		switch s := d.State.(type) {
		case model.Analyzing:
			if progress <= s.Progress {
				return false, nil
			}
			d.State = model.Analyzing{Progress: progress}
			return true, nil
		case model.Completed, model.Failed:
			return false, nil
		default:
			panic(fmt.Sprintf("service: unhandled document state %T", s))
		}
	})
}

// CompleteDocument records a finished analysis
func (l *Lifecycle) CompleteDocument(ctx context.Context, id string, analysis model.Analysis, body string) error {
	if err := analysis.Validate(); err != nil {
		return validationError("analysis: %v", err)
	}
	err := l.finish(ctx, id, model.Completed{Analysis: analysis.Clone(), Body: body})
	if err == nil {
		logger.Info(logger.With(ctx, logger.DocumentIDKey, id), "analysis completed",
			"risk_level", analysis.RiskLevel, "risk_score", analysis.RiskScore)
	}
	return err
}

// FailDocument moves a document to error with a human-readable reason
func (l *Lifecycle) FailDocument(ctx context.Context, id, message string) error {
	err := l.finish(ctx, id, model.Failed{Error: message})
	if err == nil {
		logger.Warn(logger.With(ctx, logger.DocumentIDKey, id), "analysis failed", "error", message)
	}
	return err
}

func (l *Lifecycle) finish(ctx context.Context, id string, next model.State) error {
	return l.updateDocument(ctx, id, func(d *model.Document) (bool, error) {
		switch s := d.State.(type) {
		case model.Analyzing:
			d.State = next
			return true, nil
		case model.Completed, model.Failed:
			return false, fmt.Errorf("document %s is %s: %w", id, s.Status(), ErrAlreadyFinal)
		default:
			panic(fmt.Sprintf("service: unhandled document state %T", s))
		}
	})
}

// updateDocument applies fn to the stored document under the document's
// lock and writes it back when fn reports a change.
func (l *Lifecycle) updateDocument(ctx context.Context, id string, fn func(d *model.Document) (bool, error)) error {
	unlock := l.locks.Lock("document:" + id)
	defer unlock()

	doc, err := l.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	doc.UpdatedAt = l.now()
	if err := l.store.UpdateDocument(ctx, doc); err != nil {
		return persistenceError("update document", err)
	}
	return nil
}

// CreateContract stores a draft. Parameters are validated by the caller.
func (l *Lifecycle) CreateContract(ctx context.Context, userID, title string, params model.ContractParams) (*model.Contract, error) {
	if userID == "" {
		return nil, validationError("user is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = params.ContractType
	}

	c := model.NewContract(l.newID(), userID, title, params, l.now())
	if err := l.store.CreateContract(ctx, c); err != nil {
		return nil, persistenceError("create contract", err)
	}
	logger.Info(logger.With(ctx, logger.ContractIDKey, c.ID), "contract created", "type", params.ContractType)
	return c, nil
}

// Contract returns the contract if userID owns it
func (l *Lifecycle) Contract(ctx context.Context, userID, id string) (*model.Contract, error) {
	c, err := l.store.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (l *Lifecycle) Contracts(ctx context.Context, userID string) ([]*model.Contract, error) {
	return l.store.ListContracts(ctx, userID)
}

// DeleteContract removes a contract owned by userID and returns what was removed
func (l *Lifecycle) DeleteContract(ctx context.Context, userID, id string) (*model.Contract, error) {
	unlock := l.locks.Lock("contract:" + id)
	defer unlock()

	c, err := l.Contract(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := l.store.DeleteContract(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// BeginGeneration moves a draft, failed or generated contract to
// generating. Any earlier content is dropped.
func (l *Lifecycle) BeginGeneration(ctx context.Context, userID, id string) (*model.Contract, error) {
	return l.updateContract(ctx, userID, id, func(c *model.Contract) error {
		if !c.CanGenerate() {
			return fmt.Errorf("contract %s is %s: %w", id, c.Status, ErrInvalidTransition)
		}
		c.Status = model.ContractGenerating
		c.Content = nil
		c.Error = ""
		return nil
	})
}

// FinishGeneration stores generated markup
func (l *Lifecycle) FinishGeneration(ctx context.Context, userID, id, content string) (*model.Contract, error) {
	return l.updateContract(ctx, userID, id, func(c *model.Contract) error {
		if c.Status != model.ContractGenerating {
			return fmt.Errorf("contract %s is %s: %w", id, c.Status, ErrInvalidTransition)
		}
		c.Status = model.ContractGenerated
		c.Content = &content
		return nil
	})
}

// FailGeneration records why generation failed. No content is kept.
func (l *Lifecycle) FailGeneration(ctx context.Context, userID, id, message string) (*model.Contract, error) {
	return l.updateContract(ctx, userID, id, func(c *model.Contract) error {
		if c.Status != model.ContractGenerating {
			return fmt.Errorf("contract %s is %s: %w", id, c.Status, ErrInvalidTransition)
		}
		c.Status = model.ContractFailed
		c.Content = nil
		c.Error = message
		return nil
	})
}

// MarkSaved finalizes a generated contract. archiveKey may be empty when
// no archive is configured.
func (l *Lifecycle) MarkSaved(ctx context.Context, userID, id, archiveKey string) (*model.Contract, error) {
	return l.updateContract(ctx, userID, id, func(c *model.Contract) error {
		if c.Status != model.ContractGenerated {
			return fmt.Errorf("contract %s is %s: %w", id, c.Status, ErrInvalidTransition)
		}
		c.Status = model.ContractSaved
		c.ArchiveKey = archiveKey
		return nil
	})
}

func (l *Lifecycle) updateContract(ctx context.Context, userID, id string, fn func(c *model.Contract) error) (*model.Contract, error) {
	unlock := l.locks.Lock("contract:" + id)
	defer unlock()

	c, err := l.Contract(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = l.now()
	if err := l.store.UpdateContract(ctx, c); err != nil {
		return nil, persistenceError("update contract", err)
	}
	return c, nil
}
