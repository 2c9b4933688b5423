package service

import (
	"context"
	"fmt"

	"github.com/aman1195/risk-scan-pro/model"
	"github.com/aman1195/risk-scan-pro/pkg/logger"
)

// ContractService manages a user's contract library
type ContractService struct {
	lifecycle *Lifecycle
	generator *Generator
	archive   Archive
}

// NewContractService wires the service. archive may be nil, in which case
// saved contracts live only in the store.
func NewContractService(lifecycle *Lifecycle, generator *Generator, archive Archive) *ContractService {
	return &ContractService{
		lifecycle: lifecycle,
		generator: generator,
		archive:   archive,
	}
}

// Create validates params and stores a draft
func (s *ContractService) Create(ctx context.Context, userID, title string, params model.ContractParams) (*model.Contract, error) {
	if err := s.generator.Validate(&params); err != nil {
		return nil, err
	}
	return s.lifecycle.CreateContract(ctx, userID, title, params)
}

// Generate drafts content for a draft, failed or generated contract. On
// failure the contract is left failed without content and the cause is
// returned.
func (s *ContractService) Generate(ctx context.Context, userID, id string) (*model.Contract, error) {
	ctx = logger.With(ctx, logger.ContractIDKey, id)

	c, err := s.lifecycle.BeginGeneration(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// the outcome is recorded even if the caller goes away mid-call
	writeCtx := context.WithoutCancel(ctx)

	html, err := s.generator.Generate(ctx, c.Params)
	if err != nil {
		if _, ferr := s.lifecycle.FailGeneration(writeCtx, userID, id, err.Error()); ferr != nil {
			logger.Error(ctx, "failed to record generation failure", "error", ferr, "cause", err)
		}
		logger.Warn(ctx, "contract generation failed", "error", err)
		return nil, err
	}

	c, err = s.lifecycle.FinishGeneration(writeCtx, userID, id, html)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "contract generated", "length", len(html))
	return c, nil
}

// Save marks a generated contract saved and archives its markup
func (s *ContractService) Save(ctx context.Context, userID, id string) (*model.Contract, error) {
	ctx = logger.With(ctx, logger.ContractIDKey, id)

	c, err := s.lifecycle.Contract(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ContractGenerated || c.Content == nil {
		return nil, fmt.Errorf("contract %s is %s: %w", id, c.Status, ErrInvalidTransition)
	}

	key := ""
	if s.archive != nil {
		key = ContractKey(userID, id)
		if err := s.archive.Put(ctx, key, []byte(*c.Content), "text/html; charset=utf-8"); err != nil {
			return nil, persistenceError("archive contract", err)
		}
	}

	c, err = s.lifecycle.MarkSaved(ctx, userID, id, key)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "contract saved", "archive_key", key)
	return c, nil
}

func (s *ContractService) Get(ctx context.Context, userID, id string) (*model.Contract, error) {
	return s.lifecycle.Contract(ctx, userID, id)
}

func (s *ContractService) List(ctx context.Context, userID string) ([]*model.Contract, error) {
	return s.lifecycle.Contracts(ctx, userID)
}

// Delete removes the contract and any archived copy
func (s *ContractService) Delete(ctx context.Context, userID, id string) error {
	c, err := s.lifecycle.DeleteContract(ctx, userID, id)
	if err != nil {
		return err
	}
	if s.archive != nil && c.ArchiveKey != "" {
		if err := s.archive.Remove(ctx, c.ArchiveKey); err != nil {
			logger.Warn(logger.With(ctx, logger.ContractIDKey, id), "failed to remove archived contract", "error", err)
		}
	}
	return nil
}

// ArchiveURL returns a download link for a saved contract's archived markup
func (s *ContractService) ArchiveURL(ctx context.Context, userID, id string) (string, error) {
	c, err := s.lifecycle.Contract(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if s.archive == nil || c.ArchiveKey == "" {
		return "", fmt.Errorf("contract %s has no archived copy: %w", id, ErrNotFound)
	}
	return s.archive.URL(ctx, c.ArchiveKey)
}
