package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman1195/risk-scan-pro/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentRecord is the documents table row. The state variant is
// flattened into status plus the columns that variant uses.
type DocumentRecord struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"size:64;index;not null"`
	Title           string `gorm:"size:255;not null"`
	Content         string `gorm:"type:text"`
	Status          string `gorm:"size:16;index;not null"`
	Progress        int
	RiskLevel       string `gorm:"size:16"`
	RiskScore       *int
	Findings        datatypes.JSONSlice[string]
	Recommendations string    `gorm:"type:text"`
	Body            string    `gorm:"type:text"`
	Error           string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}

// ContractRecord is the contracts table row
type ContractRecord struct {
	ID                 string    `gorm:"primaryKey;size:36"`
	UserID             string    `gorm:"size:64;index;not null"`
	Title              string    `gorm:"size:255;not null"`
	ContractType       string    `gorm:"size:128;not null"`
	FirstPartyName     string    `gorm:"size:255;not null"`
	FirstPartyAddress  string    `gorm:"size:512"`
	FirstPartyEmail    string    `gorm:"size:255"`
	SecondPartyName    string    `gorm:"size:255;not null"`
	SecondPartyAddress string    `gorm:"size:512"`
	SecondPartyEmail   string    `gorm:"size:255"`
	Jurisdiction       string    `gorm:"size:64"`
	Description        string    `gorm:"type:text"`
	KeyTerms           string    `gorm:"type:text"`
	Intensity          string    `gorm:"size:16;not null"`
	AIModel            string    `gorm:"size:32;not null"`
	Content            *string   `gorm:"type:text"`
	Status             string    `gorm:"size:16;index;not null"`
	Error              string    `gorm:"type:text"`
	ArchiveKey         string    `gorm:"size:512"`
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
}

func (ContractRecord) TableName() string {
	return "contracts"
}

func documentRecordFrom(d *model.Document) *DocumentRecord {
	rec := &DocumentRecord{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Content:   d.Content,
		Status:    string(d.Status()),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	switch s := d.State.(type) {
	case nil:
	case model.Analyzing:
		rec.Progress = s.Progress
	case model.Completed:
		score := s.Analysis.RiskScore
		findings := s.Analysis.Findings
		if findings == nil {
			findings = []string{}
		}
		rec.Progress = 100
		rec.RiskLevel = string(s.Analysis.RiskLevel)
		rec.RiskScore = &score
		rec.Findings = datatypes.NewJSONSlice(findings)
		rec.Recommendations = s.Analysis.Recommendations
		rec.Body = s.Body
	case model.Failed:
		rec.Error = s.Error
	default:
		panic(fmt.Sprintf("service: unhandled document state %T", s))
	}
	return rec
}

func (r *DocumentRecord) toModel() (*model.Document, error) {
	d := &model.Document{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	switch model.DocumentStatus(r.Status) {
	case model.StatusAnalyzing:
		d.State = model.Analyzing{Progress: r.Progress}
	case model.StatusCompleted:
		a := model.Analysis{
			Findings:        []string(r.Findings),
			RiskLevel:       model.RiskLevel(r.RiskLevel),
			Recommendations: r.Recommendations,
		}
		if a.Findings == nil {
			a.Findings = []string{}
		}
		if r.RiskScore != nil {
			a.RiskScore = *r.RiskScore
		}
		d.State = model.Completed{Analysis: a, Body: r.Body}
	case model.StatusError:
		d.State = model.Failed{Error: r.Error}
	default:
		return nil, fmt.Errorf("%w: document %s has unknown status %q", ErrPersistence, r.ID, r.Status)
	}
	return d, nil
}

func contractRecordFrom(c *model.Contract) *ContractRecord {
	return &ContractRecord{
		ID:                 c.ID,
		UserID:             c.UserID,
		Title:              c.Title,
		ContractType:       c.Params.ContractType,
		FirstPartyName:     c.Params.FirstParty.Name,
		FirstPartyAddress:  c.Params.FirstParty.Address,
		FirstPartyEmail:    c.Params.FirstParty.Email,
		SecondPartyName:    c.Params.SecondParty.Name,
		SecondPartyAddress: c.Params.SecondParty.Address,
		SecondPartyEmail:   c.Params.SecondParty.Email,
		Jurisdiction:       c.Params.Jurisdiction,
		Description:        c.Params.Description,
		KeyTerms:           c.Params.KeyTerms,
		Intensity:          string(c.Params.Intensity),
		AIModel:            c.Params.AIModel,
		Content:            c.Content,
		Status:             string(c.Status),
		Error:              c.Error,
		ArchiveKey:         c.ArchiveKey,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (r *ContractRecord) toModel() *model.Contract {
	return &model.Contract{
		ID:     r.ID,
		UserID: r.UserID,
		Title:  r.Title,
		Params: model.ContractParams{
			ContractType: r.ContractType,
			FirstParty:   model.Party{Name: r.FirstPartyName, Address: r.FirstPartyAddress, Email: r.FirstPartyEmail},
			SecondParty:  model.Party{Name: r.SecondPartyName, Address: r.SecondPartyAddress, Email: r.SecondPartyEmail},
			Jurisdiction: r.Jurisdiction,
			Description:  r.Description,
			KeyTerms:     r.KeyTerms,
			Intensity:    model.Intensity(r.Intensity),
			AIModel:      r.AIModel,
		},
		Content:    r.Content,
		Status:     model.ContractStatus(r.Status),
		Error:      r.Error,
		ArchiveKey: r.ArchiveKey,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// DBStore is a Store backed by gorm
type DBStore struct {
	db *gorm.DB
}

// NewDBStore migrates the documents and contracts tables and returns the store
func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&DocumentRecord{}, &ContractRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &DBStore{db: db}, nil
}

func notFoundOr(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return persistenceError(what+" "+id, err)
}

func (s *DBStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	if err := s.db.WithContext(ctx).Create(documentRecordFrom(doc)).Error; err != nil {
		return persistenceError("create document", err)
	}
	return nil
}

func (s *DBStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var rec DocumentRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFoundOr(err, "document", id)
	}
	return rec.toModel()
}

// UpdateDocument rewrites every column of the row inside one transaction
func (s *DBStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	rec := documentRecordFrom(doc)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing DocumentRecord
		if err := tx.Select("id").Where("id = ?", doc.ID).First(&existing).Error; err != nil {
			return notFoundOr(err, "document", doc.ID)
		}
		err := tx.Model(&DocumentRecord{ID: doc.ID}).Select("*").Omit("id", "created_at").Updates(rec).Error
		if err != nil {
			return persistenceError("update document", err)
		}
		return nil
	})
}

func (s *DBStore) ListDocuments(ctx context.Context, userID string) ([]*model.Document, error) {
	var recs []DocumentRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, persistenceError("list documents", err)
	}
	return documentsFromRecords(recs)
}

func (s *DBStore) ListStaleDocuments(ctx context.Context, cutoff time.Time) ([]*model.Document, error) {
	var recs []DocumentRecord
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(model.StatusAnalyzing), cutoff).
		Find(&recs).Error
	if err != nil {
		return nil, persistenceError("list stale documents", err)
	}
	return documentsFromRecords(recs)
}

func documentsFromRecords(recs []DocumentRecord) ([]*model.Document, error) {
	docs := make([]*model.Document, 0, len(recs))
	for i := range recs {
		d, err := recs[i].toModel()
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *DBStore) DeleteDocument(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&DocumentRecord{})
	if res.Error != nil {
		return persistenceError("delete document", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *DBStore) CreateContract(ctx context.Context, c *model.Contract) error {
	if err := s.db.WithContext(ctx).Create(contractRecordFrom(c)).Error; err != nil {
		return persistenceError("create contract", err)
	}
	return nil
}

func (s *DBStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var rec ContractRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFoundOr(err, "contract", id)
	}
	return rec.toModel(), nil
}

func (s *DBStore) UpdateContract(ctx context.Context, c *model.Contract) error {
	rec := contractRecordFrom(c)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ContractRecord
		if err := tx.Select("id").Where("id = ?", c.ID).First(&existing).Error; err != nil {
			return notFoundOr(err, "contract", c.ID)
		}
		err := tx.Model(&ContractRecord{ID: c.ID}).Select("*").Omit("id", "created_at").Updates(rec).Error
		if err != nil {
			return persistenceError("update contract", err)
		}
		return nil
	})
}

func (s *DBStore) ListContracts(ctx context.Context, userID string) ([]*model.Contract, error) {
	var recs []ContractRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, persistenceError("list contracts", err)
	}
	result := make([]*model.Contract, 0, len(recs))
	for i := range recs {
		result = append(result, recs[i].toModel())
	}
	return result, nil
}

func (s *DBStore) DeleteContract(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&ContractRecord{})
	if res.Error != nil {
		return persistenceError("delete contract", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	return nil
}
