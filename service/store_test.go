package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aman1195/risk-scan-pro/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDBStore(t *testing.T) *DBStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store, err := NewDBStore(db)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

// storeFactories runs each store test against every implementation
var storeFactories = map[string]func(t *testing.T) Store{
	"memory": func(t *testing.T) Store { return NewMemoryStore() },
	"gorm":   func(t *testing.T) Store { return newTestDBStore(t) },
}

var baseTime = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestStoreDocumentRoundTrip(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			doc := model.NewDocument("doc-1", "user-a", "Lease", "The tenant shall...", baseTime)
			if err := store.CreateDocument(ctx, doc); err != nil {
				t.Fatalf("CreateDocument failed: %v", err)
			}

			got, err := store.GetDocument(ctx, "doc-1")
			if err != nil {
				t.Fatalf("GetDocument failed: %v", err)
			}
			if got.Title != "Lease" || got.Content != "The tenant shall..." || got.UserID != "user-a" {
				t.Errorf("Unexpected document %+v", got)
			}
			if s, ok := got.State.(model.Analyzing); !ok || s.Progress != 0 {
				t.Errorf("Expected Analyzing{0}, got %#v", got.State)
			}

			got.State = model.Completed{
				Analysis: model.Analysis{
					Findings:        []string{"Unlimited liability", "No termination clause"},
					RiskLevel:       model.RiskHigh,
					RiskScore:       85,
					Recommendations: "Cap liability.",
				},
				Body: "<p>analysis</p>",
			}
			got.UpdatedAt = baseTime.Add(time.Minute)
			if err := store.UpdateDocument(ctx, got); err != nil {
				t.Fatalf("UpdateDocument failed: %v", err)
			}

			again, err := store.GetDocument(ctx, "doc-1")
			if err != nil {
				t.Fatalf("GetDocument failed: %v", err)
			}
			done, ok := again.State.(model.Completed)
			if !ok {
				t.Fatalf("Expected Completed, got %#v", again.State)
			}
			if done.Analysis.RiskScore != 85 || done.Analysis.RiskLevel != model.RiskHigh {
				t.Errorf("Unexpected analysis %+v", done.Analysis)
			}
			if len(done.Analysis.Findings) != 2 || done.Analysis.Findings[1] != "No termination clause" {
				t.Errorf("Unexpected findings %v", done.Analysis.Findings)
			}
			if done.Body != "<p>analysis</p>" || done.Analysis.Recommendations != "Cap liability." {
				t.Errorf("Unexpected body/recommendations %+v", done)
			}
			if !again.CreatedAt.Equal(baseTime) {
				t.Errorf("CreatedAt changed: %v", again.CreatedAt)
			}
		})
	}
}

func TestStoreDocumentFailedAndEmptyFindings(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			failed := model.NewDocument("f", "u", "t", "c", baseTime)
			failed.State = model.Failed{Error: "OpenAI API key not found"}
			store.CreateDocument(ctx, failed)

			empty := model.NewDocument("e", "u", "t", "c", baseTime)
			empty.State = model.Completed{Analysis: model.Analysis{Findings: []string{}, RiskLevel: model.RiskLow, RiskScore: 0}}
			store.CreateDocument(ctx, empty)

			got, _ := store.GetDocument(ctx, "f")
			if s, ok := got.State.(model.Failed); !ok || s.Error != "OpenAI API key not found" {
				t.Errorf("Expected Failed state, got %#v", got.State)
			}

			got, _ = store.GetDocument(ctx, "e")
			s, ok := got.State.(model.Completed)
			if !ok {
				t.Fatalf("Expected Completed, got %#v", got.State)
			}
			if s.Analysis.Findings == nil || len(s.Analysis.Findings) != 0 {
				t.Errorf("Expected empty non-nil findings, got %#v", s.Analysis.Findings)
			}
			if s.Analysis.RiskScore != 0 {
				t.Errorf("Expected score 0, got %d", s.Analysis.RiskScore)
			}
		})
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			doc := model.NewDocument("doc-1", "u", "t", "c", baseTime)
			store.CreateDocument(ctx, doc)
			doc.Title = "mutated after create"

			got, _ := store.GetDocument(ctx, "doc-1")
			got.Title = "mutated after get"

			again, _ := store.GetDocument(ctx, "doc-1")
			if again.Title != "t" {
				t.Errorf("Store shared state with caller, title %q", again.Title)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			if _, err := store.GetDocument(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetDocument: expected ErrNotFound, got %v", err)
			}
			if err := store.UpdateDocument(ctx, model.NewDocument("missing", "u", "t", "c", baseTime)); !errors.Is(err, ErrNotFound) {
				t.Errorf("UpdateDocument: expected ErrNotFound, got %v", err)
			}
			if err := store.DeleteDocument(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("DeleteDocument: expected ErrNotFound, got %v", err)
			}
			if _, err := store.GetContract(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetContract: expected ErrNotFound, got %v", err)
			}
			if err := store.DeleteContract(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("DeleteContract: expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreListDocuments(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			store.CreateDocument(ctx, model.NewDocument("old", "user-a", "t", "c", baseTime))
			store.CreateDocument(ctx, model.NewDocument("new", "user-a", "t", "c", baseTime.Add(time.Hour)))
			store.CreateDocument(ctx, model.NewDocument("other", "user-b", "t", "c", baseTime))

			docs, err := store.ListDocuments(ctx, "user-a")
			if err != nil {
				t.Fatalf("ListDocuments failed: %v", err)
			}
			if len(docs) != 2 {
				t.Fatalf("Expected 2 documents, got %d", len(docs))
			}
			if docs[0].ID != "new" || docs[1].ID != "old" {
				t.Errorf("Expected newest first, got %s, %s", docs[0].ID, docs[1].ID)
			}

			none, err := store.ListDocuments(ctx, "user-c")
			if err != nil || len(none) != 0 {
				t.Errorf("Expected empty list, got %d (%v)", len(none), err)
			}
		})
	}
}

func TestStoreListStaleDocuments(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			store.CreateDocument(ctx, model.NewDocument("stale", "u", "t", "c", baseTime))
			store.CreateDocument(ctx, model.NewDocument("fresh", "u", "t", "c", baseTime.Add(time.Hour)))
			done := model.NewDocument("done", "u", "t", "c", baseTime)
			done.State = model.Failed{Error: "x"}
			store.CreateDocument(ctx, done)

			docs, err := store.ListStaleDocuments(ctx, baseTime.Add(30*time.Minute))
			if err != nil {
				t.Fatalf("ListStaleDocuments failed: %v", err)
			}
			if len(docs) != 1 || docs[0].ID != "stale" {
				t.Errorf("Expected only the stale document, got %v", docs)
			}
		})
	}
}

func TestStoreContracts(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			params := model.ContractParams{
				ContractType: "Non-Disclosure Agreement (NDA)",
				FirstParty:   model.Party{Name: "Acme Corp", Address: "1 Main St", Email: "legal@acme.test"},
				SecondParty:  model.Party{Name: "Jane Doe"},
				Jurisdiction: "California",
				Intensity:    model.IntensityModerate,
				AIModel:      "openai",
			}
			c := model.NewContract("c-1", "user-a", "NDA", params, baseTime)
			if err := store.CreateContract(ctx, c); err != nil {
				t.Fatalf("CreateContract failed: %v", err)
			}
			store.CreateContract(ctx, model.NewContract("c-2", "user-a", "Later", params, baseTime.Add(time.Hour)))

			got, err := store.GetContract(ctx, "c-1")
			if err != nil {
				t.Fatalf("GetContract failed: %v", err)
			}
			if got.Params != params {
				t.Errorf("Params mismatch: %+v", got.Params)
			}
			if got.Content != nil || got.Status != model.ContractDraft {
				t.Errorf("Expected draft without content, got %+v", got)
			}

			html := "<h1>NDA</h1>"
			got.Content = &html
			got.Status = model.ContractGenerated
			if err := store.UpdateContract(ctx, got); err != nil {
				t.Fatalf("UpdateContract failed: %v", err)
			}
			again, _ := store.GetContract(ctx, "c-1")
			if again.Content == nil || *again.Content != html || again.Status != model.ContractGenerated {
				t.Errorf("Update not persisted: %+v", again)
			}

			list, _ := store.ListContracts(ctx, "user-a")
			if len(list) != 2 || list[0].ID != "c-2" {
				t.Errorf("Expected 2 contracts newest first, got %v", list)
			}

			if err := store.DeleteContract(ctx, "c-1"); err != nil {
				t.Fatalf("DeleteContract failed: %v", err)
			}
			if _, err := store.GetContract(ctx, "c-1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestMemoryStoreDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.CreateDocument(ctx, model.NewDocument("dup", "u", "t", "c", baseTime))
	err := store.CreateDocument(ctx, model.NewDocument("dup", "u", "t", "c", baseTime))
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("Expected ErrPersistence, got %v", err)
	}

	docs, contracts := store.Count()
	if docs != 1 || contracts != 0 {
		t.Errorf("Expected 1/0, got %d/%d", docs, contracts)
	}
}
