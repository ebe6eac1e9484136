package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

const testKey = "secret-key"

func newTestServer(budgets *stubBudgetUC, messages *stubMessageRepo) *Server {
	if budgets == nil {
		budgets = &stubBudgetUC{}
	}
	if messages == nil {
		messages = &stubMessageRepo{}
	}
	logger := zerolog.Nop()
	return NewServer(budgets, &stubProductUC{}, &stubOrderUC{}, messages, &stubUserRepo{}, testKey, &logger)
}

func doRequest(t *testing.T, srv *Server, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthzOpen(t *testing.T) {
	rec := doRequest(t, newTestServer(nil, nil), "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	srv := newTestServer(nil, nil)

	rec := doRequest(t, srv, "/api/v1/budgets", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, srv, "/api/v1/budgets", "wrong-key")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token status = %d, want 403", rec.Code)
	}
}

func TestListBudgets(t *testing.T) {
	budgets := &stubBudgetUC{
		ListAllFn: func(ctx context.Context) ([]*model.Budget, error) {
			return []*model.Budget{
				{ID: "b-1", UserID: "100", Category: model.CategorySite, Status: model.BudgetPending},
				{ID: "b-2", UserID: "200", Category: model.CategoryBot, Status: model.BudgetApproved},
			}, nil
		},
	}
	rec := doRequest(t, newTestServer(budgets, nil), "/api/v1/budgets", testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []*model.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b-1" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestGetBudgetNotFound(t *testing.T) {
	budgets := &stubBudgetUC{
		GetFn: func(ctx context.Context, id string) (*model.Budget, error) {
			return nil, domain.ErrNotFound
		},
	}
	rec := doRequest(t, newTestServer(budgets, nil), "/api/v1/budgets/missing", testKey)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListBudgetMessages(t *testing.T) {
	budgets := &stubBudgetUC{
		GetFn: func(ctx context.Context, id string) (*model.Budget, error) {
			return &model.Budget{ID: id}, nil
		},
	}
	messages := &stubMessageRepo{
		FindByBudgetFn: func(ctx context.Context, qx any, budgetID string) ([]*model.Message, error) {
			if budgetID != "b-1" {
				t.Fatalf("budgetID = %q, want b-1", budgetID)
			}
			return []*model.Message{{ID: "m-1", BudgetID: budgetID, Content: "hello"}}, nil
		},
	}
	rec := doRequest(t, newTestServer(budgets, messages), "/api/v1/budgets/b-1/messages", testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []*model.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 1 || got[0].Content != "hello" {
		t.Fatalf("unexpected body: %+v", got)
	}
}
