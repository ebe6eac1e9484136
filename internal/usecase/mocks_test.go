package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ----- budget repo -----

type memBudgetRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Budget
	saveErr error
}

func newMemBudgetRepo() *memBudgetRepo {
	return &memBudgetRepo{store: make(map[string]*model.Budget)}
}

func (m *memBudgetRepo) Save(ctx context.Context, qx any, b *model.Budget) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.store[b.ID] = &cp
	return nil
}

func (m *memBudgetRepo) FindByID(ctx context.Context, qx any, id string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBudgetRepo) FindAllByUser(ctx context.Context, qx any, userID string) ([]*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Budget
	for _, b := range m.store {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBudgetRepo) FindAll(ctx context.Context, qx any) ([]*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Budget
	for _, b := range m.store {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memBudgetRepo) FindByStatus(ctx context.Context, qx any, status model.BudgetStatus) ([]*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Budget
	for _, b := range m.store {
		if b.Status == status {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBudgetRepo) FindActiveChatByUser(ctx context.Context, qx any, userID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.store {
		if b.UserID == userID && b.ChatActive {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBudgetRepo) FindLatestByUser(ctx context.Context, qx any, userID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Budget
	for _, b := range m.store {
		if b.UserID != userID {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memBudgetRepo) UpdateStatus(ctx context.Context, qx any, id string, status model.BudgetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *memBudgetRepo) ApplyProposal(ctx context.Context, qx any, id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.ProposalResolvedAt != nil {
		return domain.ErrProposalResolved
	}
	if !b.Status.CanTransition(model.BudgetApproved) {
		return domain.ErrInvalidTransition
	}
	now := time.Now()
	b.Status = model.BudgetApproved
	b.Answers.Budget = value
	b.ProposalResolvedAt = &now
	return nil
}

func (m *memBudgetRepo) RejectProposal(ctx context.Context, qx any, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.ProposalResolvedAt != nil {
		return domain.ErrProposalResolved
	}
	now := time.Now()
	b.Status = model.BudgetAnalyzing
	b.ProposalResolvedAt = &now
	return nil
}

func (m *memBudgetRepo) ActivateChat(ctx context.Context, qx any, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range m.store {
		if other.UserID == b.UserID && other.ChatActive {
			return domain.ErrChatAlreadyActive
		}
	}
	b.ChatActive = true
	return nil
}

func (m *memBudgetRepo) DeactivateChat(ctx context.Context, qx any, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.ChatActive = false
	return nil
}

func (m *memBudgetRepo) DistinctUserIDs(ctx context.Context, qx any) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, b := range m.store {
		if !seen[b.UserID] {
			seen[b.UserID] = true
			out = append(out, b.UserID)
		}
	}
	return out, nil
}

// ----- message repo -----

type memMessageRepo struct {
	mu    sync.Mutex
	saved []*model.Message
}

func newMemMessageRepo() *memMessageRepo { return &memMessageRepo{} }

func (m *memMessageRepo) Save(ctx context.Context, qx any, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.saved = append(m.saved, &cp)
	return nil
}

func (m *memMessageRepo) FindByBudget(ctx context.Context, qx any, budgetID string) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Message
	for _, msg := range m.saved {
		if msg.BudgetID == budgetID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memMessageRepo) Stats(ctx context.Context, qx any, budgetID string) (*repository.TranscriptStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &repository.TranscriptStats{}
	for _, msg := range m.saved {
		if msg.BudgetID != budgetID {
			continue
		}
		st.Count++
		if st.FirstAt.IsZero() || msg.CreatedAt.Before(st.FirstAt) {
			st.FirstAt = msg.CreatedAt
		}
		if msg.CreatedAt.After(st.LastAt) {
			st.LastAt = msg.CreatedAt
		}
	}
	return st, nil
}

// ----- product repo -----

type memProductRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{store: make(map[string]*model.Product)}
}

func (m *memProductRepo) Save(ctx context.Context, qx any, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, qx any, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) FindAll(ctx context.Context, qx any) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Product
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memProductRepo) FindByCategory(ctx context.Context, qx any, category model.Category) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Product
	for _, p := range m.store {
		if p.Category == category {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProductRepo) Update(ctx context.Context, qx any, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, qx any, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// ----- order repo -----

type memOrderRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{store: make(map[string]*model.Order)}
}

func (m *memOrderRepo) Save(ctx context.Context, qx any, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, qx any, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindAllByUser(ctx context.Context, qx any, userID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, qx any, id string, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

// ----- user repo -----

type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, qx any, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, qx any, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindAll(ctx context.Context, qx any) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// ----- state repo -----

type memStateRepo struct {
	mu    sync.Mutex
	store map[int64]*repository.ConversationState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{store: make(map[int64]*repository.ConversationState)}
}

func (m *memStateRepo) SetState(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	cp.Data = make(map[string]string, len(state.Data))
	for k, v := range state.Data {
		cp.Data[k] = v
	}
	m.store[tgID] = &cp
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	cp.Data = make(map[string]string, len(st.Data))
	for k, v := range st.Data {
		cp.Data[k] = v
	}
	return &cp, nil
}

func (m *memStateRepo) ClearState(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, tgID)
	return nil
}

// ----- transaction manager -----

// fakeTxManager runs the function directly; the in-memory repos have no
// transaction semantics to honor.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// ----- bot adapter -----

type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

type mockBot struct {
	mu        sync.Mutex
	sent      []sentMessage
	copied    []int
	forwarded []int

	sendErr    error
	copyErr    error
	forwardErr error
}

func newMockBot() *mockBot { return &mockBot{} }

func (b *mockBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (b *mockBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (b *mockBot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{ChatID: chatID, Text: caption})
	return nil
}

func (b *mockBot) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	if b.copyErr != nil {
		return b.copyErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.copied = append(b.copied, messageID)
	return nil
}

func (b *mockBot) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	if b.forwardErr != nil {
		return b.forwardErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarded = append(b.forwarded, messageID)
	return nil
}

func (b *mockBot) sentTo(chatID int64) []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentMessage
	for _, s := range b.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// ----- chat locker -----

type mockLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	lockErr  error
}

func (l *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if l.lockErr != nil {
		return "", l.lockErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	return "token", nil
}

func (l *mockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unlocked = append(l.unlocked, key)
	return nil
}

// ----- authorizer -----

type mockAuth struct {
	admin int64
}

func (a mockAuth) IsAdmin(senderID int64) bool { return senderID == a.admin }

func (a mockAuth) AdminID() int64 { return a.admin }

// ----- rates -----

type mockRates struct {
	rate float64
	err  error
}

func (r mockRates) USDBRL(ctx context.Context) (float64, error) { return r.rate, r.err }

// ----- AI -----

type mockAI struct {
	reply string
	err   error
}

func (a mockAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	return a.reply, a.err
}
