package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
)

// Memory is an in-memory Store for development and tests. All operations
// hold a single mutex, which gives the same per-row atomicity the SQLite
// backend gets from single-statement updates.
type Memory struct {
	mu            sync.Mutex
	users         map[int64]*model.User
	items         map[int64]*model.Item
	verifications map[int64]*model.EmailVerification
	sessions      map[string]*model.Session
	userSeq       int64
	itemSeq       int64
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[int64]*model.User),
		items:         make(map[int64]*model.Item),
		verifications: make(map[int64]*model.EmailVerification),
		sessions:      make(map[string]*model.Session),
	}
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func copyItem(i *model.Item) *model.Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.LastScan != nil {
		t := *i.LastScan
		c.LastScan = &t
	}
	return &c
}

func (m *Memory) CreateUser(ctx context.Context, username, passwordHash, fullName, email, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return nil, fmt.Errorf("creating user: username %q already exists", username)
		}
		if u.Email == email {
			return nil, fmt.Errorf("creating user: email %q already exists", email)
		}
	}

	m.userSeq++
	u := &model.User{
		ID:           m.userSeq,
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	return copyUser(u), nil
}

func (m *Memory) GetUser(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyUser(m.users[id]), nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *Memory) SetUserVerified(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.EmailVerified = true
	}
	return nil
}

func (m *Memory) UpdateUserProfile(ctx context.Context, id int64, fullName, email, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.FullName = fullName
	u.Email = email
	u.Phone = phone
	return copyUser(u), nil
}

func (m *Memory) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *Memory) ReplaceVerification(ctx context.Context, v *model.EmailVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Keying by user enforces the one-active-per-user invariant.
	c := *v
	m.verifications[v.UserID] = &c
	return nil
}

func (m *Memory) GetVerification(ctx context.Context, userID int64, code string) (*model.EmailVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[userID]
	if !ok || v.Code != code {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (m *Memory) DeleteVerification(ctx context.Context, userID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.verifications[userID]; ok && v.Code == code {
		delete(m.verifications, userID)
	}
	return nil
}

func (m *Memory) CreateItem(ctx context.Context, userID int64, name, description, icon, qrToken string) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, i := range m.items {
		if i.QRToken == qrToken {
			return nil, fmt.Errorf("creating item: token %q already exists", qrToken)
		}
	}

	m.itemSeq++
	item := &model.Item{
		ID:          m.itemSeq,
		UserID:      userID,
		Name:        name,
		Description: description,
		QRToken:     qrToken,
		Icon:        icon,
		CreatedAt:   time.Now(),
		IsActive:    true,
	}
	m.items[item.ID] = item
	return copyItem(item), nil
}

func (m *Memory) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyItem(m.items[id]), nil
}

func (m *Memory) GetItemByToken(ctx context.Context, token string) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.items {
		if i.QRToken == token {
			return copyItem(i), nil
		}
	}
	return nil, nil
}

func (m *Memory) ListItemsByUser(ctx context.Context, userID int64) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []model.Item
	// Ascending ID preserves creation order; reversed below to match the
	// newest-first ordering of the SQLite backend.
	for id := int64(1); id <= m.itemSeq; id++ {
		if i, ok := m.items[id]; ok && i.UserID == userID {
			items = append(items, *copyItem(i))
		}
	}
	for l, r := 0, len(items)-1; l < r; l, r = l+1, r-1 {
		items[l], items[r] = items[r], items[l]
	}
	return items, nil
}

func (m *Memory) UpdateItem(ctx context.Context, id int64, name, description, icon string, active bool) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	item.Name = name
	item.Description = description
	item.Icon = icon
	item.IsActive = active
	return copyItem(item), nil
}

func (m *Memory) DeleteItem(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *Memory) RecordScan(ctx context.Context, id int64, at time.Time) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	item.ScanCount++
	item.LastScan = &at
	return copyItem(item), nil
}

func (m *Memory) CreateSession(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

func (m *Memory) GetSession(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *Memory) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
