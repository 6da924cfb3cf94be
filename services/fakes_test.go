package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/google/uuid"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type fakeSchemeRepo struct {
	mu        sync.Mutex
	schemes   []models.Scheme
	createErr error
	listErr   error
	listCalls int
}

func (r *fakeSchemeRepo) CreateScheme(_ context.Context, scheme *models.Scheme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, s := range r.schemes {
		if s.SourceURL == scheme.SourceURL {
			return fmt.Errorf("duplicate source_url %s", scheme.SourceURL)
		}
	}
	scheme.ID = uuid.NewString()
	r.schemes = append(r.schemes, *scheme)
	return nil
}

func (r *fakeSchemeRepo) GetSchemeByID(_ context.Context, id string) (*models.Scheme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schemes {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeSchemeRepo) GetSchemeBySourceURL(_ context.Context, url string) (*models.Scheme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schemes {
		if s.SourceURL == url {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeSchemeRepo) ListSchemes(_ context.Context, limit int) ([]models.Scheme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	if limit > len(r.schemes) {
		limit = len(r.schemes)
	}
	out := make([]models.Scheme, limit)
	copy(out, r.schemes[:limit])
	return out, nil
}

func (r *fakeSchemeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.schemes)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []models.User
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, shared.ErrConflict)
		}
	}
	user.ID = uuid.NewString()
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.users) {
		limit = len(r.users)
	}
	out := make([]models.User, limit)
	copy(out, r.users[:limit])
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	err           error
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	n.ID = uuid.NewString()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ListNotificationsByUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeChatHistoryRepo struct {
	mu      sync.Mutex
	entries []models.ChatHistory
	saved   chan struct{}
	err     error
}

func (r *fakeChatHistoryRepo) SaveChatHistory(_ context.Context, entry *models.ChatHistory) error {
	r.mu.Lock()
	r.entries = append(r.entries, *entry)
	r.mu.Unlock()
	if r.saved != nil {
		r.saved <- struct{}{}
	}
	return r.err
}

type fakeSearcher struct {
	results []models.ScrapedResult
	err     error
	calls   int
	query   string
	num     int
}

func (s *fakeSearcher) SearchAndContents(_ context.Context, query string, numResults int) ([]models.ScrapedResult, error) {
	s.calls++
	s.query = query
	s.num = numResults
	return s.results, s.err
}

type sentMessage struct {
	phone   string
	message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) SendMessage(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{phone: phone, message: message})
	return n.err
}

type fakeFetcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchText(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

var errBoom = errors.New("boom")
