package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"uigen/internal/domain"
	"uigen/internal/session"
)

type mockAnonRepo struct {
	store    map[string]domain.AnonWorkSnapshot
	saveErr  error
	deleteFn func(ctx context.Context, anonID string) error
}

func newMockAnonRepo() *mockAnonRepo {
	return &mockAnonRepo{store: make(map[string]domain.AnonWorkSnapshot)}
}

func (m *mockAnonRepo) GetAnonWork(ctx context.Context, anonID string) (*domain.AnonWorkSnapshot, error) {
	snap, ok := m.store[anonID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *mockAnonRepo) SaveAnonWork(ctx context.Context, anonID string, snap domain.AnonWorkSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.store[anonID] = snap
	return nil
}

func (m *mockAnonRepo) DeleteAnonWork(ctx context.Context, anonID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, anonID)
	}
	delete(m.store, anonID)
	return nil
}

func someWork() domain.AnonWorkSnapshot {
	return domain.AnonWorkSnapshot{
		Messages: []domain.ChatMessage{{ID: "1", Role: "user", Content: "make a button"}},
		FileSystemData: domain.FileSystemData{
			"/":        json.RawMessage(`{"type":"directory"}`),
			"/App.jsx": json.RawMessage(`{"type":"file"}`),
		},
	}
}

func anonCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == AnonCookieName {
			return c
		}
	}
	return nil
}

func TestAnonWorkService_SaveAndGet(t *testing.T) {
	ctx, w := requestContext()
	repo := newMockAnonRepo()
	svc := NewAnonWorkService(repo, false)

	saved, err := svc.SaveAnonWork(ctx, someWork())
	if err != nil || !saved {
		t.Fatalf("SaveAnonWork: %v, %v", saved, err)
	}

	c := anonCookie(w)
	if c == nil || c.Value == "" {
		t.Fatal("expected anon-id cookie to be set")
	}
	if !c.HttpOnly || c.Path != "/" {
		t.Errorf("unexpected cookie attributes %+v", c)
	}

	got, err := svc.GetAnonWork(ctx)
	if err != nil {
		t.Fatalf("GetAnonWork: %v", err)
	}
	if got == nil || len(got.Messages) != 1 {
		t.Errorf("unexpected snapshot %+v", got)
	}
	if _, ok := repo.store[c.Value]; !ok {
		t.Error("expected snapshot keyed by cookie value")
	}
}

func TestAnonWorkService_SaveReusesExistingID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/", nil)
	r.AddCookie(&http.Cookie{Name: AnonCookieName, Value: "visitor-1"})
	ctx := session.WithCookieJar(context.Background(), session.NewRequestJar(w, r))

	repo := newMockAnonRepo()
	svc := NewAnonWorkService(repo, false)

	if _, err := svc.SaveAnonWork(ctx, someWork()); err != nil {
		t.Fatalf("SaveAnonWork: %v", err)
	}
	if anonCookie(w) != nil {
		t.Error("expected no new cookie when one exists")
	}
	if _, ok := repo.store["visitor-1"]; !ok {
		t.Error("expected snapshot stored under existing id")
	}
}

func TestAnonWorkService_SaveIgnoresEmptyWork(t *testing.T) {
	tests := []struct {
		name string
		snap domain.AnonWorkSnapshot
	}{
		{"nothing", domain.AnonWorkSnapshot{}},
		{"root only", domain.AnonWorkSnapshot{FileSystemData: domain.FileSystemData{"/": json.RawMessage(`{}`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, w := requestContext()
			repo := newMockAnonRepo()
			svc := NewAnonWorkService(repo, false)

			saved, err := svc.SaveAnonWork(ctx, tt.snap)
			if err != nil || saved {
				t.Errorf("expected ignored save, got %v, %v", saved, err)
			}
			if anonCookie(w) != nil || len(repo.store) != 0 {
				t.Error("expected nothing written")
			}
		})
	}
}

func TestAnonWorkService_SaveErrors(t *testing.T) {
	svc := NewAnonWorkService(newMockAnonRepo(), false)
	if _, err := svc.SaveAnonWork(context.Background(), someWork()); !errors.Is(err, session.ErrNoCookieJar) {
		t.Errorf("expected ErrNoCookieJar, got %v", err)
	}

	ctx, _ := requestContext()
	repo := newMockAnonRepo()
	repo.saveErr = errors.New("disk full")
	svc = NewAnonWorkService(repo, false)
	if saved, err := svc.SaveAnonWork(ctx, someWork()); err == nil || saved {
		t.Errorf("expected error, got %v, %v", saved, err)
	}
}

func TestAnonWorkService_GetWithoutVisitor(t *testing.T) {
	svc := NewAnonWorkService(newMockAnonRepo(), false)

	ctx, _ := requestContext()
	got, err := svc.GetAnonWork(ctx)
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}

	got, err = svc.GetAnonWork(context.Background())
	if err != nil || got != nil {
		t.Errorf("expected nil, nil without jar; got %v, %v", got, err)
	}
}

func TestAnonWorkService_Clear(t *testing.T) {
	ctx, _ := requestContext()
	repo := newMockAnonRepo()
	svc := NewAnonWorkService(repo, false)

	if _, err := svc.SaveAnonWork(ctx, someWork()); err != nil {
		t.Fatalf("SaveAnonWork: %v", err)
	}
	if err := svc.ClearAnonWork(ctx); err != nil {
		t.Fatalf("ClearAnonWork: %v", err)
	}

	got, _ := svc.GetAnonWork(ctx)
	if got != nil {
		t.Errorf("expected no work after clear, got %+v", got)
	}
	if len(repo.store) != 0 {
		t.Error("expected repository entry removed")
	}
}

func TestAnonWorkService_ClearError(t *testing.T) {
	ctx, _ := requestContext()
	repo := newMockAnonRepo()
	repo.deleteFn = func(ctx context.Context, anonID string) error { return errors.New("db down") }
	svc := NewAnonWorkService(repo, false)

	if _, err := svc.SaveAnonWork(ctx, someWork()); err != nil {
		t.Fatalf("SaveAnonWork: %v", err)
	}
	if err := svc.ClearAnonWork(ctx); err == nil {
		t.Fatal("expected error")
	}
	got, _ := svc.GetAnonWork(ctx)
	if got == nil {
		t.Error("expected work to survive a failed clear")
	}
}
