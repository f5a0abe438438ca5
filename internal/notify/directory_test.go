package notify

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"safetrip/internal/domain"
	"safetrip/pkg/e"
)

type lookupStub struct {
	byID    map[string]*domain.User
	byPhone map[string]*domain.User
	err     error
}

func (s lookupStub) GetUser(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, e.ErrNotFound
}

func (s lookupStub) GetUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	if u, ok := s.byPhone[phone]; ok {
		return u, nil
	}
	return nil, e.ErrNotFound
}

func TestUserDirectory_Recipients(t *testing.T) {
	t.Parallel()

	mum := &domain.User{ID: "mum", Phone: "+4470000001", PushTokens: []string{"t1", "t2"}}
	owner := &domain.User{ID: "owner", Guardians: []domain.Guardian{
		{Name: "Mum", Phone: mum.Phone},
		{Name: "Friend", Phone: "+4470000002"},
	}}
	d := NewUserDirectory(lookupStub{
		byID:    map[string]*domain.User{"owner": owner},
		byPhone: map[string]*domain.User{mum.Phone: mum},
	})

	got, err := d.Recipients(context.Background(), "owner")
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].Tokens, []string{"t1", "t2"}) {
		t.Fatalf("unexpected tokens for Mum: %v", got[0].Tokens)
	}
	if len(got[1].Tokens) != 0 {
		t.Fatalf("expected no tokens for Friend, got %v", got[1].Tokens)
	}
}

func TestUserDirectory_UnknownOwner(t *testing.T) {
	t.Parallel()

	d := NewUserDirectory(lookupStub{})
	got, err := d.Recipients(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no recipients, got %+v", got)
	}
}

func TestUserDirectory_StoreFailure(t *testing.T) {
	t.Parallel()

	d := NewUserDirectory(lookupStub{err: errors.New("boom")})
	if _, err := d.Recipients(context.Background(), "owner"); err == nil {
		t.Fatalf("expected store error")
	}
}
