package store

import (
	"context"
	"testing"
)

func TestMemoryStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if got, err := s.Load(ctx, "1234"); err != nil || got != nil {
		t.Fatalf("missing snapshot should be nil,nil; got %v,%v", got, err)
	}

	if err := s.Save(ctx, "1234", []byte(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "1234", []byte(`{"v":2}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("last write should win, got %s", got)
	}

	if err := s.Delete(ctx, "1234"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Load(ctx, "1234"); got != nil {
		t.Fatalf("deleted snapshot should be gone, got %s", got)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("abc")
	s.Save(ctx, "1", data)
	data[0] = 'x'
	got, _ := s.Load(ctx, "1")
	if string(got) != "abc" {
		t.Fatalf("store must not alias caller buffers, got %s", got)
	}
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()
	u := User{ID: "u1", Email: "a@b.c", PasswordHash: "h"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, u); err == nil {
		t.Fatalf("duplicate email must fail")
	}
	got, err := s.FindUserByEmail(ctx, "a@b.c")
	if err != nil || got == nil || got.ID != "u1" {
		t.Fatalf("lookup failed: %v %v", got, err)
	}
	if got, _ := s.FindUserByEmail(ctx, "missing@x.y"); got != nil {
		t.Fatalf("missing user should be nil")
	}
}
