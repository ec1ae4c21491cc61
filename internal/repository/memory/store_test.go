package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

type item struct {
	id   string
	name string
}

func TestStore_InsertGet(t *testing.T) {
	s := New(func(i item) string { return i.id })
	ctx := context.Background()

	if err := s.Insert(ctx, item{id: "a", name: "alpha"}, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, item{id: "a", name: "again"}, nil); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate insert: got %v, want ErrExists", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.name != "alpha" {
		t.Errorf("name = %q, want alpha", got.name)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing: got %v, want ErrNotFound", err)
	}
}

func TestStore_InsertUnique(t *testing.T) {
	s := New(func(i item) string { return i.id })
	ctx := context.Background()
	sameName := func(name string) func(item) bool {
		return func(existing item) bool { return existing.name == name }
	}

	if err := s.Insert(ctx, item{id: "1", name: "x"}, sameName("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, item{id: "2", name: "x"}, sameName("x")); !errors.Is(err, ErrExists) {
		t.Fatalf("secondary unique violation: got %v", err)
	}
}

func TestStore_Find(t *testing.T) {
	s := New(func(i item) string { return i.id })
	ctx := context.Background()
	s.Insert(ctx, item{id: "1", name: "one"}, nil)
	s.Insert(ctx, item{id: "2", name: "two"}, nil)

	got, err := s.Find(ctx, func(i item) bool { return i.name == "two" })
	if err != nil || got.id != "2" {
		t.Fatalf("find: got %+v, %v", got, err)
	}
	if _, err := s.Find(ctx, func(i item) bool { return false }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("find none: got %v", err)
	}
}

func TestStore_ConcurrentInsert(t *testing.T) {
	s := New(func(i item) string { return i.id })
	ctx := context.Background()

	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Insert(ctx, item{id: fmt.Sprint(n)}, nil)
		}(n)
	}
	wg.Wait()

	for n := 0; n < 50; n++ {
		if _, err := s.Get(ctx, fmt.Sprint(n)); err != nil {
			t.Fatalf("missing %d: %v", n, err)
		}
	}
}
