package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeHash struct {
	results []map[string]string
	errs    []error
	calls   int
}

func (f *fakeHash) HGetAll(_ context.Context, _ string) *redis.MapStringStringCmd {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return redis.NewMapStringStringResult(nil, f.errs[i])
	}
	return redis.NewMapStringStringResult(f.results[len(f.results)-1], nil)
}

func TestLoadHash_SortedDevices(t *testing.T) {
	c := &fakeHash{results: []map[string]string{{"b": "Beta", "a": "Alpha"}}}
	got, err := loadHash(context.Background(), c, "devices:names", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].Name != "Beta" {
		t.Fatalf("unexpected devices %+v", got)
	}
}

func TestLoadHash_RetriesThenSucceeds(t *testing.T) {
	c := &fakeHash{
		errs:    []error{errors.New("connection refused")},
		results: []map[string]string{{"a": "Alpha"}},
	}
	got, err := loadHash(context.Background(), c, "k", 5*time.Second)
	if err != nil || len(got) != 1 {
		t.Fatalf("loadHash = %+v, %v", got, err)
	}
	if c.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", c.calls)
	}
}

func TestLoadHash_Empty(t *testing.T) {
	c := &fakeHash{results: []map[string]string{{}}}
	if _, err := loadHash(context.Background(), c, "k", time.Second); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestLoadHash_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &fakeHash{errs: []error{errors.New("down"), errors.New("down"), errors.New("down")}, results: []map[string]string{{}}}
	if _, err := loadHash(ctx, c, "k", time.Minute); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
