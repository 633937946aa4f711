package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/artpar/modhost/adapters/memory"
	"github.com/artpar/modhost/domain/options"
	"github.com/artpar/modhost/ports"
	"github.com/google/go-cmp/cmp"
)

func TestOptionStore_GetMissing(t *testing.T) {
	store := memory.NewOptionStore()

	_, err := store.Get(context.Background(), "privacy")
	if !errors.Is(err, ports.ErrNotStored) {
		t.Errorf("err = %v, want ErrNotStored", err)
	}
}

func TestOptionStore_SetCopies(t *testing.T) {
	store := memory.NewOptionStore()
	ctx := context.Background()

	v := options.Value{"enabled": true, "selected_fonts": []any{"Roboto"}}
	if err := store.Set(ctx, "localfonts", v); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v["selected_fonts"].([]any)[0] = "Lato"

	got, err := store.Get(ctx, "localfonts")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got["enabled"] = false

	again, _ := store.Get(ctx, "localfonts")
	want := options.Value{"enabled": true, "selected_fonts": []any{"Roboto"}}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Errorf("stored value was aliased (-want +got):\n%s", diff)
	}
}

func TestOptionStore_DeleteAndList(t *testing.T) {
	store := memory.NewOptionStore()
	ctx := context.Background()

	store.Set(ctx, "a11y", options.Value{"enabled": true})
	store.Set(ctx, "login", options.Value{"enabled": false})

	if err := store.Delete(ctx, "a11y"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing slug: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff(map[string]options.Value{"login": {"enabled": false}}, all); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionStore_Fail(t *testing.T) {
	store := memory.NewOptionStore()
	ctx := context.Background()
	boom := errors.New("disk full")

	store.Fail(boom)
	if err := store.Set(ctx, "privacy", options.Value{}); !errors.Is(err, boom) {
		t.Errorf("Set err = %v, want %v", err, boom)
	}
	if _, err := store.Get(ctx, "privacy"); !errors.Is(err, boom) {
		t.Errorf("Get err = %v, want %v", err, boom)
	}

	store.Fail(nil)
	if err := store.Set(ctx, "privacy", options.Value{}); err != nil {
		t.Errorf("Set after recovery: %v", err)
	}
}

func TestOptionStore_Concurrent(t *testing.T) {
	store := memory.NewOptionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.Set(ctx, "privacy", options.Value{"n": int64(i)})
		}(i)
		go func() {
			defer wg.Done()
			store.Get(ctx, "privacy")
		}()
	}
	wg.Wait()

	if _, err := store.Get(ctx, "privacy"); err != nil {
		t.Errorf("Get after concurrent writes: %v", err)
	}
}
