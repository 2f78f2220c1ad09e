package artifact

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestStore(port Port, clock *fixedClock) *Store {
	return NewStore(port, Config{Clock: clock.Now})
}

func TestStore_AppendPrepends(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.UnixMilli(1_700_000_000_000)}
	port := &memPort{}
	store := newTestStore(port, clock)

	first, err := store.Append(ctx, "# one", "<h1>one</h1>", []string{"#a"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	clock.now = clock.now.Add(5 * time.Millisecond)
	second, err := store.Append(ctx, "# two", "<h1>two</h1>", nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(List) = %d, want 2", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Errorf("order = [%s %s], want [%s %s]", items[0].ID, items[1].ID, second.ID, first.ID)
	}
	if second.Tags == nil {
		t.Error("Append with nil tags should store an empty list")
	}
}

func TestStore_AppendIDMatchesTimestamp(t *testing.T) {
	clock := &fixedClock{now: time.UnixMilli(1_700_000_000_123)}
	store := newTestStore(&memPort{}, clock)

	a, err := store.Append(context.Background(), "x", "x", nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if a.ID != "1700000000123" {
		t.Errorf("ID = %q, want %q", a.ID, "1700000000123")
	}
	if strconv.FormatInt(a.CreatedAt, 10) != a.ID {
		t.Errorf("CreatedAt %d does not match ID %q", a.CreatedAt, a.ID)
	}
	if !a.Time().Equal(clock.now) {
		t.Errorf("Time() = %v, want %v", a.Time(), clock.now)
	}
}

func TestStore_AppendSameMillisecond(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.UnixMilli(1_000)}
	store := newTestStore(&memPort{}, clock)

	seen := make(map[string]bool)
	var last int64
	for i := 0; i < 5; i++ {
		a, err := store.Append(ctx, "x", "x", nil)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if seen[a.ID] {
			t.Fatalf("duplicate id %s", a.ID)
		}
		seen[a.ID] = true
		if a.CreatedAt <= last {
			t.Errorf("CreatedAt %d not increasing after %d", a.CreatedAt, last)
		}
		last = a.CreatedAt
	}
}

func TestStore_AppendClockBehindStored(t *testing.T) {
	ctx := context.Background()
	port := &memPort{
		ok:   true,
		blob: `[{"id":"5000","content":"c","html":"h","tags":[],"timestamp":5000}]`,
	}
	store := newTestStore(port, &fixedClock{now: time.UnixMilli(10)})

	a, err := store.Append(ctx, "x", "x", nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if a.CreatedAt != 5001 {
		t.Errorf("CreatedAt = %d, want 5001", a.CreatedAt)
	}
}

func TestStore_AppendGrowsByOne(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.UnixMilli(1)}
	store := newTestStore(&memPort{}, clock)

	for i := 0; i < 3; i++ {
		before, _ := store.List(ctx)
		a, err := store.Append(ctx, "text", "text", []string{"#t"})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		after, _ := store.List(ctx)
		if len(after) != len(before)+1 {
			t.Errorf("len after = %d, want %d", len(after), len(before)+1)
		}
		if after[0].ID != a.ID {
			t.Errorf("head = %s, want %s", after[0].ID, a.ID)
		}
		clock.now = clock.now.Add(time.Millisecond)
	}
}

func TestStore_ListEmpty(t *testing.T) {
	items, err := NewStore(&memPort{}, Config{}).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("List = %v, want empty non-nil", items)
	}
}

func TestStore_ListCorrupt(t *testing.T) {
	port := &memPort{ok: true, blob: "{not json"}
	items, err := NewStore(port, Config{}).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("List = %v, want empty", items)
	}
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(&memPort{}, &fixedClock{now: time.UnixMilli(42)})

	a, err := store.Append(ctx, "raw", "html", []string{"#x", "#x"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, ok, err := store.Get(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("Get(%s) = ok %v err %v", a.ID, ok, err)
	}
	if !reflect.DeepEqual(got, a) {
		t.Errorf("Get = %+v, want %+v", got, a)
	}

	_, ok, err = store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get(missing): %v", err)
	}
	if ok {
		t.Error("Get(missing) reported found")
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.UnixMilli(100)}
	port := &memPort{}
	store := newTestStore(port, clock)

	a, _ := store.Append(ctx, "a", "a", nil)
	clock.now = clock.now.Add(time.Millisecond)
	b, _ := store.Append(ctx, "b", "b", nil)

	removed, err := store.Delete(ctx, a.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("Delete reported nothing removed")
	}

	items, _ := store.List(ctx)
	if len(items) != 1 || items[0].ID != b.ID {
		t.Errorf("List after delete = %+v, want only %s", items, b.ID)
	}
}

func TestStore_DeleteUnknown(t *testing.T) {
	ctx := context.Background()
	port := &memPort{}
	store := newTestStore(port, &fixedClock{now: time.UnixMilli(7)})

	if _, err := store.Append(ctx, "a", "a", []string{"#a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	before, _ := store.List(ctx)
	blobBefore := port.blob
	writesBefore := port.writes

	removed, err := store.Delete(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Error("Delete(unknown) = true, want false")
	}
	if port.writes != writesBefore {
		t.Errorf("Delete(unknown) wrote the collection")
	}
	if port.blob != blobBefore {
		t.Errorf("blob changed after Delete(unknown)")
	}

	after, _ := store.List(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("List changed: before %+v after %+v", before, after)
	}
}

func TestStore_RawText(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(&memPort{}, &fixedClock{now: time.UnixMilli(9)})
	raw := "# 标题\n- 项目 #工作\n"

	a, _ := store.Append(ctx, raw, "<h1>标题</h1>", []string{"#工作"})

	got, ok, err := store.RawText(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("RawText = ok %v err %v", ok, err)
	}
	if got != raw {
		t.Errorf("RawText = %q, want %q", got, raw)
	}

	if _, ok, _ := store.RawText(ctx, "nope"); ok {
		t.Error("RawText(unknown) reported found")
	}
}

func TestStore_PersistenceErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("read", func(t *testing.T) {
		store := NewStore(&memPort{readErr: errDiskFull}, Config{})

		if _, err := store.List(ctx); !errors.Is(err, ErrPersistence) || !errors.Is(err, errDiskFull) {
			t.Errorf("List err = %v, want ErrPersistence wrapping cause", err)
		}
		if _, _, err := store.Get(ctx, "1"); !errors.Is(err, ErrPersistence) {
			t.Errorf("Get err = %v, want ErrPersistence", err)
		}
		if _, err := store.Delete(ctx, "1"); !errors.Is(err, ErrPersistence) {
			t.Errorf("Delete err = %v, want ErrPersistence", err)
		}
	})

	t.Run("write", func(t *testing.T) {
		store := NewStore(&memPort{writeErr: errDiskFull}, Config{})

		_, err := store.Append(ctx, "a", "a", nil)
		if !errors.Is(err, ErrPersistence) {
			t.Errorf("Append err = %v, want ErrPersistence", err)
		}
		if errors.Is(err, ErrNotFound) {
			t.Error("persistence failure must not look like not-found")
		}
	})
}
