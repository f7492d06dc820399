package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmstock/m/domain"
	"pharmstock/m/internal/database"
	"pharmstock/m/internal/migrations"
	"pharmstock/m/internal/store"
)

func newSQLBackend(t *testing.T) store.Backend {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store.NewSQL(db, store.NewNotifier())
}

func backends() map[string]func(t *testing.T) store.Backend {
	return map[string]func(t *testing.T) store.Backend{
		"memory": func(*testing.T) store.Backend { return store.NewMemory(nil) },
		"sql":    newSQLBackend,
	}
}

func TestItemsLifecycle(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := mk(t)
			scope := domain.EmployeeScope("سارة")
			other := domain.EmployeeScope("نزار")

			first, err := b.Items.Push(ctx, scope, domain.Item{Name: "Panadol", Quantity: 3, Expiry: "12/25"})
			if err != nil {
				t.Fatalf("Push: %v", err)
			}
			if first.ID == "" {
				t.Fatal("Push must assign an id")
			}
			second, err := b.Items.Push(ctx, scope, domain.Item{Name: "Amoxil", Quantity: 1})
			if err != nil {
				t.Fatalf("Push: %v", err)
			}
			if second.ID == first.ID {
				t.Fatal("push keys must be unique")
			}
			if _, err := b.Items.Push(ctx, other, domain.Item{Name: "Brufen"}); err != nil {
				t.Fatalf("Push other: %v", err)
			}

			items, err := b.Items.List(ctx, scope)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != 2 || items[0].Name != "Panadol" || items[1].Name != "Amoxil" {
				t.Fatalf("List = %+v, want push order", items)
			}

			first.Name = "Panadol Extra"
			first.Notes = "shelf 2"
			if err := b.Items.Set(ctx, scope, first); err != nil {
				t.Fatalf("Set: %v", err)
			}
			items, _ = b.Items.List(ctx, scope)
			if items[0].ID != first.ID || items[0].Name != "Panadol Extra" || items[0].Notes != "shelf 2" {
				t.Errorf("Set must overwrite in place, got %+v", items[0])
			}

			qty := 9
			if err := b.Items.Update(ctx, scope, second.ID, domain.ItemPatch{Quantity: &qty}); err != nil {
				t.Fatalf("Update: %v", err)
			}
			got, err := b.Items.Get(ctx, scope, second.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Quantity != 9 || got.Name != "Amoxil" {
				t.Errorf("Update = %+v, want quantity 9 and other fields kept", got)
			}

			if err := b.Items.Remove(ctx, scope, first.ID); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, err := b.Items.Get(ctx, scope, first.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Get after Remove err = %v, want ErrNotFound", err)
			}
			if err := b.Items.Remove(ctx, scope, first.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("second Remove err = %v, want ErrNotFound", err)
			}
			if err := b.Items.Update(ctx, scope, "missing", domain.ItemPatch{Quantity: &qty}); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Update missing err = %v, want ErrNotFound", err)
			}

			if err := b.Items.RemoveScope(ctx, other); err != nil {
				t.Fatalf("RemoveScope: %v", err)
			}
			if rest, _ := b.Items.List(ctx, other); len(rest) != 0 {
				t.Errorf("RemoveScope left %d items", len(rest))
			}
			if rest, _ := b.Items.List(ctx, scope); len(rest) != 1 {
				t.Errorf("RemoveScope touched another scope: %d items left", len(rest))
			}
		})
	}
}

func TestCategoriesActivitiesShortages(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := mk(t)
			created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			c, err := b.Categories.Push(ctx, domain.Category{Name: "Antibiotics", ResponsiblePerson: "بسام", CreatedAt: created})
			if err != nil {
				t.Fatalf("Push category: %v", err)
			}
			c.Name = "Antibiotics (oral)"
			if err := b.Categories.Set(ctx, c); err != nil {
				t.Fatalf("Set category: %v", err)
			}
			got, err := b.Categories.Get(ctx, c.ID)
			if err != nil {
				t.Fatalf("Get category: %v", err)
			}
			if got.Name != "Antibiotics (oral)" || !got.CreatedAt.Equal(created) {
				t.Errorf("category = %+v", got)
			}
			if err := b.Categories.Remove(ctx, c.ID); err != nil {
				t.Fatalf("Remove category: %v", err)
			}
			if list, _ := b.Categories.List(ctx); len(list) != 0 {
				t.Errorf("categories after remove = %+v", list)
			}

			at := time.UnixMilli(1718000000000).UTC()
			a, err := b.Activities.Append(ctx, domain.Activity{Type: domain.ActivityAdd, MedicineName: "Amoxil", CategoryID: c.ID, CategoryName: c.Name, Timestamp: at})
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
			acts, err := b.Activities.List(ctx)
			if err != nil || len(acts) != 1 {
				t.Fatalf("List activities = %v, %v", acts, err)
			}
			if acts[0].ID != a.ID || acts[0].Type != domain.ActivityAdd || !acts[0].Timestamp.Equal(at) {
				t.Errorf("activity = %+v", acts[0])
			}

			sh, err := b.Shortages.Push(ctx, domain.Shortage{Image: "http://x/blobs/a.jpg", StoragePath: "a.jpg", Note: "miswak", At: at})
			if err != nil {
				t.Fatalf("Push shortage: %v", err)
			}
			gotSh, err := b.Shortages.Get(ctx, sh.ID)
			if err != nil || gotSh.StoragePath != "a.jpg" {
				t.Fatalf("Get shortage = %+v, %v", gotSh, err)
			}
			if err := b.Shortages.Remove(ctx, sh.ID); err != nil {
				t.Fatalf("Remove shortage: %v", err)
			}
			if _, err := b.Shortages.Get(ctx, sh.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("Get removed shortage err = %v", err)
			}
		})
	}
}

func TestWatchEmitsSnapshots(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			b := mk(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			scope := domain.CategoryScope("c1")

			feed := store.Watch(ctx, b.Notifier, scope.Path(), func(ctx context.Context) ([]domain.Item, error) {
				return b.Items.List(ctx, scope)
			})

			if snap := next(t, feed); len(snap) != 0 {
				t.Fatalf("initial snapshot = %+v, want empty", snap)
			}
			if _, err := b.Items.Push(ctx, scope, domain.Item{Name: "Zinc"}); err != nil {
				t.Fatal(err)
			}
			if snap := next(t, feed); len(snap) != 1 || snap[0].Name != "Zinc" {
				t.Fatalf("snapshot after push = %+v", snap)
			}

			cancel()
			select {
			case _, ok := <-feed:
				if ok {
					// A snapshot may have been in flight; the channel must close after it.
					if _, ok := <-feed; ok {
						t.Error("feed still open after cancel")
					}
				}
			case <-time.After(2 * time.Second):
				t.Error("feed did not close after cancel")
			}
		})
	}
}

func next(t *testing.T, feed <-chan []domain.Item) []domain.Item {
	t.Helper()
	select {
	case snap, ok := <-feed:
		if !ok {
			t.Fatal("feed closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}
