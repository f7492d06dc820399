package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pharmstock/m/domain"
	"pharmstock/m/internal/store"
)

const stock = `scope_kind,scope,name,quantity,expiry,notes
employee,سارة,Panadol,12,12/25,shelf 2
employee,سارة,Amoxil,-3,2025-03-01
category,c1,Zinc,abc,,
employee,,Orphan,1,,
shelf,x,Unknown,1,,
employee,نزار,  ,4,,
employee,نزار
`

func TestLoadItems(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemory(nil)

	n, err := LoadItems(ctx, b.Items, strings.NewReader(stock))
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if n != 3 {
		t.Fatalf("seeded %d rows, want 3", n)
	}

	sara, _ := b.Items.List(ctx, domain.EmployeeScope("سارة"))
	if len(sara) != 2 {
		t.Fatalf("employee items = %+v", sara)
	}
	if sara[0].Name != "Panadol" || sara[0].Quantity != 12 || sara[0].Expiry != "12/25" || sara[0].Notes != "shelf 2" {
		t.Errorf("first = %+v", sara[0])
	}
	if sara[1].Quantity != 0 {
		t.Errorf("negative quantity seeded as %d", sara[1].Quantity)
	}
	zinc, _ := b.Items.List(ctx, domain.CategoryScope("c1"))
	if len(zinc) != 1 || zinc[0].Quantity != 0 {
		t.Errorf("category items = %+v", zinc)
	}
}

func TestLoadItemsFile(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemory(nil)
	path := filepath.Join(t.TempDir(), "stock.csv")
	if err := os.WriteFile(path, []byte(stock), 0o600); err != nil {
		t.Fatal(err)
	}
	LoadItemsFile(ctx, b.Items, path)
	if items, _ := b.Items.List(ctx, domain.EmployeeScope("سارة")); len(items) != 2 {
		t.Errorf("seeded %d items", len(items))
	}

	LoadItemsFile(ctx, b.Items, filepath.Join(t.TempDir(), "missing.csv"))
}

func TestLoadItemsEmpty(t *testing.T) {
	n, err := LoadItems(context.Background(), store.NewMemory(nil).Items, strings.NewReader(""))
	if err != nil || n != 0 {
		t.Errorf("empty input = %d, %v", n, err)
	}
}
