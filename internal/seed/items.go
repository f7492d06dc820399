package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"pharmstock/m/domain"
	"pharmstock/m/internal/store"
)

// LoadItemsFile ingests an initial stock CSV. Problems are logged, never fatal.
func LoadItemsFile(ctx context.Context, items store.Items, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load stock file %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	n, err := LoadItems(ctx, items, file)
	if err != nil {
		log.Printf("unable to seed stock from %s: %v", csvPath, err)
		return
	}
	log.Printf("seeded %d items from %s", n, csvPath)
}

// LoadItems reads rows of scope_kind,scope,name,quantity,expiry,notes after a header
// line and pushes each as a new item. Rows that are short, name no item or point at an
// invalid scope are skipped.
func LoadItems(ctx context.Context, items store.Items, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read header: %w", err)
	}

	rows := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read stock row %d: %v", line, err)
			continue
		}
		if len(record) < 3 {
			continue
		}
		for len(record) < 6 {
			record = append(record, "")
		}
		scope := domain.Scope{
			Kind: domain.ScopeKind(strings.TrimSpace(record[0])),
			Key:  strings.TrimSpace(record[1]),
		}
		name := strings.TrimSpace(record[2])
		if name == "" {
			continue
		}
		if err := scope.Validate(); err != nil {
			log.Printf("skipping stock row %d: %v", line, err)
			continue
		}

		item := domain.Item{
			Name:     name,
			Quantity: domain.ParseQuantity(record[3]),
			Expiry:   strings.TrimSpace(record[4]),
			Notes:    strings.TrimSpace(record[5]),
		}
		if _, err := items.Push(ctx, scope, item); err != nil {
			return rows, fmt.Errorf("insert %s: %w", name, err)
		}
		rows++
	}
	return rows, nil
}
