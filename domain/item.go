package domain

import (
	"strconv"
	"strings"
)

// Item is a stock entry kept under exactly one scope.
type Item struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Quantity       int    `db:"quantity" json:"quantity"`
	Expiry         string `db:"expiry" json:"expiry"`
	Notes          string `db:"notes" json:"notes"`
	Image          string `db:"image" json:"image,omitempty"`
	StoragePath    string `db:"storage_path" json:"-"`
	DrugCategory   string `db:"drug_category" json:"drug_category,omitempty"`
	ProductionDate string `db:"production_date" json:"production_date,omitempty"`
	SKU            string `db:"sku" json:"sku,omitempty"`
	Seq            int64  `db:"seq" json:"-"`
}

// ItemPatch is a partial update; nil fields are left untouched.
type ItemPatch struct {
	Quantity *int
}

// HasInlineImage reports whether the image is a data URL still waiting for upload.
func (i Item) HasInlineImage() bool {
	return IsDataURL(i.Image)
}

// IsDataURL reports whether s is an inline data URL rather than a remote URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// AdjustQuantity applies delta to current and never goes below zero.
func AdjustQuantity(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// ParseQuantity reads a form quantity. Blank, unparseable and negative values become 0.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
