package domain

import "time"

// CategoriesPath is the store path of the drug category collection.
const CategoriesPath = "drugCategories"

// Category groups medicines under a responsible employee.
type Category struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ResponsiblePerson string    `json:"responsible_person"`
	CreatedAt         time.Time `json:"created_at"`
}

// Scope returns the scope holding this category's medicines.
func (c Category) Scope() Scope {
	return CategoryScope(c.ID)
}
