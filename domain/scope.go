package domain

import (
	"fmt"
	"strings"
)

// ScopeKind identifies how items are partitioned.
type ScopeKind string

const (
	ScopeEmployee ScopeKind = "employee"
	ScopeCategory ScopeKind = "category"
)

// Scope is the partition an item lives under: an employee name or a drug category id.
type Scope struct {
	Kind ScopeKind
	Key  string
}

// EmployeeScope returns the scope for an employee's personal stock list.
func EmployeeScope(name string) Scope {
	return Scope{Kind: ScopeEmployee, Key: name}
}

// CategoryScope returns the scope for the medicines of a drug category.
func CategoryScope(categoryID string) Scope {
	return Scope{Kind: ScopeCategory, Key: categoryID}
}

// Root is the path prefix shared by every scope of this kind.
func (k ScopeKind) Root() string {
	if k == ScopeCategory {
		return "medicines"
	}
	return "inventory"
}

// Path is the store path of the scope, e.g. inventory/{employee} or medicines/{categoryID}.
func (s Scope) Path() string {
	return s.Kind.Root() + "/" + s.Key
}

// Validate rejects scopes that would produce ambiguous store paths.
func (s Scope) Validate() error {
	if s.Kind != ScopeEmployee && s.Kind != ScopeCategory {
		return fmt.Errorf("unknown scope kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Key) == "" || strings.Contains(s.Key, "/") {
		return fmt.Errorf("invalid scope key %q", s.Key)
	}
	return nil
}

func (s Scope) String() string {
	return s.Path()
}
