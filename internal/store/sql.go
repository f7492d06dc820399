package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmstock/m/domain"
)

// NewSQL returns a Backend over the tables created by the migrations package.
// Queries use $n placeholders, accepted by both SQLite and PostgreSQL.
func NewSQL(db *sqlx.DB, n *Notifier) Backend {
	if n == nil {
		n = NewNotifier()
	}
	return Backend{
		Items:      &sqlItems{db: db, n: n},
		Categories: &sqlCategories{db: db, n: n},
		Activities: &sqlActivities{db: db, n: n},
		Shortages:  &sqlShortages{db: db, n: n},
		Notifier:   n,
	}
}

const itemColumns = `id, name, quantity, expiry, notes, image, storage_path, drug_category, production_date, sku, seq`

type sqlItems struct {
	db *sqlx.DB
	n  *Notifier
}

func (s *sqlItems) List(ctx context.Context, scope domain.Scope) ([]domain.Item, error) {
	items := []domain.Item{}
	if err := s.db.SelectContext(ctx, &items, `SELECT `+itemColumns+` FROM items WHERE scope = $1 ORDER BY seq`, scope.Path()); err != nil {
		return nil, fmt.Errorf("list items of %s: %w", scope, err)
	}
	return items, nil
}

func (s *sqlItems) Get(ctx context.Context, scope domain.Scope, id string) (domain.Item, error) {
	var item domain.Item
	err := s.db.GetContext(ctx, &item, `SELECT `+itemColumns+` FROM items WHERE scope = $1 AND id = $2`, scope.Path(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %s/%s: %w", scope, id, err)
	}
	return item, nil
}

func (s *sqlItems) Push(ctx context.Context, scope domain.Scope, item domain.Item) (domain.Item, error) {
	item.ID = NewKey()
	item.Seq = nextSeq()
	_, err := s.db.ExecContext(ctx, `INSERT INTO items (scope, `+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		scope.Path(), item.ID, item.Name, item.Quantity, item.Expiry, item.Notes, item.Image, item.StoragePath,
		item.DrugCategory, item.ProductionDate, item.SKU, item.Seq)
	if err != nil {
		return domain.Item{}, fmt.Errorf("push item to %s: %w", scope, err)
	}
	s.n.Publish(scope.Path())
	return item, nil
}

func (s *sqlItems) Set(ctx context.Context, scope domain.Scope, item domain.Item) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO items (scope, `+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (scope, id) DO UPDATE SET
			name = excluded.name,
			quantity = excluded.quantity,
			expiry = excluded.expiry,
			notes = excluded.notes,
			image = excluded.image,
			storage_path = excluded.storage_path,
			drug_category = excluded.drug_category,
			production_date = excluded.production_date,
			sku = excluded.sku`,
		scope.Path(), item.ID, item.Name, item.Quantity, item.Expiry, item.Notes, item.Image, item.StoragePath,
		item.DrugCategory, item.ProductionDate, item.SKU, nextSeq())
	if err != nil {
		return fmt.Errorf("set item %s/%s: %w", scope, item.ID, err)
	}
	s.n.Publish(scope.Path())
	return nil
}

func (s *sqlItems) Update(ctx context.Context, scope domain.Scope, id string, patch domain.ItemPatch) error {
	if patch.Quantity == nil {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE items SET quantity = $1 WHERE scope = $2 AND id = $3`, *patch.Quantity, scope.Path(), id)
	if err != nil {
		return fmt.Errorf("update item %s/%s: %w", scope, id, err)
	}
	if err := expectRow(res); err != nil {
		return err
	}
	s.n.Publish(scope.Path())
	return nil
}

func (s *sqlItems) Remove(ctx context.Context, scope domain.Scope, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE scope = $1 AND id = $2`, scope.Path(), id)
	if err != nil {
		return fmt.Errorf("remove item %s/%s: %w", scope, id, err)
	}
	if err := expectRow(res); err != nil {
		return err
	}
	s.n.Publish(scope.Path())
	return nil
}

func (s *sqlItems) RemoveScope(ctx context.Context, scope domain.Scope) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE scope = $1`, scope.Path()); err != nil {
		return fmt.Errorf("remove items of %s: %w", scope, err)
	}
	s.n.Publish(scope.Path())
	return nil
}

type categoryRow struct {
	ID                string `db:"id"`
	Name              string `db:"name"`
	ResponsiblePerson string `db:"responsible_person"`
	CreatedAt         int64  `db:"created_at"`
}

func (r categoryRow) category() domain.Category {
	return domain.Category{ID: r.ID, Name: r.Name, ResponsiblePerson: r.ResponsiblePerson, CreatedAt: time.Unix(0, r.CreatedAt).UTC()}
}

type sqlCategories struct {
	db *sqlx.DB
	n  *Notifier
}

func (s *sqlCategories) List(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, responsible_person, created_at FROM categories ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]domain.Category, len(rows))
	for i, r := range rows {
		out[i] = r.category()
	}
	return out, nil
}

func (s *sqlCategories) Get(ctx context.Context, id string) (domain.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, responsible_person, created_at FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, ErrNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return row.category(), nil
}

func (s *sqlCategories) Push(ctx context.Context, c domain.Category) (domain.Category, error) {
	c.ID = NewKey()
	if err := s.Set(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *sqlCategories) Set(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, name, responsible_person, created_at, seq) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			responsible_person = excluded.responsible_person,
			created_at = excluded.created_at`,
		c.ID, c.Name, c.ResponsiblePerson, c.CreatedAt.UnixNano(), nextSeq())
	if err != nil {
		return fmt.Errorf("set category %s: %w", c.ID, err)
	}
	s.n.Publish(domain.CategoriesPath)
	return nil
}

func (s *sqlCategories) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove category %s: %w", id, err)
	}
	if err := expectRow(res); err != nil {
		return err
	}
	s.n.Publish(domain.CategoriesPath)
	return nil
}

type activityRow struct {
	ID           string `db:"id"`
	Type         string `db:"type"`
	MedicineName string `db:"medicine_name"`
	CategoryID   string `db:"category_id"`
	CategoryName string `db:"category_name"`
	TimestampMS  int64  `db:"timestamp_ms"`
}

type sqlActivities struct {
	db *sqlx.DB
	n  *Notifier
}

func (s *sqlActivities) Append(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	a.ID = NewKey()
	_, err := s.db.ExecContext(ctx, `INSERT INTO activities (id, type, medicine_name, category_id, category_name, timestamp_ms, seq) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, string(a.Type), a.MedicineName, a.CategoryID, a.CategoryName, a.Timestamp.UnixMilli(), nextSeq())
	if err != nil {
		return domain.Activity{}, fmt.Errorf("append activity: %w", err)
	}
	s.n.Publish(domain.ActivitiesPath)
	return a, nil
}

func (s *sqlActivities) List(ctx context.Context) ([]domain.Activity, error) {
	var rows []activityRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, type, medicine_name, category_id, category_name, timestamp_ms FROM activities ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	out := make([]domain.Activity, len(rows))
	for i, r := range rows {
		out[i] = domain.Activity{
			ID:           r.ID,
			Type:         domain.ActivityType(r.Type),
			MedicineName: r.MedicineName,
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			Timestamp:    time.UnixMilli(r.TimestampMS).UTC(),
		}
	}
	return out, nil
}

type shortageRow struct {
	ID          string `db:"id"`
	Image       string `db:"image"`
	StoragePath string `db:"storage_path"`
	Note        string `db:"note"`
	AtMS        int64  `db:"at_ms"`
}

func (r shortageRow) shortage() domain.Shortage {
	return domain.Shortage{ID: r.ID, Image: r.Image, StoragePath: r.StoragePath, Note: r.Note, At: time.UnixMilli(r.AtMS).UTC()}
}

type sqlShortages struct {
	db *sqlx.DB
	n  *Notifier
}

func (s *sqlShortages) List(ctx context.Context) ([]domain.Shortage, error) {
	var rows []shortageRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, image, storage_path, note, at_ms FROM shortages ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("list shortages: %w", err)
	}
	out := make([]domain.Shortage, len(rows))
	for i, r := range rows {
		out[i] = r.shortage()
	}
	return out, nil
}

func (s *sqlShortages) Get(ctx context.Context, id string) (domain.Shortage, error) {
	var row shortageRow
	err := s.db.GetContext(ctx, &row, `SELECT id, image, storage_path, note, at_ms FROM shortages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shortage{}, ErrNotFound
	}
	if err != nil {
		return domain.Shortage{}, fmt.Errorf("get shortage %s: %w", id, err)
	}
	return row.shortage(), nil
}

func (s *sqlShortages) Push(ctx context.Context, sh domain.Shortage) (domain.Shortage, error) {
	sh.ID = NewKey()
	_, err := s.db.ExecContext(ctx, `INSERT INTO shortages (id, image, storage_path, note, at_ms, seq) VALUES ($1, $2, $3, $4, $5, $6)`,
		sh.ID, sh.Image, sh.StoragePath, sh.Note, sh.At.UnixMilli(), nextSeq())
	if err != nil {
		return domain.Shortage{}, fmt.Errorf("push shortage: %w", err)
	}
	s.n.Publish(domain.ShortagesPath)
	return sh, nil
}

func (s *sqlShortages) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shortages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove shortage %s: %w", id, err)
	}
	if err := expectRow(res); err != nil {
		return err
	}
	s.n.Publish(domain.ShortagesPath)
	return nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
