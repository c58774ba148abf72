package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
)

const instanceColumns = `id, position, name, kind, regex, literals, adjust, at_end, created_at, updated_at`

// InstanceStore implements appinstance.Store over the instances table.
// Save replaces the table contents in one transaction, so the stored order
// always matches the registry order.
type InstanceStore struct {
	db  *sql.DB
	now func() time.Time
}

func newInstanceStore(db *sql.DB) *InstanceStore {
	return &InstanceStore{db: db, now: time.Now}
}

func scanInstance(scanner interface{ Scan(...any) error }) (*InstanceModel, error) {
	var m InstanceModel
	err := scanner.Scan(
		&m.ID, &m.Position, &m.Name, &m.Kind, &m.Regex, &m.Literals,
		&m.Adjust, &m.AtEnd, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

// Load returns every stored instance in registry order.
func (s *InstanceStore) Load(ctx context.Context) ([]*instance.Instance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+instanceColumns+` FROM instances ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*instance.Instance
	for rows.Next() {
		m, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		inst, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		list = append(list, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instances: %w", err)
	}

	log.Debug(log.CatStore, "Loaded instances from sqlite", "count", len(list))
	return list, nil
}

// Save replaces the stored registry with list. Creation timestamps survive
// for names that were already present.
func (s *InstanceStore) Save(ctx context.Context, list []*instance.Instance) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created, err := createdTimes(ctx, tx)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM instances`); err != nil {
		return fmt.Errorf("failed to clear instances: %w", err)
	}

	now := s.now().Unix()
	for i, inst := range list {
		var m *InstanceModel
		m, err = toInstanceModel(inst, i, now)
		if err != nil {
			return err
		}
		if at, ok := created[m.Name]; ok {
			m.CreatedAt = at
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO instances (position, name, kind, regex, literals, adjust, at_end, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.Position, m.Name, m.Kind, m.Regex, m.Literals, m.Adjust, m.AtEnd, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert instance %q: %w", m.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit instances: %w", err)
	}
	log.Debug(log.CatStore, "Saved instances to sqlite", "count", len(list))
	return nil
}

func createdTimes(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name, created_at FROM instances`)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			name string
			at   int64
		)
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		out[name] = at
	}
	return out, rows.Err()
}
