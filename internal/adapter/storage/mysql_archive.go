package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/tillboard/ordersync/internal/core/domain"
)

var ErrAlreadyFinalized = errors.New("order already finalized")

const mysqlErrDuplicateEntry = 1062

// MySQLArchive persists finalized orders. The live collaborative copy stays
// in the real-time store; rows here are immutable once written.
type MySQLArchive struct {
	db *sql.DB
}

func NewMySQLArchive(db *sql.DB) *MySQLArchive {
	return &MySQLArchive{db: db}
}

func (m *MySQLArchive) SaveFinalizedOrder(ctx context.Context, rec domain.FinalizedOrder) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO finalized_orders
			(order_id, revision, subtotal, service_charge, total,
			 customer_name, customer_phone, table_number, notes, finalized_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.OrderID, rec.Revision, rec.Subtotal, rec.ServiceCharge, rec.Total,
		rec.CustomerName, rec.CustomerPhoneNumber, rec.TableNumber, rec.Notes,
		rec.FinalizedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return ErrAlreadyFinalized
		}
		return fmt.Errorf("insert finalized order: %w", err)
	}

	for _, it := range rec.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO finalized_order_items
				(order_id, item_id, name, unit_price, quantity, item_code)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.OrderID, it.ItemID, it.Name, it.UnitPrice, it.Quantity, it.ItemCode,
		)
		if err != nil {
			return fmt.Errorf("insert finalized order item: %w", err)
		}
	}

	return tx.Commit()
}
