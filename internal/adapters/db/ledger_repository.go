// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// ledgerRepository implements ports.LedgerRepository over the append-only
// transactions table.
type ledgerRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *Database, logger *slog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

// Append inserts one ledger entry inside the caller's transaction and
// assigns its id. Nothing here ever updates or deletes a row.
func (r *ledgerRepository) Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			item_id, quantity, type, timestamp, user_id, reason, total_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := tx.QueryRow(ctx, query,
		txn.ItemID, txn.Quantity, string(txn.Type), txn.Timestamp,
		txn.UserID, txn.Reason, txn.TotalPrice,
	).Scan(&txn.ID)

	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	r.logger.DebugContext(ctx, "ledger entry appended",
		slog.Int64("transaction_id", txn.ID),
		slog.Int64("item_id", txn.ItemID),
		slog.String("type", string(txn.Type)))

	return nil
}

// Recent returns at most limit entries, newest first. Entries sharing a
// timestamp order by ascending id so the result is deterministic.
func (r *ledgerRepository) Recent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT t.id, t.item_id, t.quantity, t.type, t.timestamp,
		       t.user_id, t.reason, t.total_price,
		       COALESCE(i.name, ''), COALESCE(u.username, '')
		FROM transactions t
		LEFT JOIN items i ON i.id = t.item_id
		LEFT JOIN users u ON u.id = t.user_id
		ORDER BY t.timestamp DESC, t.id ASC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}

	return scanTransactions(rows)
}

// FindByItem returns an item's ledger entries oldest first, the order a
// replay folds them in. limit <= 0 means no limit.
func (r *ledgerRepository) FindByItem(ctx context.Context, itemID int64, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT t.id, t.item_id, t.quantity, t.type, t.timestamp,
		       t.user_id, t.reason, t.total_price,
		       COALESCE(i.name, ''), COALESCE(u.username, '')
		FROM transactions t
		LEFT JOIN items i ON i.id = t.item_id
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.item_id = $1
		ORDER BY t.timestamp ASC, t.id ASC`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.Query(ctx, query+` LIMIT $2`, itemID, limit)
	} else {
		rows, err = r.db.Query(ctx, query, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item transactions: %w", err)
	}

	return scanTransactions(rows)
}

// Balances computes, per item, the signed sum of all ledger entries next
// to the stored quantity. The reconciliation worker flags any row whose
// drift is non-zero.
func (r *ledgerRepository) Balances(ctx context.Context) ([]ports.LedgerBalance, error) {
	query := `
		SELECT i.id, i.initial_quantity, i.quantity,
		       COALESCE(SUM(CASE WHEN t.type = 'ADD' THEN t.quantity ELSE -t.quantity END), 0)
		FROM items i
		LEFT JOIN transactions t ON t.item_id = i.id
		GROUP BY i.id, i.initial_quantity, i.quantity
		ORDER BY i.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger balances: %w", err)
	}
	defer rows.Close()

	var balances []ports.LedgerBalance
	for rows.Next() {
		var b ports.LedgerBalance
		if err := rows.Scan(&b.ItemID, &b.InitialQuantity, &b.Quantity, &b.LedgerDelta); err != nil {
			return nil, fmt.Errorf("failed to scan ledger balance: %w", err)
		}
		balances = append(balances, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return balances, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var txnType string
		err := rows.Scan(
			&txn.ID, &txn.ItemID, &txn.Quantity, &txnType, &txn.Timestamp,
			&txn.UserID, &txn.Reason, &txn.TotalPrice,
			&txn.ItemName, &txn.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = domain.TransactionType(txnType)
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return txns, nil
}
