package reports

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletStatement(t *testing.T) {
	db, dbmock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	userID := uuid.New()
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	dbmock.ExpectQuery(`SELECT(.|\n)*FROM wallet_transactions`).
		WithArgs(userID, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"credits", "debits", "count"}).
			AddRow(21250.0, 5000.0, 3))

	dbmock.ExpectQuery(`SELECT wallet_balance FROM users`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"wallet_balance"}).AddRow(16250.0))

	day := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	dbmock.ExpectQuery(`date_trunc`).
		WithArgs(userID, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"day", "credits", "debits"}).
			AddRow(day, 21250.0, 0.0).
			AddRow(day.AddDate(0, 0, 5), 0.0, 5000.0))

	stmt, err := repo.WalletStatement(context.Background(), userID, from, to)

	require.NoError(t, err)
	assert.Equal(t, 21250.0, stmt.TotalCredits)
	assert.Equal(t, 5000.0, stmt.TotalDebits)
	assert.Equal(t, 16250.0, stmt.NetChange)
	assert.Equal(t, int64(3), stmt.TransactionCount)
	assert.Equal(t, 16250.0, stmt.ClosingBalance)
	assert.Len(t, stmt.Days, 2)
	require.NoError(t, dbmock.ExpectationsWereMet())
}

func TestPlatformSummary(t *testing.T) {
	db, dbmock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	dbmock.ExpectQuery(`FROM orders`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count", "gross", "fees", "earnings"}).
			AddRow(12, 300000.0, 45000.0, 255000.0))

	dbmock.ExpectQuery(`FROM withdrawals`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(120000.0))

	summary, err := repo.PlatformSummary(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, int64(12), summary.OrdersCompleted)
	assert.Equal(t, 300000.0, summary.GrossVolume)
	assert.Equal(t, 45000.0, summary.PlatformFees)
	assert.Equal(t, 255000.0, summary.DriverEarnings)
	assert.Equal(t, 120000.0, summary.WithdrawalsPaid)
	require.NoError(t, dbmock.ExpectationsWereMet())
}
