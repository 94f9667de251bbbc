package storage

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRecord() *FillRecord {
	return &FillRecord{
		ID:          "req-1",
		OrderMaker:  "0x1111111111111111111111111111111111111111",
		Protocol:    "RARIBLE_V2",
		Network:     "mainnet",
		Amount:      "10",
		PriceTotal:  "1025000000",
		ProtocolFee: "25000000",
		TxHash:      "0xabc",
		SubmittedAt: time.Now(),
	}
}

func TestPostgresStorage_RecordFill(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := &PostgresStorage{db: db, logger: zap.NewNop()}
	record := testRecord()

	mock.ExpectExec("INSERT INTO fills").
		WithArgs(
			record.ID,
			record.OrderMaker,
			record.Protocol,
			record.Network,
			record.Amount,
			record.PriceTotal,
			record.ProtocolFee,
			record.TxHash,
			record.SubmittedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.RecordFill(context.Background(), record)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_RecordFillError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := &PostgresStorage{db: db, logger: zap.NewNop()}

	mock.ExpectExec("INSERT INTO fills").
		WillReturnError(assert.AnError)

	err = store.RecordFill(context.Background(), testRecord())
	require.Error(t, err)
}

func TestConsoleStorage_RecordFill(t *testing.T) {
	store := NewConsoleStorage(zap.NewNop())

	err := store.RecordFill(context.Background(), testRecord())
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
