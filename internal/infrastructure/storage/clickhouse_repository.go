package storage

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
)

// ClickHouseRepository implements the SwapArchive interface using ClickHouse
// as the backend database. It keeps a durable, analytical record of every
// priced swap the scanner flushed, for historical analysis and audits.
type ClickHouseRepository struct {
	conn driver.Conn
}

type ClickHouseConfig struct {
	Addr     string
	Username string
	Password string
	Timeout  int
}

func NewClickHouseRepository(cfg ClickHouseConfig) (*ClickHouseRepository, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: time.Duration(cfg.Timeout) * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := createTablesIfNotExist(conn); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &ClickHouseRepository{conn: conn}, nil
}

var _ repository.SwapArchive = (*ClickHouseRepository)(nil)

func createTablesIfNotExist(conn driver.Conn) error {
	return conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS swap_events (
			tx_hash String,
			trader String,
			token_in_index Int32,
			token_out_index Int32,
			amount_in String,
			usd Float64,
			block_number UInt64,
			timestamp DateTime,
			processed_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (trader, timestamp)
	`)
}

// SaveSwaps inserts a batch of priced swap events.
func (r *ClickHouseRepository) SaveSwaps(ctx context.Context, swaps []*model.SwapEvent) error {
	if len(swaps) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO swap_events (
			tx_hash, trader, token_in_index, token_out_index, amount_in, usd, block_number, timestamp
		)
	`)
	if err != nil {
		return err
	}

	for _, swap := range swaps {
		amountIn := "0"
		if swap.AmountIn != nil {
			amountIn = swap.AmountIn.String()
		}
		if err := batch.Append(
			swap.TxHash,
			swap.Trader,
			int32(swap.TokenInIndex),
			int32(swap.TokenOutIndex),
			amountIn,
			swap.USD,
			swap.BlockNumber,
			swap.Timestamp,
		); err != nil {
			return err
		}
	}
	return batch.Send()
}

// SwapsSince retrieves all archived swap events at or after the given time.
func (r *ClickHouseRepository) SwapsSince(ctx context.Context, since time.Time) ([]*model.SwapEvent, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT tx_hash, trader, token_in_index, token_out_index, amount_in, usd, block_number, timestamp
		FROM swap_events
		WHERE timestamp >= ?
		ORDER BY timestamp
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*model.SwapEvent
	for rows.Next() {
		var (
			swap     model.SwapEvent
			inIdx    int32
			outIdx   int32
			amountIn string
		)
		if err := rows.Scan(
			&swap.TxHash,
			&swap.Trader,
			&inIdx,
			&outIdx,
			&amountIn,
			&swap.USD,
			&swap.BlockNumber,
			&swap.Timestamp,
		); err != nil {
			return nil, err
		}
		swap.TokenInIndex = int(inIdx)
		swap.TokenOutIndex = int(outIdx)
		if v, ok := new(big.Int).SetString(amountIn, 10); ok {
			swap.AmountIn = v
		}
		results = append(results, &swap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close shuts down the connection pool.
func (r *ClickHouseRepository) Close() error {
	return r.conn.Close()
}
