package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frstrtr/mongotron/internal/model"
)

// Store provides Postgres persistence for decoded events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutEvent upserts one decoded event keyed by transaction id.
func (s *Store) PutEvent(ctx context.Context, ev *model.DecodedEvent) error {
	if ev == nil {
		return nil
	}

	var callJSON []byte
	if ev.Call != nil {
		encoded, err := json.Marshal(ev.Call)
		if err != nil {
			return fmt.Errorf("marshal call: %w", err)
		}
		callJSON = encoded
	}

	success := false
	if ev.Success != nil {
		success = *ev.Success
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (
			tx_id, block_number, block_timestamp, contract_type,
			from_hex, from_base58, to_hex, to_base58,
			amount_sun, success, call, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		ON CONFLICT (tx_id) DO UPDATE SET
			block_number = EXCLUDED.block_number,
			block_timestamp = EXCLUDED.block_timestamp,
			contract_type = EXCLUDED.contract_type,
			from_hex = EXCLUDED.from_hex,
			from_base58 = EXCLUDED.from_base58,
			to_hex = EXCLUDED.to_hex,
			to_base58 = EXCLUDED.to_base58,
			amount_sun = EXCLUDED.amount_sun,
			success = EXCLUDED.success,
			call = EXCLUDED.call
	`,
		ev.TxID,
		int64(ev.BlockNumber),
		ev.BlockTimestamp,
		ev.ContractType,
		ev.FromHex,
		ev.From,
		ev.ToHex,
		ev.To,
		ev.AmountSun,
		success,
		callJSON,
	)
	return err
}
