package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frstrtr/mongotron/internal/model"
)

func TestJsonlSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	sink := NewJsonlSink(path)
	ctx := context.Background()

	first := &model.DecodedEvent{TxID: "aa", BlockNumber: 1, ContractType: "TransferContract"}
	second := &model.DecodedEvent{TxID: "bb", BlockNumber: 2, ContractType: "TriggerSmartContract"}
	require.NoError(t, sink.PutEvent(ctx, first))
	require.NoError(t, sink.PutEvent(ctx, second))
	require.NoError(t, sink.PutEvent(ctx, nil))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var txIDs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev model.DecodedEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		txIDs = append(txIDs, ev.TxID)
	}
	require.NoError(t, scanner.Err())
	require.Equal(t, []string{"aa", "bb"}, txIDs)
}

type countSink struct {
	calls int
	err   error
}

func (s *countSink) PutEvent(context.Context, *model.DecodedEvent) error {
	s.calls++
	return s.err
}

func TestMultiSinkFanOut(t *testing.T) {
	a := &countSink{}
	b := &countSink{}
	sinks := MultiSink{a, b}

	require.NoError(t, sinks.PutEvent(context.Background(), &model.DecodedEvent{TxID: "aa"}))
	require.Equal(t, 1, a.calls)
	require.Equal(t, 1, b.calls)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("disk full")
	a := &countSink{err: boom}
	b := &countSink{}
	sinks := MultiSink{a, b}

	err := sinks.PutEvent(context.Background(), &model.DecodedEvent{TxID: "aa"})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, a.calls)
	require.Equal(t, 0, b.calls)
}
