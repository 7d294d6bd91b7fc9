package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frstrtr/mongotron/internal/model"
)

func boolPtr(b bool) *bool      { return &b }
func i64Ptr(n int64) *int64     { return &n }
func f64Ptr(f float64) *float64 { return &f }

func TestLinesTransfer(t *testing.T) {
	ev := &model.DecodedEvent{
		TxID:          "bc5f77f23e6d9fefbd05c2c4b1dbf0f048c548a314cfab88a84a07af917529e0",
		BlockNumber:   61090262,
		ContractType:  "TriggerSmartContract",
		ContractLabel: "Smart Contract Call",
		From:          "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi",
		To:            "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf",
		Success:       boolPtr(true),
		Call: &model.DecodedCall{
			MethodName:     "transfer(address,uint256)",
			MethodSelector: "a9059cbb",
			Addresses: []model.CallAddress{
				{Hex: "41eca9bc828a3005b9a3b909f2cc5c2a54794de05f", Base58: "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"},
			},
			TokenAmountMinor: i64Ptr(1500000),
			TokenAmountMajor: f64Ptr(1.5),
		},
	}

	out := strings.Join(Lines(ev), "\n")
	require.Contains(t, out, "event: Smart Contract Call")
	require.Contains(t, out, "block: 61090262")
	require.Contains(t, out, "method: token transfer")
	require.Contains(t, out, "recipient: TXYZopYRdj...3kM5VkAeBf")
	require.Contains(t, out, "token amount: 1.500000 tokens")
	require.Contains(t, out, "token amount (raw): 1500000")
	require.Contains(t, out, "status: success")
	// long hashes and addresses are abbreviated
	require.NotContains(t, out, "bc5f77f23e6d9fefbd05c2c4b1dbf0f048c548a314cfab88a84a07af917529e0")
}

func TestLinesTransferFromAndApprove(t *testing.T) {
	transferFrom := &model.DecodedCall{
		MethodName: "transferFrom(address,address,uint256)",
		Addresses: []model.CallAddress{
			{Base58: "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi"},
			{Base58: "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"},
		},
		TokenAmountMinor: i64Ptr(100),
		TokenAmountMajor: f64Ptr(0.0001),
	}
	out := strings.Join(callLines(transferFrom), "\n")
	require.Contains(t, out, "sender: TVF2Mp9QY7")
	require.Contains(t, out, "recipient: TXYZopYRdj")

	approve := &model.DecodedCall{
		MethodName:       "approve(address,uint256)",
		Addresses:        []model.CallAddress{{Base58: "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"}},
		TokenAmountMajor: f64Ptr(7.0),
	}
	out = strings.Join(callLines(approve), "\n")
	require.Contains(t, out, "spender: TXYZopYRdj")
	require.Contains(t, out, "allowance: 7.000000 tokens")
}

func TestLinesQueriesHaveNoAmount(t *testing.T) {
	balance := &model.DecodedCall{
		MethodName: "balanceOf(address)",
		Addresses:  []model.CallAddress{{Base58: "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi"}},
	}
	out := strings.Join(callLines(balance), "\n")
	require.Contains(t, out, "balance query")
	require.Contains(t, out, "owner: TVF2Mp9QY7")
	require.NotContains(t, out, "amount")

	allowance := &model.DecodedCall{
		MethodName: "allowance(address,address)",
		Addresses: []model.CallAddress{
			{Base58: "TVF2Mp9QY7FEGTnr3DBpFLobA6jguHyMvi"},
			{Base58: "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"},
		},
	}
	out = strings.Join(callLines(allowance), "\n")
	require.Contains(t, out, "owner: TVF2Mp9QY7")
	require.Contains(t, out, "spender: TXYZopYRdj")
}

func TestLinesGenericMethodReinterpretsAddresses(t *testing.T) {
	call := &model.DecodedCall{
		MethodSelector: "deadbeef",
		Addresses:      []model.CallAddress{{Base58: "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf"}},
		Params: map[string]string{
			"param0": "41d3682962027e721c5247a9faf7865fe4a71d5438",
			"param1": "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf",
			"param2": "12345",
		},
	}

	out := strings.Join(callLines(call), "\n")
	require.Contains(t, out, "method selector: 0xdeadbeef")
	require.Contains(t, out, "address[0]: TXYZopYRdj")
	// hex param re-interpreted as base58 address
	require.Contains(t, out, "param param0: TVF2Mp9QY7")
	// base58 param shortened
	require.Contains(t, out, "param param1: TXYZopYRdj")
	// plain value left alone
	require.Contains(t, out, "param param2: 12345")
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	err := sink.PutEvent(context.Background(), &model.DecodedEvent{
		ContractLabel: "TRX Transfer",
		AmountSun:     1500000,
		AmountTRX:     1.5,
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "event: TRX Transfer")
	require.Contains(t, buf.String(), "amount: 1.500000 TRX")

	require.NoError(t, sink.PutEvent(context.Background(), nil))
}
