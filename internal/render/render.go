package render

import (
	"fmt"
	"sort"

	"github.com/frstrtr/mongotron/internal/address"
	"github.com/frstrtr/mongotron/internal/model"
)

// Lines renders a decoded event as plain text lines, one fact per line.
// Visual markup (terminal color, chat formatting) is the consumer's concern.
func Lines(ev *model.DecodedEvent) []string {
	if ev == nil {
		return nil
	}

	var lines []string
	label := ev.ContractLabel
	if label == "" {
		label = "Transaction"
	}
	lines = append(lines, fmt.Sprintf("event: %s", label))

	if ev.BlockNumber > 0 {
		lines = append(lines, fmt.Sprintf("block: %d", ev.BlockNumber))
	}
	if ev.TxID != "" {
		lines = append(lines, fmt.Sprintf("tx: %s", ShortHash(ev.TxID)))
	}
	if ev.From != "" {
		lines = append(lines, fmt.Sprintf("from: %s", ShortAddress(ev.From)))
	}
	if ev.To != "" {
		lines = append(lines, fmt.Sprintf("to: %s", ShortAddress(ev.To)))
	}
	if ev.AmountSun > 0 {
		lines = append(lines, fmt.Sprintf("amount: %.6f TRX", ev.AmountTRX))
	} else if ev.AmountRaw != "" {
		lines = append(lines, fmt.Sprintf("amount: %s", ev.AmountRaw))
	}

	if ev.Call != nil {
		lines = append(lines, callLines(ev.Call)...)
	}

	if ev.Success != nil {
		if *ev.Success {
			lines = append(lines, "status: success")
		} else {
			lines = append(lines, "status: failed")
		}
	}
	return lines
}

// callLines applies the per-method rendering rules: transfers show the
// counterparties and amount, approvals the spender and allowance, queries
// their subjects only, and unknown methods a generic parameter dump.
func callLines(call *model.DecodedCall) []string {
	var lines []string

	switch call.MethodName {
	case "transfer(address,uint256)":
		lines = append(lines, "method: token transfer")
		if len(call.Addresses) > 0 {
			lines = append(lines, fmt.Sprintf("recipient: %s", ShortAddress(call.Addresses[0].Base58)))
		}
		lines = append(lines, tokenAmountLines(call)...)

	case "transferFrom(address,address,uint256)":
		lines = append(lines, "method: token transfer (approved)")
		if len(call.Addresses) > 0 {
			lines = append(lines, fmt.Sprintf("sender: %s", ShortAddress(call.Addresses[0].Base58)))
		}
		if len(call.Addresses) > 1 {
			lines = append(lines, fmt.Sprintf("recipient: %s", ShortAddress(call.Addresses[1].Base58)))
		}
		lines = append(lines, tokenAmountLines(call)...)

	case "approve(address,uint256)":
		lines = append(lines, "method: token approval")
		if len(call.Addresses) > 0 {
			lines = append(lines, fmt.Sprintf("spender: %s", ShortAddress(call.Addresses[0].Base58)))
		}
		if call.TokenAmountMajor != nil {
			lines = append(lines, fmt.Sprintf("allowance: %.6f tokens", *call.TokenAmountMajor))
		} else if call.TokenAmountRaw != "" {
			lines = append(lines, fmt.Sprintf("allowance: %s", call.TokenAmountRaw))
		}

	case "balanceOf(address)":
		lines = append(lines, "method: balance query")
		if len(call.Addresses) > 0 {
			lines = append(lines, fmt.Sprintf("owner: %s", ShortAddress(call.Addresses[0].Base58)))
		}

	case "allowance(address,address)":
		lines = append(lines, "method: allowance query")
		if len(call.Addresses) > 0 {
			lines = append(lines, fmt.Sprintf("owner: %s", ShortAddress(call.Addresses[0].Base58)))
		}
		if len(call.Addresses) > 1 {
			lines = append(lines, fmt.Sprintf("spender: %s", ShortAddress(call.Addresses[1].Base58)))
		}

	default:
		lines = append(lines, genericCallLines(call)...)
	}
	return lines
}

func genericCallLines(call *model.DecodedCall) []string {
	var lines []string
	if call.MethodName != "" {
		lines = append(lines, fmt.Sprintf("method: %s", call.MethodName))
	} else if call.MethodSelector != "" {
		lines = append(lines, fmt.Sprintf("method selector: 0x%s", call.MethodSelector))
	}

	for i, addr := range call.Addresses {
		lines = append(lines, fmt.Sprintf("address[%d]: %s", i, ShortAddress(addr.Base58)))
	}
	for _, key := range sortedKeys(call.Params) {
		lines = append(lines, fmt.Sprintf("param %s: %s", key, paramValue(call.Params[key])))
	}
	lines = append(lines, tokenAmountLines(call)...)
	return lines
}

// paramValue re-interprets a parameter value as an address when it matches
// the hex (41 + 40 hex digits) or text (T + 33 chars) shape heuristics.
func paramValue(value string) string {
	if address.IsHexAddress(value) {
		return ShortAddress(address.HexToBase58(value))
	}
	if address.IsBase58Address(value) {
		return ShortAddress(value)
	}
	return value
}

func tokenAmountLines(call *model.DecodedCall) []string {
	var lines []string
	if call.TokenAmountMajor != nil {
		lines = append(lines, fmt.Sprintf("token amount: %.6f tokens", *call.TokenAmountMajor))
		if call.TokenAmountMinor != nil {
			lines = append(lines, fmt.Sprintf("token amount (raw): %d", *call.TokenAmountMinor))
		}
	} else if call.TokenAmountRaw != "" {
		lines = append(lines, fmt.Sprintf("token amount: %s", call.TokenAmountRaw))
	}
	return lines
}

// ShortAddress abbreviates long addresses for display.
func ShortAddress(addr string) string {
	if len(addr) <= 20 {
		return addr
	}
	return addr[:10] + "..." + addr[len(addr)-10:]
}

// ShortHash abbreviates long transaction hashes for display.
func ShortHash(hash string) string {
	if len(hash) <= 40 {
		return hash
	}
	return hash[:20] + "..." + hash[len(hash)-20:]
}

func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
