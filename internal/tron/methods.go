package tron

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ParamType classifies a method parameter for decoding purposes.
type ParamType string

const (
	ParamAddress ParamType = "address"
	ParamUint256 ParamType = "uint256"
	ParamOther   ParamType = "other"
)

// DefaultDecimalScale is the decimal scale applied to token amounts when a
// method carries no explicit scale. It matches the reference USDT token and
// is a documented approximation, not a per-token contract.
const DefaultDecimalScale = 6

// MethodDescriptor describes a known contract method.
type MethodDescriptor struct {
	Signature    string
	Selector     string
	Params       []ParamType
	DecimalScale int
	// HasAmount marks methods whose trailing uint256 carries value semantics
	// (transfers and approvals, as opposed to pure queries).
	HasAmount bool
}

// Registry maps 4-byte selectors and canonical signatures to descriptors.
type Registry struct {
	bySelector  map[string]MethodDescriptor
	bySignature map[string]MethodDescriptor
}

// NewRegistry builds the registry of known TRC20 method signatures.
// Selectors are derived from the canonical signature via Keccak-256, the
// same derivation the chain uses.
func NewRegistry() *Registry {
	known := []MethodDescriptor{
		{
			Signature:    "transfer(address,uint256)",
			Params:       []ParamType{ParamAddress, ParamUint256},
			DecimalScale: DefaultDecimalScale,
			HasAmount:    true,
		},
		{
			Signature:    "transferFrom(address,address,uint256)",
			Params:       []ParamType{ParamAddress, ParamAddress, ParamUint256},
			DecimalScale: DefaultDecimalScale,
			HasAmount:    true,
		},
		{
			Signature:    "approve(address,uint256)",
			Params:       []ParamType{ParamAddress, ParamUint256},
			DecimalScale: DefaultDecimalScale,
			HasAmount:    true,
		},
		{
			Signature:    "balanceOf(address)",
			Params:       []ParamType{ParamAddress},
			DecimalScale: DefaultDecimalScale,
		},
		{
			Signature:    "allowance(address,address)",
			Params:       []ParamType{ParamAddress, ParamAddress},
			DecimalScale: DefaultDecimalScale,
		},
	}

	r := &Registry{
		bySelector:  make(map[string]MethodDescriptor, len(known)),
		bySignature: make(map[string]MethodDescriptor, len(known)),
	}
	for _, desc := range known {
		desc.Selector = SelectorOf(desc.Signature)
		r.bySelector[desc.Selector] = desc
		r.bySignature[desc.Signature] = desc
	}
	return r
}

// SelectorOf returns the 4-byte selector of a canonical signature as
// lowercase hex without a 0x prefix.
func SelectorOf(signature string) string {
	sum := crypto.Keccak256([]byte(signature))
	return hex.EncodeToString(sum[:4])
}

// BySelector looks up a descriptor by its 4-byte hex selector. The selector
// is normalized (0x prefix stripped, lowercased) before lookup.
func (r *Registry) BySelector(selector string) (MethodDescriptor, bool) {
	desc, ok := r.bySelector[NormalizeSelector(selector)]
	return desc, ok
}

// BySignature looks up a descriptor by its canonical signature.
func (r *Registry) BySignature(signature string) (MethodDescriptor, bool) {
	desc, ok := r.bySignature[strings.TrimSpace(signature)]
	return desc, ok
}

// NormalizeSelector strips an optional 0x prefix and lowercases a selector.
func NormalizeSelector(selector string) string {
	selector = strings.TrimSpace(selector)
	if strings.HasPrefix(selector, "0x") || strings.HasPrefix(selector, "0X") {
		selector = selector[2:]
	}
	return strings.ToLower(selector)
}
