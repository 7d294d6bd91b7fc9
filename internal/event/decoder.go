package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/frstrtr/mongotron/internal/address"
	"github.com/frstrtr/mongotron/internal/model"
	"github.com/frstrtr/mongotron/internal/tron"
)

// sunPerTRX is the number of native minor units (SUN) per TRX.
const sunPerTRX = 1_000_000

// FilterFunc is an advisory predicate over a fully decoded event. A
// non-matching event is still decoded in full; the decoder only marks it
// suppressed and leaves the drop decision to the caller.
type FilterFunc func(*model.DecodedEvent) bool

// SmartContractOnly matches events that carry a decoded contract call or a
// smart-contract trigger type.
func SmartContractOnly(ev *model.DecodedEvent) bool {
	return ev.Call != nil || ev.ContractType == "TriggerSmartContract"
}

// Decoder turns raw notification payloads into DecodedEvents. Decoding is
// purely functional and safe for concurrent use from multiple sessions.
type Decoder struct {
	registry *tron.Registry
	filter   FilterFunc
	logger   *zap.Logger
}

// NewDecoder builds a Decoder. A nil registry gets the default method set;
// a nil logger is replaced with a nop logger.
func NewDecoder(registry *tron.Registry, filter FilterFunc, logger *zap.Logger) *Decoder {
	if registry == nil {
		registry = tron.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{registry: registry, filter: filter, logger: logger}
}

// Decode parses one raw stream frame. A frame that is not valid JSON is the
// only error condition; a frame without transaction fields (connection
// acknowledgements, server notices) decodes to nil, nil. Every other anomaly
// degrades to a best-effort partial result.
func (d *Decoder) Decode(raw []byte) (*model.DecodedEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	return d.DecodeObject(obj), nil
}

// DecodeObject decodes an already-parsed payload object. It returns nil when
// the object carries none of the transaction field aliases.
func (d *Decoder) DecodeObject(obj map[string]interface{}) *model.DecodedEvent {
	if obj == nil || !isTransactionEvent(obj) {
		return nil
	}

	ev := &model.DecodedEvent{
		TxID:         firstString(obj, txIDAliases),
		ContractType: firstString(obj, contractTypeAliases),
		Success:      firstBool(obj, successAliases),
	}
	if ev.ContractType != "" {
		ev.ContractLabel = tron.ContractTypeLabel(ev.ContractType)
	}

	if value, ok := firstValue(obj, blockNumberAliases); ok {
		if n, ok := asInt64(value); ok && n >= 0 {
			ev.BlockNumber = uint64(n)
		}
	}
	if value, ok := firstValue(obj, timestampAliases); ok {
		if n, ok := asInt64(value); ok {
			ev.BlockTimestamp = n
		}
	}

	if from := firstString(obj, fromAliases); from != "" {
		ev.FromHex = from
		ev.From = address.HexToBase58(from)
	}
	if to := firstString(obj, toAliases); to != "" {
		ev.ToHex = to
		ev.To = address.HexToBase58(to)
	}

	if value, ok := firstValue(obj, amountAliases); ok {
		if n, ok := asInt64(value); ok {
			ev.AmountSun = n
			ev.AmountTRX = float64(n) / sunPerTRX
		} else if raw := asDisplayString(value); raw != "" {
			// non-numeric amount: keep the raw value unscaled
			ev.AmountRaw = raw
		}
	}

	if call := extractSmartContract(obj); call != nil {
		ev.Call = d.decodeCall(call)
	}

	if d.filter != nil && !d.filter(ev) {
		ev.Suppressed = true
	}
	return ev
}

// isTransactionEvent applies the minimal-field classification: a payload
// with none of the core transaction aliases is a non-event.
func isTransactionEvent(obj map[string]interface{}) bool {
	for _, aliases := range requiredFieldSets {
		if _, ok := firstValue(obj, aliases); ok {
			return true
		}
	}
	return false
}

// extractSmartContract finds the nested call descriptor under either the
// event-data envelope or the payload root.
func extractSmartContract(obj map[string]interface{}) map[string]interface{} {
	if eventData := firstObject(obj, eventDataAliases); eventData != nil {
		if sc, ok := eventData["smartContract"].(map[string]interface{}); ok {
			return sc
		}
	}
	if sc, ok := obj["smartContract"].(map[string]interface{}); ok {
		return sc
	}
	return nil
}

func (d *Decoder) decodeCall(sc map[string]interface{}) *model.DecodedCall {
	call := &model.DecodedCall{}

	if sig, ok := sc["methodSignature"].(string); ok {
		call.MethodSelector = tron.NormalizeSelector(sig)
	}

	name, _ := sc["methodName"].(string)
	desc, known := d.registry.BySignature(name)
	if !known && call.MethodSelector != "" {
		desc, known = d.registry.BySelector(call.MethodSelector)
	}
	switch {
	case known:
		call.MethodName = desc.Signature
		if call.MethodSelector == "" {
			call.MethodSelector = desc.Selector
		}
	case name != "":
		// the upstream decoder already resolved a name we do not know
		call.MethodName = name
	default:
		d.logger.Debug("unknown method selector", zap.String("selector", call.MethodSelector))
	}

	if rawAddrs, ok := sc["addresses"].([]interface{}); ok {
		for _, rawAddr := range rawAddrs {
			hexAddr, ok := rawAddr.(string)
			if !ok || hexAddr == "" {
				continue
			}
			call.Addresses = append(call.Addresses, model.CallAddress{
				Hex:    hexAddr,
				Base58: address.HexToBase58(hexAddr),
			})
		}
	}

	if params, ok := sc["parameters"].(map[string]interface{}); ok && len(params) > 0 {
		call.Params = make(map[string]string, len(params))
		for key, value := range params {
			call.Params[key] = asDisplayString(value)
		}
	}

	if value, ok := sc["amount"]; ok && value != nil {
		scale := tron.DefaultDecimalScale
		if known {
			scale = desc.DecimalScale
		}
		if minor, ok := asInt64(value); ok {
			major := float64(minor) / pow10(scale)
			call.TokenAmountMinor = &minor
			call.TokenAmountMajor = &major
		} else if raw := asDisplayString(value); raw != "" {
			call.TokenAmountRaw = raw
		}
	}

	return call
}

func pow10(n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
