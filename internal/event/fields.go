package event

import (
	"encoding/json"
	"strconv"
)

// Field aliases are tried in a fixed priority order: the upstream API emits
// PascalCase at the transaction root but camelCase inside event payloads,
// and both casings must resolve to the same logical field.
var (
	blockNumberAliases  = []string{"BlockNumber", "blockNumber"}
	txIDAliases         = []string{"TransactionID", "TransactionHash", "txHash", "transactionId", "transactionHash"}
	timestampAliases    = []string{"BlockTimestamp", "blockTimestamp", "Timestamp", "timestamp"}
	fromAliases         = []string{"From", "from"}
	toAliases           = []string{"To", "to"}
	amountAliases       = []string{"Amount", "amount"}
	contractTypeAliases = []string{"ContractType", "contractType"}
	successAliases      = []string{"Success", "success"}
	eventDataAliases    = []string{"EventData", "eventData"}
)

// requiredFieldSets lists the aliases whose presence marks a payload as a
// transaction event rather than a connection acknowledgement. Amount alone
// is not enough to classify a payload.
var requiredFieldSets = [][]string{
	blockNumberAliases,
	txIDAliases,
	fromAliases,
	toAliases,
	contractTypeAliases,
}

func firstValue(obj map[string]interface{}, aliases []string) (interface{}, bool) {
	for _, key := range aliases {
		if value, ok := obj[key]; ok {
			return value, true
		}
	}
	return nil, false
}

func firstString(obj map[string]interface{}, aliases []string) string {
	value, ok := firstValue(obj, aliases)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

func firstBool(obj map[string]interface{}, aliases []string) *bool {
	value, ok := firstValue(obj, aliases)
	if !ok {
		return nil
	}
	b, ok := value.(bool)
	if !ok {
		return nil
	}
	return &b
}

func firstObject(obj map[string]interface{}, aliases []string) map[string]interface{} {
	value, ok := firstValue(obj, aliases)
	if !ok {
		return nil
	}
	nested, _ := value.(map[string]interface{})
	return nested
}

// asInt64 parses a JSON value (number or numeric string) as int64.
func asInt64(value interface{}) (int64, bool) {
	switch typed := value.(type) {
	case json.Number:
		n, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(typed, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		return int64(typed), true
	default:
		return 0, false
	}
}

// asDisplayString renders a JSON value the way it arrived, for raw
// preservation in degrade paths.
func asDisplayString(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
