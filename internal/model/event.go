package model

// DecodedEvent is the normalized form of a transaction notification.
// Address fields carry both the raw hex form (for diagnostics) and the
// checksummed base58 text form.
type DecodedEvent struct {
	TxID           string `json:"tx_id,omitempty"`
	BlockNumber    uint64 `json:"block_number,omitempty"`
	BlockTimestamp int64  `json:"block_timestamp,omitempty"`

	ContractType  string `json:"contract_type,omitempty"`
	ContractLabel string `json:"contract_label,omitempty"`

	FromHex string `json:"from_hex,omitempty"`
	From    string `json:"from,omitempty"`
	ToHex   string `json:"to_hex,omitempty"`
	To      string `json:"to,omitempty"`

	// AmountSun is the top-level amount in native minor units (SUN).
	AmountSun int64 `json:"amount_sun,omitempty"`
	// AmountTRX is the display-major value, AmountSun scaled by 1e6.
	AmountTRX float64 `json:"amount_trx,omitempty"`
	// AmountRaw preserves the as-received value when it is not numeric.
	AmountRaw string `json:"amount_raw,omitempty"`

	Success *bool `json:"success,omitempty"`

	Call *DecodedCall `json:"call,omitempty"`

	// Suppressed is advisory filter metadata: the event is fully decoded
	// but did not match the caller's filter predicate.
	Suppressed bool `json:"-"`
}

// DecodedCall is the decoded nested smart-contract call descriptor.
type DecodedCall struct {
	// MethodName is empty when the selector is unknown.
	MethodName     string `json:"method_name,omitempty"`
	MethodSelector string `json:"method_selector,omitempty"`

	Addresses []CallAddress     `json:"addresses,omitempty"`
	Params    map[string]string `json:"params,omitempty"`

	// TokenAmountMinor/Major are set when the token amount parses as an
	// integer; otherwise TokenAmountRaw carries the value unscaled.
	TokenAmountMinor *int64   `json:"token_amount_minor,omitempty"`
	TokenAmountMajor *float64 `json:"token_amount_major,omitempty"`
	TokenAmountRaw   string   `json:"token_amount_raw,omitempty"`
}

// CallAddress is one parameter address in both wire and text form.
type CallAddress struct {
	Hex    string `json:"hex"`
	Base58 string `json:"base58"`
}
