package tron

// contractTypeLabels maps the chain's transaction contract-type tags to
// short human labels. The tag set is closed and defined by the upstream
// transaction model; unrecognized tags fall through to the raw tag.
var contractTypeLabels = map[string]string{
	"AccountCreateContract":           "Account Creation",
	"TransferContract":                "TRX Transfer",
	"TransferAssetContract":           "TRC10 Transfer",
	"VoteAssetContract":               "Asset Vote",
	"VoteWitnessContract":             "Witness Vote",
	"WitnessCreateContract":           "Witness Creation",
	"AssetIssueContract":              "Asset Issue",
	"WitnessUpdateContract":           "Witness Update",
	"ParticipateAssetIssueContract":   "Asset Issue Participation",
	"AccountUpdateContract":           "Account Update",
	"FreezeBalanceContract":           "Balance Freeze",
	"UnfreezeBalanceContract":         "Balance Unfreeze",
	"WithdrawBalanceContract":         "Reward Withdrawal",
	"UnfreezeAssetContract":           "Asset Unfreeze",
	"UpdateAssetContract":             "Asset Update",
	"ProposalCreateContract":          "Proposal Creation",
	"ProposalApproveContract":         "Proposal Approval",
	"ProposalDeleteContract":          "Proposal Deletion",
	"SetAccountIdContract":            "Account ID Update",
	"CustomContract":                  "Custom Contract",
	"CreateSmartContract":             "Contract Deployment",
	"TriggerSmartContract":            "Smart Contract Call",
	"GetContract":                     "Contract Query",
	"UpdateSettingContract":           "Contract Setting Update",
	"ExchangeCreateContract":          "Exchange Creation",
	"ExchangeInjectContract":          "Exchange Injection",
	"ExchangeWithdrawContract":        "Exchange Withdrawal",
	"ExchangeTransactionContract":     "Exchange Trade",
	"UpdateEnergyLimitContract":       "Energy Limit Update",
	"AccountPermissionUpdateContract": "Permission Update",
	"ClearABIContract":                "ABI Clear",
	"UpdateBrokerageContract":         "Brokerage Update",
	"ShieldedTransferContract":        "Shielded Transfer",
	"MarketSellAssetContract":         "Market Sell",
	"MarketCancelOrderContract":       "Market Order Cancel",
	"FreezeBalanceV2Contract":         "Balance Freeze (v2)",
	"UnfreezeBalanceV2Contract":       "Balance Unfreeze (v2)",
	"WithdrawExpireUnfreezeContract":  "Expired Unfreeze Withdrawal",
	"DelegateResourceContract":        "Resource Delegation",
	"UnDelegateResourceContract":      "Resource Undelegation",
	"CancelAllUnfreezeV2Contract":     "Unfreeze Cancellation (v2)",
}

// ContractTypeLabel returns a short human label for a contract-type tag.
// Unknown tags are not an error; the raw tag is echoed back.
func ContractTypeLabel(tag string) string {
	if label, ok := contractTypeLabels[tag]; ok {
		return label
	}
	return tag
}
