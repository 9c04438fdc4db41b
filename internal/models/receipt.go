package models

import "github.com/shopspring/decimal"

// ViberReceipt is the state of a previously sent Viber message.
type ViberReceipt struct {
	MessageID MessageID   `json:"message_id"`
	Status    ViberStatus `json:"status"`
}

// ViberPlusSMSReceipt extends ViberReceipt with the SMS fallback leg. Both SMS
// fields are nil when the gateway did not report an SMS leg.
type ViberPlusSMSReceipt struct {
	ViberReceipt
	SMSMessageID *MessageID `json:"sms_message_id,omitempty"`
	SMSStatus    *SMSStatus `json:"sms_message_status,omitempty"`
}

// BalanceInfo is a snapshot of the SMS account balance.
type BalanceInfo struct {
	Balance  decimal.Decimal `json:"balance"`
	Credit   decimal.Decimal `json:"credit"`
	Currency string          `json:"currency"`
}
