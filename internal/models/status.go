package models

import "strconv"

// SMSStatus is the delivery state of an SMS message. The value is the wire code.
type SMSStatus int

// SMS delivery states reported by the gateway.
const (
	SMSStatusUnknown       SMSStatus = 0
	SMSStatusDelivered     SMSStatus = 2
	SMSStatusExpired       SMSStatus = 3
	SMSStatusUndeliverable SMSStatus = 5
	SMSStatusAccepted      SMSStatus = 6

	// SMSStatusNoMatch is returned when the gateway reports a code that is not in
	// the status table. It is not a wire code.
	SMSStatusNoMatch SMSStatus = -1
)

var smsStatusNames = map[SMSStatus]string{
	SMSStatusUnknown:       "Unknown",
	SMSStatusDelivered:     "Delivered",
	SMSStatusExpired:       "Expired",
	SMSStatusUndeliverable: "Undeliverable",
	SMSStatusAccepted:      "Accepted",
}

// SMSStatuses lists every member of the SMS status table.
func SMSStatuses() []SMSStatus {
	return []SMSStatus{
		SMSStatusUnknown,
		SMSStatusDelivered,
		SMSStatusExpired,
		SMSStatusUndeliverable,
		SMSStatusAccepted,
	}
}

// ParseSMSStatus resolves a wire code. ok is false when the code is not in the table.
func ParseSMSStatus(code int) (status SMSStatus, ok bool) {
	status = SMSStatus(code)
	if _, ok = smsStatusNames[status]; !ok {
		return SMSStatusNoMatch, false
	}
	return status, true
}

// Code returns the wire code.
func (s SMSStatus) Code() int { return int(s) }

func (s SMSStatus) String() string {
	if name, ok := smsStatusNames[s]; ok {
		return name
	}
	if s == SMSStatusNoMatch {
		return "NoMatch"
	}
	return "SMSStatus(" + strconv.Itoa(int(s)) + ")"
}

// ViberStatus is the delivery state of a Viber message. The value is the wire code.
type ViberStatus int

// Viber delivery states reported by the gateway.
const (
	ViberStatusSent        ViberStatus = 0
	ViberStatusDelivered   ViberStatus = 1
	ViberStatusError       ViberStatus = 2
	ViberStatusRejected    ViberStatus = 3
	ViberStatusUndelivered ViberStatus = 4
	ViberStatusPending     ViberStatus = 5
	ViberStatusUnknown     ViberStatus = 20

	// ViberStatusNoMatch is returned when the gateway reports a code that is not
	// in the status table. It is not a wire code.
	ViberStatusNoMatch ViberStatus = -1
)

var viberStatusNames = map[ViberStatus]string{
	ViberStatusSent:        "Sent",
	ViberStatusDelivered:   "Delivered",
	ViberStatusError:       "Error",
	ViberStatusRejected:    "Rejected",
	ViberStatusUndelivered: "Undelivered",
	ViberStatusPending:     "Pending",
	ViberStatusUnknown:     "Unknown",
}

// ViberStatuses lists every member of the Viber status table.
func ViberStatuses() []ViberStatus {
	return []ViberStatus{
		ViberStatusSent,
		ViberStatusDelivered,
		ViberStatusError,
		ViberStatusRejected,
		ViberStatusUndelivered,
		ViberStatusPending,
		ViberStatusUnknown,
	}
}

// ParseViberStatus resolves a wire code. ok is false when the code is not in the table.
func ParseViberStatus(code int) (status ViberStatus, ok bool) {
	status = ViberStatus(code)
	if _, ok = viberStatusNames[status]; !ok {
		return ViberStatusNoMatch, false
	}
	return status, true
}

// Code returns the wire code.
func (s ViberStatus) Code() int { return int(s) }

func (s ViberStatus) String() string {
	if name, ok := viberStatusNames[s]; ok {
		return name
	}
	if s == ViberStatusNoMatch {
		return "NoMatch"
	}
	return "ViberStatus(" + strconv.Itoa(int(s)) + ")"
}
