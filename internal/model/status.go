package model

// SyncStatus tracks how far an order has propagated toward the external
// platform. The numeric order is meaningful: a record's status may only
// move to a strictly larger value.
type SyncStatus int

const (
	// StatusLocalOnly: durably stored locally, not yet on the ledger.
	StatusLocalOnly SyncStatus = iota
	// StatusLedgerAcked: the external ledger confirmed the record.
	StatusLedgerAcked
	// StatusNotificationSent: the downstream chat notification went out.
	// Terminal.
	StatusNotificationSent
)

func (s SyncStatus) String() string {
	switch s {
	case StatusLocalOnly:
		return "LOCAL_ONLY"
	case StatusLedgerAcked:
		return "REMOTE_LEDGER_ACKED"
	case StatusNotificationSent:
		return "NOTIFICATION_SENT"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further propagation is needed.
func (s SyncStatus) Terminal() bool {
	return s >= StatusNotificationSent
}
