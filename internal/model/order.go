package model

type Order struct {
	LocalID    int64      `json:"record_id"`
	OrderID    int64      `json:"order_id"`
	Printer    string     `json:"printer"`
	Address    string     `json:"address"`
	Content    string     `json:"content"`
	PrintTime  int64      `json:"print_time"` // milliseconds since epoch
	Trace      string     `json:"order_trace"`
	SyncStatus SyncStatus `json:"sync_status"`
}
