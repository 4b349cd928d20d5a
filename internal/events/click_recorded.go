package events

// ClickRecorded is emitted after a click increment is accepted by the API.
type ClickRecorded struct {
	EventID    string `json:"eventId"`
	LinkID     string `json:"linkId"`
	OccurredAt string `json:"occurredAt"`
}
