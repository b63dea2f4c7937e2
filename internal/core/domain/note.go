package domain

// Note is a human-visible notification persisted when posting a document
// fails and error notes are enabled.
type Note struct {
	NoteID    string         `json:"noteID"`
	ClientID  int64          `json:"clientID"`
	OrgID     int64          `json:"orgID"`
	Record    TableRecordRef `json:"record"`
	Reference string         `json:"reference"`
	Message   string         `json:"message"`
	TextMsg   string         `json:"textMsg"`
	AuditFields
}
