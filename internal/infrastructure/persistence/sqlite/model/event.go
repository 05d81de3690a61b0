package model

// Event is the single table of the pipeline. AUTOINCREMENT keeps ids
// strictly increasing for the lifetime of the store. chat_transcript is a
// reserved column written by a separate collaborator, never by intake.
type Event struct {
	EventID        int64  `gorm:"column:event_id;primaryKey;autoIncrement"`
	SourceApp      string `gorm:"column:source_app;type:text;not null;index"`
	SessionID      string `gorm:"column:session_id;type:text;not null;index"`
	HookEventType  string `gorm:"column:hook_event_type;type:text;not null;index"`
	PayloadJSON    string `gorm:"column:payload_json;type:text;not null"`
	Summary        string `gorm:"column:summary;type:text"`
	ChatTranscript string `gorm:"column:chat_transcript;type:text"`
	Timestamp      int64  `gorm:"column:timestamp;not null;index"`
}

func (Event) TableName() string {
	return "events"
}
