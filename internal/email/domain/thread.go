package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	TabInbox  = "inbox"
	TabSent   = "sent"
	TabDrafts = "drafts"
)

const (
	LabelInbox = "inbox"
	LabelSent  = "sent"
	LabelDraft = "draft"
)

// StringArray is a custom type to handle JSON array in GORM
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*a = StringArray{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Thread is a conversation in a linked account. Rows are written by the
// ingestion service; this backend only reads them.
type Thread struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	AccountID       string    `json:"accountId" gorm:"index;not null"`
	Subject         string    `json:"subject"`
	InboxStatus     bool      `json:"inboxStatus" gorm:"not null;default:false"`
	SentStatus      bool      `json:"sentStatus" gorm:"not null;default:false"`
	DraftStatus     bool      `json:"draftStatus" gorm:"not null;default:false"`
	Done            bool      `json:"done" gorm:"not null;default:false"`
	LastMessageDate time.Time `json:"lastMessageDate" gorm:"index"`
	Emails          []Email   `json:"emails" gorm:"foreignKey:ThreadID"`
}

type Email struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	ThreadID    string      `json:"threadId" gorm:"index;not null"`
	From        string      `json:"from" gorm:"column:from_address"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	BodySnippet string      `json:"bodySnippet"`
	EmailLabel  string      `json:"emailLabel" gorm:"index"`
	SysLabels   StringArray `json:"sysLabels" gorm:"type:text"`
	SentAt      time.Time   `json:"sentAt" gorm:"index"`
}
