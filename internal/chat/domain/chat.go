package domain

import "time"

// DayLayout formats ChatbotInteraction.Day in the server's local time zone.
const DayLayout = "2006-01-02"

// ChatbotInteraction counts assistant answers for one user on one day.
// Pending holds reservations taken by streams that have not finished yet.
type ChatbotInteraction struct {
	Day       string    `json:"day" gorm:"primaryKey;size:10"`
	UserID    string    `json:"userId" gorm:"primaryKey"`
	Count     int       `json:"count" gorm:"column:count;not null;default:0"`
	Pending   int       `json:"pending" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	AccountID string        `json:"accountId"`
	Messages  []ChatMessage `json:"messages"`
}

// LastMessage returns the final turn, or nil for an empty conversation.
func (r *ChatRequest) LastMessage() *ChatMessage {
	if len(r.Messages) == 0 {
		return nil
	}
	return &r.Messages[len(r.Messages)-1]
}
