package domain

import "time"

const ProviderAurinko = "Aurinko"

// Account is a linked mailbox. ID is the aggregator's account id.
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"userId" gorm:"index;not null"`
	Name         string    `json:"name"`
	EmailAddress string    `json:"emailAddress"`
	Token        string    `json:"-" gorm:"not null"`
	Provider     string    `json:"provider" gorm:"not null;default:Aurinko"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountCredentials is what the guard hands to callers: enough to act as the
// account, with the token already decrypted.
type AccountCredentials struct {
	ID           string
	EmailAddress string
	Name         string
	Token        string
}
