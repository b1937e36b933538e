package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors an identity from the auth provider. The ID is the provider's
// subject, so no local id is generated.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	EmailAddress string    `json:"emailAddress" gorm:"index"`
	Role         string    `json:"role" gorm:"not null;default:user"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Subscription is the billing state of a user. A missing row means free tier.
type Subscription struct {
	UserID           string    `json:"userId" gorm:"primaryKey"`
	Status           string    `json:"status" gorm:"not null"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Active reports whether the subscription grants pro features at now.
func (s *Subscription) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != "active" && s.Status != "trialing" {
		return false
	}
	return s.CurrentPeriodEnd.After(now)
}

// Identity is the authenticated caller, taken from a verified token.
type Identity struct {
	UserID string
	Email  string
}
