package config

const (
	// FreeCreditsPerDay is the number of assistant answers an unsubscribed user gets per day.
	FreeCreditsPerDay = 15

	// Linked mailbox accounts allowed per tier. Roles other than "user" are not capped.
	FreeAccountsPerUser = 1
	ProAccountsPerUser  = 3

	// ThreadPageSize caps every thread listing. There is no second page.
	ThreadPageSize = 15
)
