package dto

import (
	emaildomain "inboxpilot-backend/internal/email/domain"
)

type ThreadCountResponse struct {
	Count int64 `json:"count"`
}

type ThreadsResponse struct {
	Threads []emaildomain.Thread `json:"threads"`
}
