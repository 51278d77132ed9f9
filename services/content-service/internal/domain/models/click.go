package models

import (
	"time"
)

// Click переход по партнерской ссылке
type Click struct {
	ID          string    `json:"id" validate:"required,uuid"`
	Slug        string    `json:"slug" validate:"required"`
	Destination string    `json:"destination" validate:"required,url"`
	Referrer    string    `json:"referrer,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	IPHash      string    `json:"ip_hash,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	ClickedAt   time.Time `json:"clicked_at" validate:"required"`
}

// ClickStats агрегированная статистика переходов по товару
type ClickStats struct {
	Slug        string    `json:"slug"`
	Clicks      int64     `json:"clicks"`
	LastClickAt time.Time `json:"last_click_at"`
}
