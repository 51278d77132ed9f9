package messaging

import "time"

type ContentEventType = string

// Типы событий, которые WordPress присылает через вебхук
const (
	ContentPublishedEvent ContentEventType = "content_published"
	ContentUpdatedEvent   ContentEventType = "content_updated"
	ContentDeletedEvent   ContentEventType = "content_deleted"
)

// Типы контента WordPress
const (
	ContentTypeProduct = "product"
	ContentTypePost    = "post"
)

// ContentEvent изменение контента в CMS, публикуется в content-events
type ContentEvent struct {
	ID          string           `json:"id"`
	Type        ContentEventType `json:"type"`
	ContentType string           `json:"content_type"`
	Slug        string           `json:"slug,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// RevalidateEvent запрос на пересборку страницы, публикуется в page-revalidate
type RevalidateEvent struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Slug        string    `json:"slug,omitempty"`
	ContentType string    `json:"content_type"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// ClickEvent переход по партнерской ссылке, публикуется в affiliate-clicks
type ClickEvent struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Destination string    `json:"destination"`
	Referrer    string    `json:"referrer,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	IPHash      string    `json:"ip_hash,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	ClickedAt   time.Time `json:"clicked_at"`
}

// IsValidContentEventType проверяет тип события
func IsValidContentEventType(t string) bool {
	switch t {
	case ContentPublishedEvent, ContentUpdatedEvent, ContentDeletedEvent:
		return true
	}
	return false
}
