package models

import "time"

// ArticleItem представляет запись блога (тип контента "post" в WordPress)
type ArticleItem struct {
	ID          string        `json:"id" validate:"required"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug" validate:"required"`
	Body        string        `json:"body"`
	Excerpt     string        `json:"excerpt"`
	PublishedAt time.Time     `json:"published_at"`
	Author      Author        `json:"author"`
	Image       *Image        `json:"image,omitempty" validate:"omitempty"`
	Categories  []CategoryRef `json:"categories"`
}

// Author автор записи
type Author struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
