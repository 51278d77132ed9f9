package models

import "time"

// CatalogItem представляет товар каталога (тип контента "product" в WordPress)
// Body и Excerpt содержат HTML из CMS как есть, экранирование остается за рендерером
type CatalogItem struct {
	ID         string              `json:"id" validate:"required"`
	Title      string              `json:"title"`
	Slug       string              `json:"slug" validate:"required"`
	Body       string              `json:"body"`
	Excerpt    string              `json:"excerpt"`
	CreatedAt  time.Time           `json:"created_at"`
	ModifiedAt time.Time           `json:"modified_at"`
	Image      *Image              `json:"image,omitempty" validate:"omitempty"`
	Commercial *CommercialMetadata `json:"commercial,omitempty" validate:"omitempty"`
	Categories []CategoryRef       `json:"categories"`
	Tags       []TagRef            `json:"tags"`
	SEO        *SEO                `json:"seo,omitempty"`
}

// CommercialMetadata партнерские данные товара
// Цены хранятся строками, форматирование валюты - задача рендерера
type CommercialMetadata struct {
	Price         string   `json:"price"`
	ComparePrice  *string  `json:"compare_price,omitempty"`
	AffiliateLink string   `json:"affiliate_link" validate:"omitempty,http_url"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount   *int     `json:"review_count,omitempty" validate:"omitempty,gte=0"`
	Features      []string `json:"features"`
	Pros          []string `json:"pros"`
	Cons          []string `json:"cons"`
	CTALabel      *string  `json:"cta_label,omitempty"`
}

// DefaultCTALabel надпись кнопки покупки, если в CMS она не задана
const DefaultCTALabel = "Check Price"

// CTA возвращает надпись кнопки покупки
func (c *CommercialMetadata) CTA() string {
	if c == nil || c.CTALabel == nil || *c.CTALabel == "" {
		return DefaultCTALabel
	}
	return *c.CTALabel
}

// HasPurchaseLink сообщает, можно ли вести покупателя на сайт партнера
func (c *CommercialMetadata) HasPurchaseLink() bool {
	return c != nil && c.AffiliateLink != ""
}

// Image ссылка на изображение
type Image struct {
	SourceURL string `json:"source_url"`
	AltText   string `json:"alt_text"`
	Width     int    `json:"width" validate:"gte=0"`
	Height    int    `json:"height" validate:"gte=0"`
}

// SEO переопределения для страницы товара
type SEO struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	SocialImageURL string `json:"social_image_url,omitempty"`
}

// CategoryRef ссылка на категорию
type CategoryRef struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Count       *int    `json:"count,omitempty"`
}

// TagRef ссылка на метку
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SlugListing результат выгрузки всех slug каталога
// Truncated выставляется, если выгрузка остановилась на ограничении и часть slug не получена
type SlugListing struct {
	Slugs     []string `json:"slugs"`
	Truncated bool     `json:"truncated"`
}
