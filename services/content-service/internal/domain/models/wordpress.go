package models

import (
	"github.com/athebyme/affiliate-storefront/pkg/utils"
)

// Структуры ответов WPGraphQL. За пределы адаптера шлюза они не выходят,
// наружу отдаются только нормализованные записи из pkg/models

// Connection обертка {nodes, pageInfo} из WPGraphQL
type Connection[T any] struct {
	Nodes    []T            `json:"nodes"`
	PageInfo utils.PageInfo `json:"pageInfo"`
}

// WPProduct товар (custom post type "product")
type WPProduct struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Slug            string                  `json:"slug"`
	Content         string                  `json:"content"`
	Excerpt         string                  `json:"excerpt"`
	Date            string                  `json:"date"`
	Modified        string                  `json:"modified"`
	FeaturedImage   *WPFeaturedImage        `json:"featuredImage"`
	AffiliateFields *WPAffiliateFields      `json:"affiliateFields"`
	Categories      *Connection[WPCategory] `json:"categories"`
	Tags            *Connection[WPTag]      `json:"tags"`
	SEO             *WPSEO                  `json:"seo"`
}

type WPFeaturedImage struct {
	Node *WPMediaItem `json:"node"`
}

type WPMediaItem struct {
	SourceURL    string          `json:"sourceUrl"`
	AltText      string          `json:"altText"`
	MediaDetails *WPMediaDetails `json:"mediaDetails"`
}

type WPMediaDetails struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

// WPAffiliateFields группа полей ACF. Числовые поля ACF приходят числом или строкой,
// повторители строками или объектами-строками
type WPAffiliateFields struct {
	Price         FlexDecimal  `json:"price"`
	ComparePrice  FlexDecimal  `json:"comparePrice"`
	AffiliateLink *string      `json:"affiliateLink"`
	Rating        FlexFloat    `json:"rating"`
	ReviewCount   FlexInt      `json:"reviewCount"`
	Features      RepeaterList `json:"features"`
	Pros          RepeaterList `json:"pros"`
	Cons          RepeaterList `json:"cons"`
	BuyButtonText *string      `json:"buyButtonText"`
}

type WPSEO struct {
	Title          string       `json:"title"`
	MetaDesc       string       `json:"metaDesc"`
	OpengraphImage *WPMediaItem `json:"opengraphImage"`
}

type WPCategory struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Count       *int    `json:"count"`
}

type WPTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// WPPost запись блога
type WPPost struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Slug          string                  `json:"slug"`
	Content       string                  `json:"content"`
	Excerpt       string                  `json:"excerpt"`
	Date          string                  `json:"date"`
	Author        *WPAuthorEdge           `json:"author"`
	FeaturedImage *WPFeaturedImage        `json:"featuredImage"`
	Categories    *Connection[WPCategory] `json:"categories"`
}

type WPAuthorEdge struct {
	Node *WPAuthor `json:"node"`
}

type WPAuthor struct {
	Name   string `json:"name"`
	Avatar *struct {
		URL string `json:"url"`
	} `json:"avatar"`
}

type WPSlugNode struct {
	Slug string `json:"slug"`
}

// Ответы конкретных запросов

type ProductsData struct {
	Products *Connection[WPProduct] `json:"products"`
}

type ProductData struct {
	Product *WPProduct `json:"product"`
}

type SlugsData struct {
	Products *Connection[WPSlugNode] `json:"products"`
}

type CategoriesData struct {
	Categories *Connection[WPCategory] `json:"categories"`
}

type PostsData struct {
	Posts *Connection[WPPost] `json:"posts"`
}
