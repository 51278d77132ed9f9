package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	wp "github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// Форматы дат WPGraphQL: date и modified приходят без зоны, dateGmt и прочие в RFC3339
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseTimestamp разбирает дату WordPress, пустая строка дает нулевое время
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("некорректная дата %q", s)
}

// normalizer преобразует ответы WPGraphQL в записи pkg/models
type normalizer struct {
	logger interfaces.LoggerPort
}

func (n normalizer) catalogItem(p *wp.WPProduct) (*models.CatalogItem, error) {
	created, err := parseTimestamp(p.Date)
	if err != nil {
		return nil, fmt.Errorf("товар %q: %w", p.Slug, err)
	}
	modified, err := parseTimestamp(p.Modified)
	if err != nil {
		return nil, fmt.Errorf("товар %q: %w", p.Slug, err)
	}

	item := &models.CatalogItem{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Body:       p.Content,
		Excerpt:    p.Excerpt,
		CreatedAt:  created,
		ModifiedAt: modified,
		Image:      image(p.FeaturedImage),
		Commercial: n.commercial(p.Slug, p.AffiliateFields),
		Categories: categories(p.Categories),
		Tags:       tags(p.Tags),
		SEO:        seo(p.SEO),
	}

	if err := validate.Struct(item); err != nil {
		return nil, fmt.Errorf("товар %q не прошел валидацию: %w", p.Slug, err)
	}
	return item, nil
}

func (n normalizer) catalogItems(nodes []wp.WPProduct) ([]models.CatalogItem, error) {
	items := make([]models.CatalogItem, 0, len(nodes))
	for i := range nodes {
		item, err := n.catalogItem(&nodes[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// commercial возвращает nil, если нет ни цены, ни ссылки.
// Неполные данные допустимы, но логируются как проблема качества контента
func (n normalizer) commercial(slug string, f *wp.WPAffiliateFields) *models.CommercialMetadata {
	if f == nil {
		return nil
	}

	link := ""
	if f.AffiliateLink != nil {
		link = strings.TrimSpace(*f.AffiliateLink)
	}

	if !f.Price.Valid && link == "" {
		return nil
	}
	if !f.Price.Valid || link == "" {
		n.logger.Warn("Неполные партнерские данные товара",
			interfaces.LogField{Key: "slug", Value: slug},
			interfaces.LogField{Key: "has_price", Value: f.Price.Valid},
			interfaces.LogField{Key: "has_link", Value: link != ""},
		)
	}

	meta := &models.CommercialMetadata{
		Price:         f.Price.Value,
		AffiliateLink: link,
		Features:      nonNil(f.Features),
		Pros:          nonNil(f.Pros),
		Cons:          nonNil(f.Cons),
	}

	if f.ComparePrice.Valid {
		compare := f.ComparePrice.Value
		meta.ComparePrice = &compare
	}
	if f.Rating.Valid {
		rating := f.Rating.Value
		meta.Rating = &rating
	}
	if f.ReviewCount.Valid {
		count := f.ReviewCount.Value
		meta.ReviewCount = &count
	}
	if f.BuyButtonText != nil {
		if label := strings.TrimSpace(*f.BuyButtonText); label != "" {
			meta.CTALabel = &label
		}
	}

	return meta
}

func (n normalizer) article(p *wp.WPPost) (*models.ArticleItem, error) {
	published, err := parseTimestamp(p.Date)
	if err != nil {
		return nil, fmt.Errorf("запись %q: %w", p.Slug, err)
	}

	item := &models.ArticleItem{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Body:        p.Content,
		Excerpt:     p.Excerpt,
		PublishedAt: published,
		Image:       image(p.FeaturedImage),
		Categories:  categories(p.Categories),
	}

	if p.Author != nil && p.Author.Node != nil {
		item.Author.Name = p.Author.Node.Name
		if p.Author.Node.Avatar != nil {
			item.Author.AvatarURL = p.Author.Node.Avatar.URL
		}
	}

	if err := validate.Struct(item); err != nil {
		return nil, fmt.Errorf("запись %q не прошла валидацию: %w", p.Slug, err)
	}
	return item, nil
}

func image(f *wp.WPFeaturedImage) *models.Image {
	if f == nil || f.Node == nil || strings.TrimSpace(f.Node.SourceURL) == "" {
		return nil
	}

	img := &models.Image{
		SourceURL: f.Node.SourceURL,
		AltText:   f.Node.AltText,
	}
	if d := f.Node.MediaDetails; d != nil {
		if d.Width != nil {
			img.Width = *d.Width
		}
		if d.Height != nil {
			img.Height = *d.Height
		}
	}
	return img
}

func category(c wp.WPCategory) models.CategoryRef {
	ref := models.CategoryRef{
		ID:    c.ID,
		Name:  c.Name,
		Slug:  c.Slug,
		Count: c.Count,
	}
	if c.Description != nil && strings.TrimSpace(*c.Description) != "" {
		desc := *c.Description
		ref.Description = &desc
	}
	return ref
}

func categories(conn *wp.Connection[wp.WPCategory]) []models.CategoryRef {
	if conn == nil {
		return []models.CategoryRef{}
	}
	out := make([]models.CategoryRef, 0, len(conn.Nodes))
	for _, c := range conn.Nodes {
		out = append(out, category(c))
	}
	return out
}

func tags(conn *wp.Connection[wp.WPTag]) []models.TagRef {
	if conn == nil {
		return []models.TagRef{}
	}
	out := make([]models.TagRef, 0, len(conn.Nodes))
	for _, t := range conn.Nodes {
		out = append(out, models.TagRef{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return out
}

func seo(s *wp.WPSEO) *models.SEO {
	if s == nil {
		return nil
	}

	out := &models.SEO{Title: s.Title, Description: s.MetaDesc}
	if s.OpengraphImage != nil {
		out.SocialImageURL = s.OpengraphImage.SourceURL
	}

	if out.Title == "" && out.Description == "" && out.SocialImageURL == "" {
		return nil
	}
	return out
}

func nonNil(list wp.RepeaterList) []string {
	if list == nil {
		return []string{}
	}
	return []string(list)
}
