package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/auth"
	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
)

// WordPressConfig настройки подключения к WPGraphQL
type WordPressConfig struct {
	BaseURL          string
	Timeout          time.Duration
	ListPageSize     int
	SearchPageSize   int
	CategoryPageSize int
	SlugPageSize     int
	SlugBound        int // максимум слагов при полном обходе каталога

	Auth struct {
		TokenURL     string
		ClientID     string
		ClientSecret string
		Scopes       []string
		StaticToken  string
	}
}

// Validate проверяет, что базовый адрес задан и является абсолютным http(s) URL
func (w *WordPressConfig) Validate() error {
	base := strings.TrimSpace(w.BaseURL)
	if base == "" {
		return fmt.Errorf("%w: не задан адрес WordPress (WORDPRESS_API_URL)", apperrors.ErrConfiguration)
	}

	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: некорректный адрес WordPress %q", apperrors.ErrConfiguration, base)
	}

	if w.Timeout <= 0 {
		return fmt.Errorf("%w: wordpress.timeout должен быть положительным", apperrors.ErrConfiguration)
	}

	if w.Auth.ClientID != "" && w.Auth.TokenURL == "" {
		return fmt.Errorf("%w: для client credentials нужен wordpress.auth.tokenUrl", apperrors.ErrConfiguration)
	}

	return nil
}

// Endpoint возвращает адрес GraphQL эндпоинта
func (w *WordPressConfig) Endpoint() string {
	return strings.TrimRight(strings.TrimSpace(w.BaseURL), "/") + "/graphql"
}

// GetCredentialsConfig возвращает конфигурацию для auth.NewHTTPClient
func (w *WordPressConfig) GetCredentialsConfig() auth.CredentialsConfig {
	return auth.CredentialsConfig{
		TokenURL:     w.Auth.TokenURL,
		ClientID:     w.Auth.ClientID,
		ClientSecret: w.Auth.ClientSecret,
		Scopes:       w.Auth.Scopes,
		StaticToken:  w.Auth.StaticToken,
	}
}
