package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// CredentialsConfig учетные данные для доступа к бэкенду контента.
// Если задан ClientID, токен получается по OAuth2 client credentials,
// иначе при наличии StaticToken он передается как Bearer
type CredentialsConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	StaticToken  string
}

// Enabled сообщает, настроена ли аутентификация
func (c CredentialsConfig) Enabled() bool {
	return c.ClientID != "" || c.StaticToken != ""
}

// NewHTTPClient оборачивает base клиентом, который добавляет заголовок Authorization.
// Без настроенных учетных данных возвращается base без изменений
func NewHTTPClient(ctx context.Context, cfg CredentialsConfig, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if !cfg.Enabled() {
		return base
	}

	// oauth2 берет транспорт и таймаут из клиента, переданного через контекст
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	var src oauth2.TokenSource
	if cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		src = cc.TokenSource(ctx)
	} else {
		src = oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: strings.TrimSpace(cfg.StaticToken),
			TokenType:   "Bearer",
		})
	}

	client := oauth2.NewClient(ctx, src)
	client.Timeout = base.Timeout
	return client
}
