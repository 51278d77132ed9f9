package middleware

import (
	"context"
	"net/http"
	"strings"
)

type botKeyType struct{}

var botKey = botKeyType{}

// botPatterns известные подстроки User-Agent поисковых роботов и превью-ботов (в нижнем регистре)
var botPatterns = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot",
	"baiduspider", "yandexbot", "facebookexternalhit",
	"twitterbot", "linkedinbot", "embedly", "pinterest",
	"applebot", "semrushbot", "ahrefsbot", "mj12bot",
	"dotbot", "petalbot", "bytespider", "gptbot",
	"curl/", "wget/", "python-requests", "go-http-client",
}

// BotFilter помечает запросы роботов. Переход выполняется, но не учитывается
func BotFilter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := strings.ToLower(r.UserAgent())
		if ua == "" || IsBot(ua) {
			r = r.WithContext(context.WithValue(r.Context(), botKey, true))
		}
		next.ServeHTTP(w, r)
	})
}

// IsBot проверяет User-Agent по списку известных роботов
func IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, pattern := range botPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}

// IsBotRequest сообщает, что BotFilter пометил запрос
func IsBotRequest(ctx context.Context) bool {
	bot, _ := ctx.Value(botKey).(bool)
	return bot
}
