package utils

// PageInfo информация о странице GraphQL connection (спецификация Relay)
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Cursor описывает постраничный обход GraphQL connection с общим ограничением на число элементов
type Cursor struct {
	PageSize int    // Размер страницы (first)
	Limit    int    // Максимум элементов за весь обход, 0 - без ограничения
	After    string // Курсор, с которого начинается следующая страница
	Fetched  int    // Сколько элементов уже получено
	done     bool
}

// NewCursor создает курсор обхода
func NewCursor(pageSize, limit int) *Cursor {
	if pageSize < 1 {
		pageSize = 100
	}
	if limit < 0 {
		limit = 0
	}
	return &Cursor{PageSize: pageSize, Limit: limit}
}

// First возвращает размер следующей страницы с учетом оставшегося лимита
func (c *Cursor) First() int {
	if c.Limit == 0 {
		return c.PageSize
	}
	remaining := c.Limit - c.Fetched
	if remaining < c.PageSize {
		return remaining
	}
	return c.PageSize
}

// Advance учитывает полученную страницу и сообщает, нужен ли следующий запрос
func (c *Cursor) Advance(received int, info PageInfo) bool {
	c.Fetched += received
	c.After = info.EndCursor

	switch {
	case !info.HasNextPage, info.EndCursor == "", received == 0:
		c.done = true
	case c.Limit > 0 && c.Fetched >= c.Limit:
		c.done = true
	}
	return !c.done
}

// Truncated сообщает, что обход остановлен лимитом, а у бэкенда остались элементы
func (c *Cursor) Truncated(info PageInfo) bool {
	return c.Limit > 0 && c.Fetched >= c.Limit && info.HasNextPage
}
