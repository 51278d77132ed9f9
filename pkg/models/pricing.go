package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountPercent вычисляет скидку в процентах: round((compare-price)/compare*100)
// Скидка определена только если compare > price > 0, результат лежит в [0, 100)
func DiscountPercent(price, comparePrice string) (int, bool) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return 0, false
	}
	c, err := decimal.NewFromString(comparePrice)
	if err != nil {
		return 0, false
	}
	if !p.IsPositive() || !c.GreaterThan(p) {
		return 0, false
	}

	pct := c.Sub(p).Div(c).Mul(hundred).Round(0)
	// цена почти нулевая: округление дает 100, что уже не скидка, а бесплатно
	if pct.GreaterThanOrEqual(hundred) {
		pct = decimal.NewFromInt(99)
	}
	return int(pct.IntPart()), true
}

// Discount возвращает скидку товара, если у него есть цена и цена для сравнения
func (c *CommercialMetadata) Discount() (int, bool) {
	if c == nil || c.ComparePrice == nil {
		return 0, false
	}
	return DiscountPercent(c.Price, *c.ComparePrice)
}
