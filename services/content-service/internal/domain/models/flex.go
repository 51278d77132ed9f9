package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

// FlexDecimal десятичное значение ACF: строка "49.99", число 49.99, null или пустая строка.
// Строки сохраняются как есть, числа приводятся к каноничной записи
type FlexDecimal struct {
	Value string
	Valid bool
}

func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	*f = FlexDecimal{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("некорректное десятичное значение %q", raw)
		}
		f.Value, f.Valid = raw, true
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("некорректное десятичное значение %s", data)
	}
	f.Value, f.Valid = d.String(), true
	return nil
}

// FlexFloat число с плавающей точкой: число, числовая строка, null или пустая строка
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	raw, ok, err := numericText(data)
	if err != nil || !ok {
		return err
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("некорректное число %q", raw)
	}
	f.Value, f.Valid = v, true
	return nil
}

// FlexInt целое число: число без дробной части, числовая строка, null или пустая строка
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	raw, ok, err := numericText(data)
	if err != nil || !ok {
		return err
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return fmt.Errorf("некорректное целое число %q", raw)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return fmt.Errorf("целое число вне диапазона %q", raw)
	}
	f.Value, f.Valid = int(d.IntPart()), true
	return nil
}

// numericText возвращает текст числа из JSON числа или строки, ok=false для null и пустой строки
func numericText(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return "", false, nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false, fmt.Errorf("ожидалось число, получено %s", data)
	}
	return n.String(), true, nil
}

// RepeaterList значения повторителя ACF в виде списка строк.
// Принимает ["a","b"], строки-объекты [{"feature":"a"}], null и текст с переводами строк.
// Пустые строки отбрасываются, порядок сохраняется
type RepeaterList []string

func (r *RepeaterList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	out := make([]string, 0)

	switch {
	case bytes.Equal(data, jsonNull), len(data) == 0:

	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		for _, line := range strings.Split(text, "\n") {
			out = appendNonEmpty(out, line)
		}

	case data[0] == '[':
		var rows []json.RawMessage
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		for _, row := range rows {
			value, err := repeaterRowValue(row)
			if err != nil {
				return err
			}
			out = appendNonEmpty(out, value)
		}

	default:
		return fmt.Errorf("неожиданный формат повторителя: %s", data)
	}

	*r = out
	return nil
}

// repeaterRowValue извлекает текст строки повторителя
func repeaterRowValue(row json.RawMessage) (string, error) {
	row = bytes.TrimSpace(row)
	if bytes.Equal(row, jsonNull) {
		return "", nil
	}

	if len(row) > 0 && row[0] == '"' {
		var s string
		err := json.Unmarshal(row, &s)
		return s, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return "", fmt.Errorf("неожиданная строка повторителя: %s", row)
	}

	// Подполе одно (feature, pro, con), при нескольких берется первое непустое по алфавиту
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var s string
		if err := json.Unmarshal(fields[k], &s); err == nil && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", nil
}

func appendNonEmpty(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}
