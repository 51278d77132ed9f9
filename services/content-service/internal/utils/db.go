package utils

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// PostgresParams параметры подключения к журналу переходов
type PostgresParams struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	ApplicationName string
	PoolSize        int // 0 - размер пула по умолчанию pgxpool
	Timeout         time.Duration
}

// GenerateConnectionString собирает DSN в формате keyword=value, который понимает pgxpool
func GenerateConnectionString(p PostgresParams) (string, error) {
	switch {
	case p.Host == "":
		return "", ErrStorageEmptyHostName
	case p.Port < 0 || p.Port > 65535:
		return "", ErrStorageInvalidPortNumber
	case p.User == "":
		return "", ErrStorageEmptyUsername
	case p.Password == "":
		return "", ErrStorageEmptyPassword
	case p.DBName == "":
		return "", ErrStorageInvalidDatabaseName
	case !slices.Contains(sslModes, p.SSLMode):
		return "", ErrStorageInvalidSslMode
	case p.Timeout < 0:
		return "", ErrStorageInvalidTimeout
	case p.PoolSize < 0:
		return "", ErrStorageInvalidPoolSize
	}

	pairs := []string{
		keyValue("host", p.Host),
		keyValue("port", strconv.Itoa(p.Port)),
		keyValue("user", p.User),
		keyValue("password", p.Password),
		keyValue("dbname", p.DBName),
		keyValue("sslmode", p.SSLMode),
	}
	if p.ApplicationName != "" {
		pairs = append(pairs, keyValue("application_name", p.ApplicationName))
	}
	if p.Timeout > 0 {
		// libpq принимает только целые секунды, минимум 1
		seconds := max(int(p.Timeout/time.Second), 1)
		pairs = append(pairs, keyValue("connect_timeout", strconv.Itoa(seconds)))
	}
	if p.PoolSize > 0 {
		pairs = append(pairs, keyValue("pool_max_conns", strconv.Itoa(p.PoolSize)))
	}

	return strings.Join(pairs, " "), nil
}

// keyValue экранирует значение по правилам libpq: кавычки, если есть пробелы или спецсимволы
func keyValue(key, value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return key + "=" + value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return key + "='" + escaped + "'"
}
