package postgres

import (
	"database/sql"
	"strings"
)

// Константы для лимитов запросов
const (
	// DefaultQueryLimit - лимит по умолчанию для списка визитов
	DefaultQueryLimit = 50
	// MaxQueryLimit - максимальный лимит для списка визитов
	MaxQueryLimit = 500
	// DefaultTopCountries - размер топа стран в статистике
	DefaultTopCountries = 10
)

// clampLimit приводит лимит к диапазону [1, MaxQueryLimit]
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}

// nullString - пустая строка пишется как NULL
func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
