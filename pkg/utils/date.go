package utils

import (
	"fmt"
	"time"
)

// ParseDate interpreta uma data de calendário no formato YYYY-MM-DD
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("data não informada")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, err
	}

	return date, nil
}
