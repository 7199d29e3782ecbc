package models

import "strings"

// SplitSymbol разбирает символ вида "BASE/QUOTE" на валюты.
// Символ должен содержать ровно один разделитель "/"; регистр сохраняется как есть.
// Некорректные символы (например "FX_BTC_JPY") возвращают ok=false, не ошибку:
// вызывающий код пропускает такой рынок, не прерывая скан.
func SplitSymbol(symbol string) (base, quote string, ok bool) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// JoinSymbol собирает символ из базовой и котируемой валюты.
func JoinSymbol(base, quote string) string {
	return base + "/" + quote
}
