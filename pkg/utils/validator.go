package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_/-]{1,30}$`)
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateSymbol проверяет формат торгового символа (BTCUSDT, BTC-USDT, BTC/USDT...).
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) || strings.ContainsAny(symbol, " \t") {
		return fmt.Errorf("invalid symbol format: %q", symbol)
	}
	return nil
}

// NormalizeSymbol приводит символ к каноническому виду: верхний регистр,
// без разделителей (BTC-USDT / btc_usdt / BTC/USDT -> BTCUSDT).
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	s = strings.NewReplacer("-", "", "_", "", "/", "").Replace(s)
	return s
}

// ExtractBaseCurrency возвращает базовую валюту символа относительно quote.
// Например ExtractBaseCurrency("BTCUSDT", "USDT") -> "BTC".
func ExtractBaseCurrency(symbol, quote string) string {
	norm := NormalizeSymbol(symbol)
	q := strings.ToUpper(quote)
	if strings.HasSuffix(norm, q) {
		return strings.TrimSuffix(norm, q)
	}
	return norm
}

// ExtractQuoteCurrency возвращает quote-валюту символа, если она входит в
// список известных quote-валют (при нескольких совпадениях выбирается самая длинная).
func ExtractQuoteCurrency(symbol string, knownQuotes []string) string {
	norm := NormalizeSymbol(symbol)
	best := ""
	for _, q := range knownQuotes {
		qu := strings.ToUpper(q)
		if strings.HasSuffix(norm, qu) && len(qu) > len(best) {
			best = qu
		}
	}
	return best
}

// ValidateSpread проверяет, что спред положителен.
func ValidateSpread(spread float64) error {
	if spread <= 0 {
		return fmt.Errorf("spread must be positive, got %f", spread)
	}
	return nil
}

// ValidateVolume проверяет, что объём положителен.
func ValidateVolume(volume float64) error {
	if volume <= 0 {
		return fmt.Errorf("volume must be positive, got %f", volume)
	}
	return nil
}

// ValidateNOrders проверяет, что количество уровней стакана не меньше 1.
func ValidateNOrders(n int) error {
	if n < 1 {
		return fmt.Errorf("n_orders must be >= 1, got %d", n)
	}
	return nil
}

// ValidatePercentage проверяет, что значение лежит в диапазоне [0, 100].
func ValidatePercentage(pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("percentage must be within [0, 100], got %f", pct)
	}
	return nil
}

// ValidateEmail проверяет базовый формат email-адреса.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}

// ValidateAPIKey проверяет, что ключ API не пуст и не содержит пробелов.
func ValidateAPIKey(key string) error {
	return validateCredentialField(key, "api key")
}

// ValidateAPISecret проверяет секретный ключ API тем же правилом, что и ключ.
func ValidateAPISecret(secret string) error {
	return validateCredentialField(secret, "api secret")
}

// ValidateAPIPassphrase проверяет passphrase (требуется некоторыми площадками, например OKX).
// Пустая passphrase допустима — не все площадки её требуют.
func ValidateAPIPassphrase(passphrase string) error {
	if passphrase == "" {
		return nil
	}
	return validateCredentialField(passphrase, "api passphrase")
}

func validateCredentialField(value, label string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	if strings.ContainsAny(value, " \t\n") {
		return fmt.Errorf("%s contains whitespace", label)
	}
	return nil
}

// KnownVenues перечисляет встроенно поддерживаемые торговые площадки.
var KnownVenues = []string{"bybit", "bitget", "okx", "gate", "htx", "bingx"}

// ValidateVenue проверяет, что имя площадки входит в KnownVenues.
func ValidateVenue(name string) error {
	n := strings.ToLower(name)
	for _, v := range KnownVenues {
		if v == n {
			return nil
		}
	}
	return fmt.Errorf("unsupported venue: %q", name)
}

// NormalizeVenue приводит имя площадки к нижнему регистру без пробелов.
func NormalizeVenue(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsValidSymbol - удобная bool-обёртка над ValidateSymbol.
func IsValidSymbol(symbol string) bool { return ValidateSymbol(symbol) == nil }

// IsValidEmail - удобная bool-обёртка над ValidateEmail.
func IsValidEmail(email string) bool { return ValidateEmail(email) == nil }

// IsValidAPIKey - удобная bool-обёртка над ValidateAPIKey.
func IsValidAPIKey(key string) bool { return ValidateAPIKey(key) == nil }

// IsValidVenue - удобная bool-обёртка над ValidateVenue.
func IsValidVenue(name string) bool { return ValidateVenue(name) == nil }

// GetSupportedVenues возвращает копию списка поддерживаемых площадок.
func GetSupportedVenues() []string {
	out := make([]string, len(KnownVenues))
	copy(out, KnownVenues)
	return out
}

// ValidationErrors собирает несколько ошибок валидации в одну.
type ValidationErrors struct {
	Errors []error
}

// AddError добавляет ошибку в набор, если она не nil.
func (v *ValidationErrors) AddError(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// HasErrors сообщает, содержит ли набор хотя бы одну ошибку.
func (v *ValidationErrors) HasErrors() bool { return len(v.Errors) > 0 }

// Error реализует интерфейс error, объединяя все сообщения через "; ".
func (v *ValidationErrors) Error() string {
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
