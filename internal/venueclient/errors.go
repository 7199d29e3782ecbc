package venueclient

import "fmt"

// Kind классифицирует ошибку клиента площадки так, как это требуется
// политикам ядра (§7 таксономия ошибок).
type Kind int

const (
	// KindTransient - сетевой таймаут или 5xx; рынок/площадка отбрасывается на этот скан.
	KindTransient Kind = iota
	// KindRateLimited - площадка просит притормозить; back off & retry once, затем drop.
	KindRateLimited
	// KindNotAvailable - сервис недоступен (503-подобное состояние); трактуется как Transient.
	KindNotAvailable
	// KindUnknownMarket - площадка больше не листит символ; drop venue из этой возможности, re-resolve.
	KindUnknownMarket
	// KindAuthRefused - отказ авторизации; равнозначно PermanentVenueError, площадка удаляется из скана целиком.
	KindAuthRefused
	// KindMalformed - неразбираемый тикер (null bid, плохой сплит символа); skip market with log.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "Transient"
	case KindRateLimited:
		return "RateLimited"
	case KindNotAvailable:
		return "NotAvailable"
	case KindUnknownMarket:
		return "UnknownMarket"
	case KindAuthRefused:
		return "AuthRefused"
	case KindMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// VenueError - ошибка, пришедшая от клиента площадки, с классификацией,
// необходимой для решения о retry/drop в фетчере (C2) и сканере (C7).
type VenueError struct {
	Venue   string
	Kind    Kind
	Message string
	Err     error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Venue, e.Kind, e.Message)
}

func (e *VenueError) Unwrap() error {
	return e.Err
}

// IsRetryable сообщает, стоит ли фетчеру повторить запрос с откатом.
// Transient/RateLimited/NotAvailable допускают повтор; остальные - нет.
func IsRetryable(err error) bool {
	var ve *VenueError
	if !asVenueError(err, &ve) {
		return false
	}
	switch ve.Kind {
	case KindTransient, KindRateLimited, KindNotAvailable:
		return true
	default:
		return false
	}
}

// IsPermanent сообщает, должна ли площадка быть исключена из всего скана.
func IsPermanent(err error) bool {
	var ve *VenueError
	if !asVenueError(err, &ve) {
		return false
	}
	return ve.Kind == KindAuthRefused
}

// IsUnknownMarket сообщает, должен ли рынок быть исключён из конкретной
// возможности с последующим пересчётом (§4.6 Permanent error handling).
func IsUnknownMarket(err error) bool {
	var ve *VenueError
	if !asVenueError(err, &ve) {
		return false
	}
	return ve.Kind == KindUnknownMarket
}

func asVenueError(err error, target **VenueError) bool {
	ve, ok := err.(*VenueError)
	if ok {
		*target = ve
	}
	return ok
}
