package catalog

import (
	"fmt"

	"arbitrage/internal/models"
)

// PropKind классифицирует значение свойства площадки или значение
// предиката для целей сопоставления.
type PropKind int

const (
	KindScalar PropKind = iota
	KindList
	KindMapping
)

// Predicate - условие фильтрации площадок в build_specific. Blacklist
// инвертирует итоговый результат сравнения (см. Match).
type Predicate struct {
	Property  string
	Value     interface{}
	Blacklist bool
}

// Match применяет предикат к площадке. Несовместимые типы или неизвестное
// свойство возвращают *ConfigurationError - такая ошибка не подлежит ретраю.
func (p Predicate) Match(v *models.Venue) (bool, error) {
	propVal, propKind, err := venueProperty(v, p.Property)
	if err != nil {
		return false, err
	}

	valKind, err := classifyValue(p.Property, p.Value)
	if err != nil {
		return false, err
	}

	base, err := compare(p.Property, propVal, propKind, p.Value, valKind)
	if err != nil {
		return false, err
	}

	return base != p.Blacklist, nil
}

func venueProperty(v *models.Venue, name string) (interface{}, PropKind, error) {
	switch name {
	case "id":
		return v.ID, KindScalar, nil
	case "name":
		return v.Name, KindScalar, nil
	case "countries":
		return v.Countries, KindList, nil
	case "currencies":
		return mapKeys(v.Currencies), KindList, nil
	case "symbols":
		return mapKeys(v.Symbols), KindList, nil
	case "capabilities":
		return v.Capabilities, KindMapping, nil
	default:
		return nil, 0, &ConfigurationError{Property: name, Message: "unknown venue property"}
	}
}

func classifyValue(property string, value interface{}) (PropKind, error) {
	switch value.(type) {
	case string:
		return KindScalar, nil
	case []string:
		return KindList, nil
	case map[string]bool:
		return KindMapping, nil
	default:
		return 0, &ConfigurationError{Property: property, Message: fmt.Sprintf("unsupported predicate value type %T", value)}
	}
}

func compare(property string, propVal interface{}, propKind PropKind, value interface{}, valKind PropKind) (bool, error) {
	switch {
	case propKind == KindScalar && valKind == KindScalar:
		return propVal.(string) == value.(string), nil

	case propKind == KindList && valKind == KindScalar:
		return contains(propVal.([]string), value.(string)), nil

	case propKind == KindList && valKind == KindList:
		propList := propVal.([]string)
		for _, want := range value.([]string) {
			if !contains(propList, want) {
				return false, nil
			}
		}
		return true, nil

	case propKind == KindMapping && valKind == KindMapping:
		propMap := propVal.(map[string]bool)
		for k, want := range value.(map[string]bool) {
			if got, ok := propMap[k]; !ok || got != want {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, &ConfigurationError{
			Property: property,
			Message:  "predicate value type incompatible with property type",
		}
	}
}

func contains(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

func mapKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
