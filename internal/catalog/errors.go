package catalog

import "fmt"

// ConfigurationError сигнализирует о несовместимом предикате: неизвестное
// свойство площадки или сравнение несовместимых типов. Не подлежит ретраю -
// требует правки конфигурации вызывающей стороны.
type ConfigurationError struct {
	Property string
	Message  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("catalog: configuration error on property %q: %s", e.Property, e.Message)
}

// UnknownSymbolError сигнализирует, что символ не найден ни в основной
// коллекции, ни в карте синглтонов.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("catalog: unknown symbol %q", e.Symbol)
}
