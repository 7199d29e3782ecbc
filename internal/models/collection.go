package models

// Collection - результат каталогизации (C1): распределение символов по
// площадкам, на которых они торгуются. Multi содержит символы, доступные
// на двух и более площадках (кандидаты межбиржевого графа, C4); Singleton -
// символы, доступные ровно на одной (однобиржевой граф, C3). Ключи двух карт
// не пересекаются - это инвариант, проверяемый Validate.
type Collection struct {
	Multi     map[string][]string
	Singleton map[string]string
}

// NewCollection создаёт пустую коллекцию с инициализированными картами.
func NewCollection() *Collection {
	return &Collection{
		Multi:     make(map[string][]string),
		Singleton: make(map[string]string),
	}
}

// Add регистрирует, что symbol торгуется на venue. Вызывается по одному разу
// на пару (symbol, venue) в ходе обхода площадок в build_all/build_specific.
func (c *Collection) Add(symbol, venue string) {
	if existing, ok := c.Singleton[symbol]; ok {
		if existing == venue {
			return
		}
		delete(c.Singleton, symbol)
		c.Multi[symbol] = []string{existing, venue}
		return
	}
	if venues, ok := c.Multi[symbol]; ok {
		for _, v := range venues {
			if v == venue {
				return
			}
		}
		c.Multi[symbol] = append(venues, venue)
		return
	}
	c.Singleton[symbol] = venue
}

// Venues возвращает площадки, на которых торгуется symbol, в любом из двух
// разделов коллекции.
func (c *Collection) Venues(symbol string) []string {
	if venues, ok := c.Multi[symbol]; ok {
		return venues
	}
	if venue, ok := c.Singleton[symbol]; ok {
		return []string{venue}
	}
	return nil
}

// Validate проверяет инвариант непересечения ключей Multi и Singleton.
func (c *Collection) Validate() error {
	for symbol := range c.Multi {
		if _, ok := c.Singleton[symbol]; ok {
			return &CollectionInvariantError{Symbol: symbol}
		}
	}
	return nil
}

// CollectionInvariantError сообщает, что символ попал одновременно в Multi и Singleton.
type CollectionInvariantError struct {
	Symbol string
}

func (e *CollectionInvariantError) Error() string {
	return "symbol " + e.Symbol + " present in both multi and singleton collections"
}
