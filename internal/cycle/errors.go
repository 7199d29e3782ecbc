package cycle

import "fmt"

// UnknownSourceError сигнализирует, что запрошенный источник поиска не
// является вершиной графа (§4.5.6 Input constraint).
type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("cycle: source node %q not in graph", e.Source)
}
