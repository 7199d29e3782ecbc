package models

// RateMultigraph - межбиржевой граф (C4): между одной и той же парой валют
// может существовать несколько параллельных рёбер, по одному на каждую
// площадку, где торгуется символ. Поиск цикла не умеет работать с
// параллельными рёбрами напрямую - перед передачей в finder граф должен
// пройти Reduce() (§4.5.2: multigraph pre-pass).
type RateMultigraph struct {
	adj map[string]map[string][]RateEdge
}

// NewRateMultigraph создаёт пустой межбиржевой граф.
func NewRateMultigraph() *RateMultigraph {
	return &RateMultigraph{adj: make(map[string]map[string][]RateEdge)}
}

// AddEdge добавляет параллельное ребро From->To, не заменяя уже существующие.
func (g *RateMultigraph) AddEdge(e RateEdge) {
	if g.adj[e.From] == nil {
		g.adj[e.From] = make(map[string][]RateEdge)
	}
	g.adj[e.From][e.To] = append(g.adj[e.From][e.To], e)
}

// Parallel возвращает все параллельные рёбра From->To.
func (g *RateMultigraph) Parallel(from, to string) []RateEdge {
	return g.adj[from][to]
}

// Nodes возвращает все вершины, встречавшиеся как источник хотя бы одного ребра.
func (g *RateMultigraph) Nodes() []string {
	nodes := make([]string, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	return nodes
}

// Reduce схлопывает параллельные рёбра в единый RateGraph, оставляя на
// каждой паре (from, to) ребро с минимальным весом - это ребро будет
// наиболее выгодным переходом и единственным, какое увидит поиск цикла.
// При равенстве весов побеждает ребро, встреченное первым (детерминировано
// по порядку обхода площадок в builder'е).
func (g *RateMultigraph) Reduce() *RateGraph {
	reduced := NewRateGraph()
	for _, tos := range g.adj {
		for _, edges := range tos {
			if len(edges) == 0 {
				continue
			}
			best := edges[0]
			for _, e := range edges[1:] {
				if e.Weight < best.Weight {
					best = e
				}
			}
			reduced.AddEdge(best)
		}
	}
	return reduced
}
