package models

// RateGraph - однобиржевой граф обмена: вершины - валюты, рёбра - рынки.
// Хранится как список смежности From -> To -> ребро; для одного упорядоченного
// от/до на однобиржевом графе существует не более одного ребра (в отличие от
// RateMultigraph, где их может быть несколько - по одному на площадку).
type RateGraph struct {
	adj map[string]map[string]RateEdge
}

// NewRateGraph создаёт пустой граф.
func NewRateGraph() *RateGraph {
	return &RateGraph{adj: make(map[string]map[string]RateEdge)}
}

// AddEdge добавляет или заменяет ребро From->To.
func (g *RateGraph) AddEdge(e RateEdge) {
	if g.adj[e.From] == nil {
		g.adj[e.From] = make(map[string]RateEdge)
	}
	g.adj[e.From][e.To] = e
}

// Nodes возвращает список всех вершин графа (валют), встречавшихся как
// источник хотя бы одного ребра.
func (g *RateGraph) Nodes() []string {
	nodes := make([]string, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	return nodes
}

// HasNode проверяет наличие вершины среди источников рёбер.
func (g *RateGraph) HasNode(node string) bool {
	_, ok := g.adj[node]
	return ok
}

// EdgesFrom возвращает все исходящие рёбра вершины node.
func (g *RateGraph) EdgesFrom(node string) []RateEdge {
	edges := make([]RateEdge, 0, len(g.adj[node]))
	for _, e := range g.adj[node] {
		edges = append(edges, e)
	}
	return edges
}

// Edge возвращает ребро From->To, если оно существует.
func (g *RateGraph) Edge(from, to string) (RateEdge, bool) {
	e, ok := g.adj[from][to]
	return e, ok
}

// AllEdges возвращает все рёбра графа в произвольном порядке.
func (g *RateGraph) AllEdges() []RateEdge {
	var edges []RateEdge
	for _, to := range g.adj {
		for _, e := range to {
			edges = append(edges, e)
		}
	}
	return edges
}

// NodeCount возвращает число вершин графа.
func (g *RateGraph) NodeCount() int {
	return len(g.adj)
}
