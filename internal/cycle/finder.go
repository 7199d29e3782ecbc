package cycle

import (
	"arbitrage/internal/models"
	"arbitrage/pkg/utils"
)

// Finder лениво перечисляет отрицательные циклы, достижимые из source.
// Поиск конечен (ограничен числом рёбер графа), поэтому Next() гарантированно
// завершается - см. §4.5.6 termination guarantee.
type Finder struct {
	graph      *models.RateGraph
	uniquePath bool

	dist  map[string]float64
	pred  map[string]string
	edges []models.RateEdge

	edgeIdx int
	seen    map[string]struct{}
}

// NewFinder реализует C5 (плоский/мультиграфовый пре-пасс уже свёрнут
// вызывающей стороной через RateMultigraph.Reduce, если требовалось C4/§4.5.2).
// uniquePath включает unique-path mode (§4.5.3): цикл, задевающий уже
// засчитанную вершину, пропускается, а не возвращается повторно под другим
// углом обхода.
func NewFinder(g *models.RateGraph, source string, uniquePath bool) (*Finder, error) {
	if !g.HasNode(source) {
		if _, ok := hasAnyEdgeTouching(g, source); !ok {
			return nil, &UnknownSourceError{Source: source}
		}
	}

	nodes := nodeSet(g)
	edges := sortedEdges(g)
	dist, pred := relax(g, source, nodes, edges)

	return &Finder{
		graph:      g,
		uniquePath: uniquePath,
		dist:       dist,
		pred:       pred,
		edges:      edges,
		seen:       make(map[string]struct{}),
	}, nil
}

func hasAnyEdgeTouching(g *models.RateGraph, node string) (models.RateEdge, bool) {
	for _, e := range g.AllEdges() {
		if e.From == node || e.To == node {
			return e, true
		}
	}
	return models.RateEdge{}, false
}

// NewMultigraphFinder реализует многобиржевой пре-пасс (§4.5.2): прежде чем
// искать отрицательные циклы, параллельные рёбра между каждой парой вершин
// сводятся к минимальному по весу (RateMultigraph.Reduce), после чего поиск
// идёт как в плоском случае. Спецификация описывает это свёртывание как
// объединённое с первым проходом релаксации - в данной реализации это не
// требуется: relax сходится за |V|-1 проходов и от объединения с пре-пассом
// не зависит, поэтому свёртывание и релаксация выполняются отдельными, но
// эквивалентными по результату шагами.
func NewMultigraphFinder(mg *models.RateMultigraph, source string, uniquePath bool) (*Finder, error) {
	return NewFinder(mg.Reduce(), source, uniquePath)
}

// Next возвращает следующий найденный отрицательный цикл. ok=false означает,
// что кандидаты исчерпаны.
func (f *Finder) Next() (*models.Cycle, bool) {
	for f.edgeIdx < len(f.edges) {
		e := f.edges[f.edgeIdx]
		f.edgeIdx++

		if !violates(f.dist, e) {
			continue
		}

		candidate := clonePred(f.pred)
		candidate[e.To] = e.From

		nodes, edges, ok := retraceWithEdges(candidate, f.graph, e.To)
		if !ok {
			continue
		}

		if f.uniquePath && f.touchesSeen(nodes) {
			continue
		}
		if f.uniquePath {
			f.markSeen(nodes)
		}

		cyc := buildCycle(nodes, edges)
		return cyc, true
	}
	return nil, false
}

func (f *Finder) touchesSeen(nodes []string) bool {
	for _, n := range nodes {
		if _, ok := f.seen[n]; ok {
			return true
		}
	}
	return false
}

func (f *Finder) markSeen(nodes []string) {
	for _, n := range nodes {
		f.seen[n] = struct{}{}
	}
}

func buildCycle(nodes []string, edges []models.RateEdge) *models.Cycle {
	weightSum := 0.0
	for _, e := range edges {
		weightSum += e.Weight
	}
	return &models.Cycle{
		Nodes:      nodes,
		Edges:      edges,
		WeightSum:  weightSum,
		ProfitRate: utils.ProfitRatio(weightSum),
	}
}

// All собирает все циклы, которые Finder способен перечислить. Используется
// там, где ленивое потребление не нужно (тесты, небольшие графы).
func (f *Finder) All() []*models.Cycle {
	var out []*models.Cycle
	for {
		c, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}
