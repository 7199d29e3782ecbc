package cycle

import (
	"sort"

	"arbitrage/internal/models"
)

// nodeSet возвращает множество всех вершин графа, встречающихся либо
// источником, либо назначением хотя бы одного ребра. models.RateGraph.Nodes
// перечисляет только вершины-источники, из-за чего валюта, являющаяся
// исключительно "тупиковой" (только To, без исходящих рёбер), выпала бы
// из инициализации Беллмана-Форда.
func nodeSet(g *models.RateGraph) []string {
	seen := make(map[string]struct{})
	for _, e := range g.AllEdges() {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	nodes := make([]string, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// sortedEdges возвращает все рёбра графа в детерминированном порядке
// (по From, затем To, затем Venue), чтобы обход кандидатов на отрицательный
// цикл не зависел от порядка итерации по map.
func sortedEdges(g *models.RateGraph) []models.RateEdge {
	edges := g.AllEdges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Venue < edges[j].Venue
	})
	return edges
}

const inf = 1e18

// relax выполняет |V|-1 проходов релаксации Беллмана-Форда от source и
// возвращает итоговые расстояния и дерево предшественников.
func relax(g *models.RateGraph, source string, nodes []string, edges []models.RateEdge) (map[string]float64, map[string]string) {
	dist := make(map[string]float64, len(nodes))
	pred := make(map[string]string, len(nodes))
	for _, n := range nodes {
		dist[n] = inf
	}
	dist[source] = 0

	passes := len(nodes) - 1
	if passes < 0 {
		passes = 0
	}
	for i := 0; i < passes; i++ {
		changed := false
		for _, e := range edges {
			if dist[e.From] == inf {
				continue
			}
			if cand := dist[e.From] + e.Weight; cand < dist[e.To] {
				dist[e.To] = cand
				pred[e.To] = e.From
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return dist, pred
}

// clonePred делает неглубокую копию дерева предшественников для независимого
// поиска одного цикла, не затрагивая общее дерево и другие кандидатов.
func clonePred(pred map[string]string) map[string]string {
	cp := make(map[string]string, len(pred))
	for k, v := range pred {
		cp[k] = v
	}
	return cp
}

// retraceWithEdges идёт назад по дереву предшественников от v, пока не
// встретит повторную вершину, затем возвращает цикл в прямом порядке обхода
// (вершины и соответствующие им рёбра). pred[v] должен быть выставлен
// вызывающей стороной на нарушившее неравенство треугольника ребро (u,v) -
// без этого обратный обход не дойдёт до самого нарушения, так как pred
// отражает уже релаксированное, ацикличное дерево кратчайших путей.
func retraceWithEdges(pred map[string]string, g *models.RateGraph, v string) ([]string, []models.RateEdge, bool) {
	walk := []string{v}
	pos := map[string]int{v: 0}

	cur := v
	for {
		prev, ok := pred[cur]
		if !ok {
			return nil, nil, false
		}
		if idx, seen := pos[prev]; seen {
			cycleNodes := append([]string{}, walk[idx:]...)
			cycleNodes = append(cycleNodes, prev)
			reverse(cycleNodes)

			edges := make([]models.RateEdge, 0, len(cycleNodes)-1)
			for i := 0; i < len(cycleNodes)-1; i++ {
				e, ok := g.Edge(cycleNodes[i], cycleNodes[i+1])
				if !ok {
					return nil, nil, false
				}
				edges = append(edges, e)
			}
			return cycleNodes, edges, true
		}
		pos[prev] = len(walk)
		walk = append(walk, prev)
		cur = prev

		if len(walk) > len(pred)+1 {
			// дерево предшественников не должно порождать путь длиннее
			// числа известных вершин; защита от некорректного pred.
			return nil, nil, false
		}
	}
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// violates проверяет, нарушает ли ребро уже релаксированное неравенство
// треугольника - то есть маркер присутствия отрицательного цикла,
// достижимого через это ребро.
func violates(dist map[string]float64, e models.RateEdge) bool {
	from, ok := dist[e.From]
	if !ok || from == inf {
		return false
	}
	to, ok := dist[e.To]
	if !ok {
		to = inf
	}
	return from+e.Weight < to
}
