package pathfind

import "container/heap"

type searchNode struct {
	NodeID   string
	Priority float64
	GScore   float64
}

type priorityQueue struct {
	items []*searchNode
	index map[string]int
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{
		items: []*searchNode{},
		index: map[string]int{},
	}
}

func (pq priorityQueue) Len() int { return len(pq.items) }

func (pq priorityQueue) Less(i, j int) bool { return pq.items[i].Priority < pq.items[j].Priority }

func (pq priorityQueue) Swap(i, j int) {
	pq.index[pq.items[i].NodeID] = j
	pq.index[pq.items[j].NodeID] = i
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *priorityQueue) Push(x any) {
	node := x.(*searchNode)
	pq.items = append(pq.items, node)
	pq.index[node.NodeID] = len(pq.items) - 1
}

func (pq *priorityQueue) Pop() any {
	n := len(pq.items)
	last := pq.items[n-1]
	delete(pq.index, last.NodeID)
	pq.items = pq.items[:n-1]

	return last
}

func (pq *priorityQueue) Contains(nodeID string) bool {
	_, exists := pq.index[nodeID]
	return exists
}

func (pq *priorityQueue) Update(nodeID string, priority float64, gScore float64) {
	i, exists := pq.index[nodeID]
	if !exists {
		return
	}

	pq.items[i].Priority = priority
	pq.items[i].GScore = gScore

	heap.Fix(pq, i)
}
