package workflow

import (
	"sync"

	"github.com/agentkit/hookflow/corerr"
)

// NodeStatus is a DAG node's scheduling state.
type NodeStatus int

const (
	NodePending NodeStatus = iota
	NodeRunning
	NodeCompleted
	NodeFailed
	NodeSkipped
)

// DAGNode is one step's scheduling record inside a DAG.
type DAGNode struct {
	ID           string
	Dependencies []string
	Dependents   []string
	Status       NodeStatus
}

// DAG models the depends_on declarations of a parallel step's children as
// a directed acyclic graph. The parallel executor validates it before
// scheduling and uses its execution levels to batch steps that may run
// concurrently.
type DAG struct {
	mu    sync.RWMutex
	nodes map[string]*DAGNode
}

// BuildDAG constructs a DAG from a step list's DependsOn declarations.
func BuildDAG(steps []StepDefinition) *DAG {
	d := &DAG{nodes: make(map[string]*DAGNode, len(steps))}
	for _, s := range steps {
		deps := append([]string{}, s.DependsOn...)
		d.nodes[s.ID] = &DAGNode{ID: s.ID, Dependencies: deps}
	}
	d.rebuildDependents()
	return d
}

func (d *DAG) rebuildDependents() {
	for _, n := range d.nodes {
		n.Dependents = nil
	}
	for id, n := range d.nodes {
		for _, dep := range n.Dependencies {
			if depNode, ok := d.nodes[dep]; ok {
				depNode.Dependents = append(depNode.Dependents, id)
			}
		}
	}
}

// Validate rejects cycles and references to steps that are not in the
// graph.
func (d *DAG) Validate() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for id, n := range d.nodes {
		for _, dep := range n.Dependencies {
			if _, ok := d.nodes[dep]; !ok {
				return corerr.New("DAG.Validate", corerr.ErrInvalidExpression, id, "step depends on unknown step "+dep)
			}
		}
	}

	visited := map[string]bool{}
	onStack := map[string]bool{}
	for id := range d.nodes {
		if !visited[id] {
			if d.hasCycle(id, visited, onStack) {
				return corerr.New("DAG.Validate", corerr.ErrInvalidExpression, id, "step dependencies contain a cycle")
			}
		}
	}
	return nil
}

func (d *DAG) hasCycle(id string, visited, onStack map[string]bool) bool {
	visited[id] = true
	onStack[id] = true
	for _, dep := range d.nodes[id].Dependents {
		if !visited[dep] {
			if d.hasCycle(dep, visited, onStack) {
				return true
			}
		} else if onStack[dep] {
			return true
		}
	}
	onStack[id] = false
	return false
}

// ExecutionLevels groups node ids into waves: every node in a level
// depends only on nodes in earlier levels, so one level's members may run
// concurrently.
func (d *DAG) ExecutionLevels() [][]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var levels [][]string
	placed := map[string]bool{}
	for len(placed) < len(d.nodes) {
		var level []string
		for id, n := range d.nodes {
			if placed[id] {
				continue
			}
			ready := true
			for _, dep := range n.Dependencies {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			break
		}
		for _, id := range level {
			placed[id] = true
		}
		levels = append(levels, level)
	}
	return levels
}

// TopologicalOrder returns node ids in a dependency-respecting order via
// Kahn's algorithm.
func (d *DAG) TopologicalOrder() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	inDegree := make(map[string]int, len(d.nodes))
	for id, n := range d.nodes {
		inDegree[id] = len(n.Dependencies)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, dep := range d.nodes[cur].Dependents {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	return order
}

// MarkStatus records a node's scheduling outcome. Marking a node failed
// cascades NodeSkipped to its still-pending dependents.
func (d *DAG) MarkStatus(id string, status NodeStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	if !ok {
		return
	}
	n.Status = status
	if status == NodeFailed {
		d.skipDependents(id)
	}
}

func (d *DAG) skipDependents(id string) {
	for _, dep := range d.nodes[id].Dependents {
		if n := d.nodes[dep]; n != nil && n.Status == NodePending {
			n.Status = NodeSkipped
			d.skipDependents(dep)
		}
	}
}

// Status returns a node's current status.
func (d *DAG) Status(id string) (NodeStatus, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	if !ok {
		return NodePending, false
	}
	return n.Status, true
}
