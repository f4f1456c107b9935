package domain

import "fmt"

// Order returns the tasks reachable from root in an order where every
// dependency precedes its dependents.
//
// The walk is a depth-first post-order over DependsOn in declaration order,
// so the result is deterministic for a given registry. Sibling tasks with no
// relation to each other appear in whatever order the walk reaches them.
func Order(reg *Registry, root string) ([]TaskSpec, error) {
	if _, ok := reg.Get(root); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, root)
	}

	b := newOrderBuilder(reg)
	if err := b.visit(root); err != nil {
		return nil, err
	}
	return b.ordered, nil
}

// orderBuilder holds the traversal state of a single Order call.
type orderBuilder struct {
	reg     *Registry
	onPath  map[string]bool
	emitted map[string]bool
	ordered []TaskSpec
}

func newOrderBuilder(reg *Registry) *orderBuilder {
	return &orderBuilder{
		reg:     reg,
		onPath:  make(map[string]bool),
		emitted: make(map[string]bool),
	}
}

func (b *orderBuilder) visit(name string) error {
	if b.emitted[name] {
		return nil
	}

	task, _ := b.reg.Get(name)

	b.onPath[name] = true
	seen := make(map[string]bool, len(task.DependsOn))
	for _, dep := range task.DependsOn {
		if seen[dep] {
			continue
		}
		seen[dep] = true

		if b.onPath[dep] {
			return &CycleError{Task: name, Dependency: dep}
		}
		if err := b.visit(dep); err != nil {
			return err
		}
	}
	delete(b.onPath, name)

	b.emitted[name] = true
	b.ordered = append(b.ordered, task)
	return nil
}

// Dependents returns, for each task in tasks, the names of tasks in the same
// list that depend on it. Dependencies outside the list are ignored.
func Dependents(tasks []TaskSpec) map[string][]string {
	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.Name] = true
	}

	out := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		seen := make(map[string]bool, len(t.DependsOn))
		for _, dep := range t.DependsOn {
			if !present[dep] || seen[dep] {
				continue
			}
			seen[dep] = true
			out[dep] = append(out[dep], t.Name)
		}
	}
	return out
}
