package assembler

import (
	"context"
	"fmt"

	"github.com/aescanero/dagoc/pkg/domain"
	"github.com/aescanero/dagoc/pkg/ports"
	"go.uber.org/zap"
)

// Assembler builds routing closures and installs graphs into an executor.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler creates a new assembler
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Routers returns one routing closure per node that has any edge. Nodes
// without edges are terminal and get no closure.
func (a *Assembler) Routers(spec *domain.GraphSpec) map[string]RouterFunc {
	routers := make(map[string]RouterFunc)
	for _, name := range spec.NodeNames() {
		if router, ok := RouterFor(spec.Nodes[name]); ok {
			routers[name] = router
		}
	}
	return routers
}

// RouterFor builds the routing closure of one node. The closure captures
// immutable edge targets only and is safe for concurrent use.
func RouterFor(node *domain.Node) (RouterFunc, bool) {
	if def := node.Edge(domain.ConditionDefault); !def.IsAbsent() {
		return func(State) Route { return To(def) }, true
	}

	success := node.Edge(domain.ConditionSuccess)
	failure := node.Edge(domain.ConditionFailure)
	if success.IsAbsent() && failure.IsAbsent() {
		return nil, false
	}

	return func(state State) Route {
		if succeeded(state) {
			return To(success)
		}
		return To(failure)
	}, true
}

// Install registers the graph's nodes, entry point and routing closures with
// builder. The graph must pass structural validation first.
func (a *Assembler) Install(ctx context.Context, spec *domain.GraphSpec, builder ports.GraphBuilder) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("failed to install graph: %w", err)
	}

	for _, name := range spec.NodeNames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := builder.AddNode(name, spec.Nodes[name].Clone()); err != nil {
			return fmt.Errorf("failed to add node %s: %w", name, err)
		}
	}

	if err := builder.SetEntryPoint(spec.EntryPoint); err != nil {
		return fmt.Errorf("failed to set entry point %s: %w", spec.EntryPoint, err)
	}

	routers := a.Routers(spec)
	for _, name := range spec.NodeNames() {
		router, ok := routers[name]
		if !ok {
			continue
		}
		destinations := spec.Nodes[name].Successors()
		if err := builder.AddConditionalEdges(name, router, destinations); err != nil {
			return fmt.Errorf("failed to add edges for node %s: %w", name, err)
		}
		a.logger.Debug("routing installed",
			zap.String("graph", spec.Name),
			zap.String("node", name),
			zap.Strings("destinations", destinations),
			zap.Bool("parallel", spec.Nodes[name].IsParallel()))
	}

	a.logger.Info("graph installed",
		zap.String("graph", spec.Name),
		zap.String("entry_point", spec.EntryPoint),
		zap.Int("nodes", len(spec.Nodes)),
		zap.Int("routers", len(routers)))
	return nil
}
