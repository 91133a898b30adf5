package descriptor

import (
	"strings"

	"github.com/matzehuels/distmeta/pkg/dag"
)

// Node ID prefixes; the distribution node uses the bare name.
const (
	RequirementPrefix = "req:"
	PackagePrefix     = "pkg:"
)

// Graph lays the descriptor out as a DAG. The distribution sits in row 0
// with edges to each requirement (edge meta "constraint") and to each
// top-level package; dotted packages hang below their parents.
func Graph(d *Descriptor) *dag.DAG {
	g := dag.New(dag.Metadata{"name": d.Name, "version": d.Version})

	_ = g.AddNode(dag.Node{
		ID:   d.Name,
		Row:  0,
		Kind: dag.NodeKindDistribution,
		Meta: dag.Metadata{"version": d.Version, "license": d.License, "summary": d.Description},
	})

	for _, r := range d.InstallRequires {
		id := RequirementPrefix + r.Key()
		if err := g.AddNode(dag.Node{
			ID:    id,
			Label: r.Name,
			Row:   1,
			Kind:  dag.NodeKindRequirement,
			Meta:  dag.Metadata{"constraint": r.Constraint()},
		}); err != nil {
			continue
		}
		_ = g.AddEdge(dag.Edge{From: d.Name, To: id, Meta: dag.Metadata{"constraint": r.Constraint()}})
	}

	declared := make(map[string]bool, len(d.Packages))
	for _, p := range d.Packages {
		declared[p] = true
	}
	for _, p := range d.Packages {
		kind := dag.NodeKindPackage
		if d.IsNamespace(p) {
			kind = dag.NodeKindNamespace
		}
		_ = g.AddNode(dag.Node{
			ID:    PackagePrefix + p,
			Label: p,
			Row:   packageRow(p, declared),
			Kind:  kind,
		})
	}
	for _, p := range d.Packages {
		from := d.Name
		if parent, ok := packageParent(p, declared); ok {
			from = PackagePrefix + parent
		}
		_ = g.AddEdge(dag.Edge{From: from, To: PackagePrefix + p})
	}
	return g
}

func packageParent(p string, declared map[string]bool) (string, bool) {
	i := strings.LastIndexByte(p, '.')
	if i <= 0 || !declared[p[:i]] {
		return "", false
	}
	return p[:i], true
}

// packageRow is one below the nearest declared ancestor chain; packages
// whose parent is missing attach directly to the distribution.
func packageRow(p string, declared map[string]bool) int {
	row := 1
	for {
		parent, ok := packageParent(p, declared)
		if !ok {
			return row
		}
		row++
		p = parent
	}
}
