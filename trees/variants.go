package trees

import "fmt"

// Variant holds the observable state of one site: its position, the allele
// list (ancestral state first, then derived states in mutation order) and
// one allele index per sample node.
type Variant struct {
	Position  float64
	Alleles   []string
	Genotypes []int32
}

// Variants decodes the per-sample genotype at every site by applying
// mutations over the marginal tree at each site position. Samples are
// visited in node-id order.
func (ts *TableSet) Variants() ([]Variant, error) {
	samples := ts.Samples()
	numNodes := ts.Nodes.NumRows()

	// Mutations grouped by site; within a site, later rows are younger, so
	// the last mutation listed for a node is the one a sample below it sees.
	type siteMutations struct {
		byNode map[int32]int // mutation row
		order  []int         // all mutation rows for the site, in table order
	}
	perSite := make([]siteMutations, ts.Sites.NumRows())
	for i := range perSite {
		perSite[i].byNode = make(map[int32]int)
	}
	for m := 0; m < ts.Mutations.NumRows(); m++ {
		s := ts.Mutations.Site[m]
		if s < 0 || int(s) >= len(perSite) {
			return nil, fmt.Errorf("trees: mutation %d references site %d of %d", m, s, len(perSite))
		}
		perSite[s].byNode[ts.Mutations.Node[m]] = m
		perSite[s].order = append(perSite[s].order, m)
	}

	out := make([]Variant, ts.Sites.NumRows())
	for s := range out {
		pos := ts.Sites.Position[s]
		ancestral := string(Row(ts.Sites.AncestralState, ts.Sites.AncestralStateOffsets, s))

		alleles := []string{ancestral}
		index := map[string]int32{ancestral: 0}
		for _, m := range perSite[s].order {
			derived := string(Row(ts.Mutations.DerivedState, ts.Mutations.DerivedStateOffsets, m))
			if _, ok := index[derived]; !ok {
				index[derived] = int32(len(alleles))
				alleles = append(alleles, derived)
			}
		}

		// Parent lookup over the edges active at this position.
		parent := make([]int32, numNodes)
		for i := range parent {
			parent[i] = NullID
		}
		for e := 0; e < ts.Edges.NumRows(); e++ {
			if ts.Edges.Left[e] <= pos && pos < ts.Edges.Right[e] {
				parent[ts.Edges.Child[e]] = ts.Edges.Parent[e]
			}
		}

		genotypes := make([]int32, len(samples))
		for i, u := range samples {
			allele := int32(0)
			for v, steps := u, 0; v != NullID; v = parent[v] {
				if m, ok := perSite[s].byNode[v]; ok {
					derived := string(Row(ts.Mutations.DerivedState, ts.Mutations.DerivedStateOffsets, m))
					allele = index[derived]
					break
				}
				steps++
				if steps > numNodes {
					return nil, fmt.Errorf("trees: cycle in topology at position %v", pos)
				}
			}
			genotypes[i] = allele
		}
		out[s] = Variant{Position: pos, Alleles: alleles, Genotypes: genotypes}
	}
	return out, nil
}

// VariantsEqual reports whether two variant slices carry the same sites,
// allele lists and genotype calls.
func VariantsEqual(a, b []Variant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Position != b[i].Position {
			return false
		}
		if len(a[i].Alleles) != len(b[i].Alleles) {
			return false
		}
		for j := range a[i].Alleles {
			if a[i].Alleles[j] != b[i].Alleles[j] {
				return false
			}
		}
		if len(a[i].Genotypes) != len(b[i].Genotypes) {
			return false
		}
		for j := range a[i].Genotypes {
			if a[i].Genotypes[j] != b[i].Genotypes[j] {
				return false
			}
		}
	}
	return true
}
