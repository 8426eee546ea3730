package countmatrix

import "fmt"

// Align subsets and reorders the matrix columns to match the order of the
// phenotype rows and returns the condition label for each resulting column.
// Every phenotype sample must exist in the matrix; matrix columns absent from
// the phenotypes are dropped. A phenotype sample with no matching column is
// an error rather than a silent skip, because a misaligned design silently
// inverts fold changes.
func Align(m *Matrix, phenotypes []Sample) (*Matrix, []string, error) {
	if len(phenotypes) == 0 {
		return nil, nil, fmt.Errorf("countmatrix: no phenotype rows")
	}
	if len(phenotypes) > m.NSamples() {
		return nil, nil, fmt.Errorf("countmatrix: %d phenotype rows but only %d matrix columns", len(phenotypes), m.NSamples())
	}

	colIdx := make(map[string]int, m.NSamples())
	for j, name := range m.Samples {
		if _, exists := colIdx[name]; exists {
			return nil, nil, fmt.Errorf("countmatrix: duplicate sample column %q", name)
		}
		colIdx[name] = j
	}

	order := make([]int, 0, len(phenotypes))
	conditions := make([]string, 0, len(phenotypes))
	seen := make(map[string]struct{}, len(phenotypes))
	for _, ph := range phenotypes {
		if _, exists := seen[ph.Name]; exists {
			return nil, nil, fmt.Errorf("countmatrix: duplicate phenotype sample %q", ph.Name)
		}
		seen[ph.Name] = struct{}{}

		j, exists := colIdx[ph.Name]
		if !exists {
			return nil, nil, fmt.Errorf("countmatrix: phenotype sample %q has no matching count column", ph.Name)
		}
		order = append(order, j)
		conditions = append(conditions, ph.Condition)
	}

	out := &Matrix{
		Genes:   append([]string{}, m.Genes...),
		Samples: make([]string, len(order)),
		Counts:  make([][]float64, m.NGenes()),
	}
	for newJ, oldJ := range order {
		out.Samples[newJ] = m.Samples[oldJ]
	}
	for i, row := range m.Counts {
		newRow := make([]float64, len(order))
		for newJ, oldJ := range order {
			newRow[newJ] = row[oldJ]
		}
		out.Counts[i] = newRow
	}

	return out, conditions, nil
}

// GroupIndices splits column indices by condition label, preserving first-seen
// condition order. Exactly two conditions are required for pairwise testing.
func GroupIndices(conditions []string) (labels []string, groups [][]int) {
	byLabel := make(map[string]int)
	for j, cond := range conditions {
		gi, exists := byLabel[cond]
		if !exists {
			gi = len(labels)
			byLabel[cond] = gi
			labels = append(labels, cond)
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], j)
	}

	return labels, groups
}
