package nbstat

import (
	fet "github.com/glycerine/golang-fisher-exact"
)

// FisherQuickTest is the fast screen for unreplicated or very shallow data:
// pool the counts within each group and test the 2x2 table of this gene's
// reads versus all other reads in each group's pooled library. It ignores
// biological variability entirely (its dispersion is implicitly zero), so it
// is anticonservative with replicates; the NB tests are preferred when
// replicates exist.
func FisherQuickTest(geneA, restA, geneB, restB int) float64 {
	_, _, _, twop := fet.FisherExactTest(geneA, restA, geneB, restB)

	return twop
}
