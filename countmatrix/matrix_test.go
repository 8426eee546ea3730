package countmatrix

import (
	"math"
	"strings"
	"testing"
)

func TestLibrarySizes(t *testing.T) {
	got := testMatrix().LibrarySizes()
	expected := []float64{5, 7, 9}

	for j := range expected {
		if got[j] != expected[j] {
			t.Fatalf("got %v, expected %v", got, expected)
		}
	}
}

func TestCPM(t *testing.T) {
	m := &Matrix{
		Genes:   []string{"g1", "g2"},
		Samples: []string{"s1", "s2"},
		Counts: [][]float64{
			{2, 30},
			{8, 70},
		},
	}

	cpm, err := m.CPM(nil)
	if err != nil {
		t.Fatal(err)
	}

	// Library sizes are 10 and 100
	if cpm.Counts[0][0] != 2e5 || cpm.Counts[1][0] != 8e5 {
		t.Fatalf("sample 1 CPM: %v", cpm.Counts)
	}
	if cpm.Counts[0][1] != 3e5 || cpm.Counts[1][1] != 7e5 {
		t.Fatalf("sample 2 CPM: %v", cpm.Counts)
	}

	// The input must be untouched
	if m.Counts[0][0] != 2 {
		t.Fatal("CPM modified its input")
	}
}

func TestCPMRejectsEmptyLibrary(t *testing.T) {
	m := &Matrix{
		Genes:   []string{"g1"},
		Samples: []string{"s1", "s2"},
		Counts:  [][]float64{{5, 0}},
	}

	if _, err := m.CPM(nil); err == nil {
		t.Fatal("expected an error for a zero library size")
	}
}

func TestLogCPM(t *testing.T) {
	m := &Matrix{
		Genes:   []string{"g1"},
		Samples: []string{"s1"},
		Counts:  [][]float64{{1}},
	}

	got, err := m.LogCPM(nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	// 1 count in a 1-read library is 1e6 CPM; log2(1e6+1)
	if expected := math.Log2(1e6 + 1); math.Abs(got.Counts[0][0]-expected) > 1e-12 {
		t.Fatalf("got %f, expected %f", got.Counts[0][0], expected)
	}
}

func TestWriteTSVRoundTrip(t *testing.T) {
	m := testMatrix()

	var sb strings.Builder
	if err := m.WriteTSV(&sb, '\t'); err != nil {
		t.Fatal(err)
	}

	back, err := Load(strings.NewReader(sb.String()), '\t')
	if err != nil {
		t.Fatal(err)
	}

	if back.NGenes() != m.NGenes() || back.NSamples() != m.NSamples() {
		t.Fatalf("round trip changed shape: %dx%d", back.NGenes(), back.NSamples())
	}
	for i := range m.Counts {
		for j := range m.Counts[i] {
			if back.Counts[i][j] != m.Counts[i][j] {
				t.Fatalf("round trip changed counts: %v vs %v", back.Counts, m.Counts)
			}
		}
	}
}
