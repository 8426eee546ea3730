package countmatrix

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	input := "gene\ts1\ts2\ts3\n" +
		"ACTB\t10\t20\t30\n" +
		"GAPDH\t0\t5\t1\n"

	m, err := Load(strings.NewReader(input), '\t')
	if err != nil {
		t.Fatal(err)
	}

	if m.NGenes() != 2 || m.NSamples() != 3 {
		t.Fatalf("got %d genes x %d samples", m.NGenes(), m.NSamples())
	}
	if m.Genes[0] != "ACTB" || m.Samples[2] != "s3" {
		t.Fatalf("unexpected labels: %v %v", m.Genes, m.Samples)
	}
	if m.Counts[1][1] != 5 {
		t.Fatalf("got count %f, expected 5", m.Counts[1][1])
	}
}

func TestLoadComma(t *testing.T) {
	input := "gene,s1,s2\nACTB,1,2\n"

	m, err := Load(strings.NewReader(input), ',')
	if err != nil {
		t.Fatal(err)
	}
	if m.Counts[0][1] != 2 {
		t.Fatalf("got %f", m.Counts[0][1])
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	for _, v := range []struct {
		name  string
		input string
	}{
		{"duplicate gene", "gene\ts1\nACTB\t1\nACTB\t2\n"},
		{"negative count", "gene\ts1\nACTB\t-1\n"},
		{"fractional count", "gene\ts1\nACTB\t1.5\n"},
		{"non-numeric count", "gene\ts1\nACTB\tNA\n"},
		{"no samples", "gene\nACTB\n"},
		{"no genes", "gene\ts1\n"},
	} {
		if _, err := Load(strings.NewReader(v.input), '\t'); err == nil {
			t.Fatalf("%s: expected an error", v.name)
		}
	}
}

func TestReadSampleList(t *testing.T) {
	got, err := ReadSampleList(strings.NewReader("s1\n\n  s2\ns3\n"))
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"s1", "s2", "s3"}
	if len(got) != len(expected) {
		t.Fatalf("got %v", got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("got %v, expected %v", got, expected)
		}
	}
}

func TestLoadPhenotypes(t *testing.T) {
	input := "sample,condition\ns1,control\ns2,treated\n"

	got, err := LoadPhenotypes(strings.NewReader(input), ',')
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 || got[0].Name != "s1" || got[1].Condition != "treated" {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadPhenotypesMissingCondition(t *testing.T) {
	input := "sample,condition\ns1,\n"

	if _, err := LoadPhenotypes(strings.NewReader(input), ','); err == nil {
		t.Fatal("expected an error for a blank condition")
	}
}
