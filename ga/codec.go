// ABOUTME: Chromosome codecs mapping gene strings to problem phenotypes
// ABOUTME: Binary-fraction reals, real vectors, inclusion vectors and arc activation

package ga

import "fmt"

// Codec decodes a chromosome into a problem phenotype. Decode must be pure and total.
type Codec[P any] interface {
	Length() int
	Decode(c Chromosome) P
}

// FitnessFunc scores a chromosome; higher is better
type FitnessFunc func(Chromosome) float64

// Evaluator scores a decoded phenotype; higher is better
type Evaluator[P any] func(P) float64

// Compose builds a FitnessFunc from a codec and a phenotype evaluator
func Compose[P any](codec Codec[P], eval Evaluator[P]) FitnessFunc {
	return func(c Chromosome) float64 {
		return eval(codec.Decode(c))
	}
}

// binaryFraction reads bits most-significant first and returns d / (2^len - 1)
func binaryFraction(bits Chromosome) float64 {
	var d uint64
	for _, b := range bits {
		d <<= 1
		if b != 0 {
			d |= 1
		}
	}

	maxValue := uint64(1)<<uint(len(bits)) - 1
	if maxValue == 0 {
		return 0
	}

	return float64(d) / float64(maxValue)
}

// RealInterval decodes the whole chromosome as one real value in [Min, Max]
type RealInterval struct {
	Min  float64
	Max  float64
	Bits int
}

// Length returns the number of genes the codec consumes
func (r RealInterval) Length() int {
	return r.Bits
}

// Decode maps all-zero genes to Min and all-one genes to Max; monotonic in between
func (r RealInterval) Decode(c Chromosome) float64 {
	fraction := binaryFraction(c[:r.Bits])
	if fraction == 1 {
		return r.Max
	}

	return r.Min + (r.Max-r.Min)*fraction
}

// Validate checks that the interval is usable
func (r RealInterval) Validate() error {
	if r.Bits < 1 || r.Bits > 62 {
		return fmt.Errorf("real interval bits must be in [1, 62], got %d", r.Bits)
	}

	if !(r.Min < r.Max) {
		return fmt.Errorf("real interval requires min < max, got [%g, %g]", r.Min, r.Max)
	}

	return nil
}

// RealVector decodes Genes consecutive binary-fraction segments of Bits genes each
type RealVector struct {
	Genes int
	Bits  int
	Min   float64
	Max   float64
}

// Length returns Genes * Bits
func (r RealVector) Length() int {
	return r.Genes * r.Bits
}

// Decode returns one value per segment
func (r RealVector) Decode(c Chromosome) []float64 {
	segment := RealInterval{Min: r.Min, Max: r.Max, Bits: r.Bits}

	out := make([]float64, r.Genes)
	for i := range out {
		out[i] = segment.Decode(c[i*r.Bits : (i+1)*r.Bits])
	}

	return out
}

// Inclusion decodes each gene as an include/exclude flag
type Inclusion struct {
	Items int
}

// Length returns the number of items
func (in Inclusion) Length() int {
	return in.Items
}

// Decode reports item i selected when gene i is non-zero
func (in Inclusion) Decode(c Chromosome) []bool {
	out := make([]bool, in.Items)
	for i := range out {
		out[i] = c[i] != 0
	}

	return out
}

// Arc is a directed edge between two nodes
type Arc struct {
	From int
	To   int
}

// ArcActivation maps each gene to one ordered pair (i, j), i != j, enumerated
// row-major: i is the outer index, j the inner one, skipping j == i.
type ArcActivation struct {
	Nodes int
}

// Length returns Nodes * (Nodes - 1)
func (a ArcActivation) Length() int {
	return a.Nodes * (a.Nodes - 1)
}

// Arcs lists every candidate arc in gene order
func (a ArcActivation) Arcs() []Arc {
	arcs := make([]Arc, 0, a.Length())
	for i := range a.Nodes {
		for j := range a.Nodes {
			if i != j {
				arcs = append(arcs, Arc{From: i, To: j})
			}
		}
	}

	return arcs
}

// Position returns the gene index of arc (from, to)
func (a ArcActivation) Position(arc Arc) int {
	pos := arc.From * (a.Nodes - 1)
	if arc.To > arc.From {
		return pos + arc.To - 1
	}

	return pos + arc.To
}

// Decode returns the active arcs in gene order
func (a ArcActivation) Decode(c Chromosome) []Arc {
	var active []Arc

	for p, arc := range a.Arcs() {
		if c[p] != 0 {
			active = append(active, arc)
		}
	}

	return active
}

// Encode builds the chromosome activating exactly the given arcs
func (a ArcActivation) Encode(arcs []Arc) Chromosome {
	c := make(Chromosome, a.Length())
	for _, arc := range arcs {
		c[a.Position(arc)] = 1
	}

	return c
}
