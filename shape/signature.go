package shape

import "fmt"

// Signature pairs the input and output shapes of a pipeline.
type Signature struct {
	Source Shape
	Target Shape
}

func NewSignature(source, target Shape) Signature {
	return Signature{Source: source, Target: target}
}

func (s Signature) String() string {
	return fmt.Sprintf("%s -> %s", s.Source, s.Target)
}
