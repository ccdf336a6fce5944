package similarity

// Engine runs Pairs with an optional cap on the number of input vectors.
// The work is quadratic in the input size, so deployments serving large
// corpora set MaxVectors instead of letting a request run unbounded.
type Engine struct {
	MaxVectors int // 0 disables the cap
}

func NewEngine(maxVectors int) *Engine {
	return &Engine{MaxVectors: maxVectors}
}

func (e *Engine) Pairs(embeddings [][]float64) ([]Result, error) {
	if e.MaxVectors > 0 && len(embeddings) > e.MaxVectors {
		return nil, &TooManyVectorsError{Count: len(embeddings), Limit: e.MaxVectors}
	}
	return Pairs(embeddings)
}
