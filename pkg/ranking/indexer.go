// Package ranking maps between global indices and (receiver, frequency)
// pairs and orders global indices by their signal-to-noise ratio.
//
// A global index enumerates all frequency bins of all receive channels:
//
//	globalIndex = receiver*frequencies + frequencyIndex
//
// Invalid arguments never panic; accessors return -1 instead.
package ranking

// Invalid is returned by index accessors for out-of-range arguments.
const Invalid = -1

// Indexer converts between global indices and receiver/frequency pairs.
type Indexer struct {
	Channels    int
	Frequencies int
}

// Count returns the number of global indices.
func (ix Indexer) Count() int {
	return ix.Channels * ix.Frequencies
}

// Valid reports whether g is a valid global index.
func (ix Indexer) Valid(g int) bool {
	return g >= 0 && g < ix.Count()
}

// GlobalIndex combines receiver and frequencyIndex.
func (ix Indexer) GlobalIndex(receiver, frequencyIndex int) int {
	if receiver < 0 || receiver >= ix.Channels || frequencyIndex < 0 || frequencyIndex >= ix.Frequencies {
		return Invalid
	}
	return receiver*ix.Frequencies + frequencyIndex
}

// Receiver returns the receive channel of g.
func (ix Indexer) Receiver(g int) int {
	if !ix.Valid(g) {
		return Invalid
	}
	return g / ix.Frequencies
}

// FrequencyIndex returns the frequency bin of g.
func (ix Indexer) FrequencyIndex(g int) int {
	if !ix.Valid(g) {
		return Invalid
	}
	return g % ix.Frequencies
}
