package nn

// LayerState holds the parameters of one layer as plain rows.
type LayerState struct {
	Weights [][]float64 `json:"weights"` // [size][prevSize]
	Bias    [][]float64 `json:"bias"`    // [size][1]
}

// Snapshot is a self-contained copy of everything needed to rebuild an
// equivalent network. It shares no memory with the network it came from.
type Snapshot struct {
	Structure     []int         `json:"structure"`
	LearningRate  float64       `json:"learningRate"`
	Normalization Normalization `json:"normalization"`
	Layers        []LayerState  `json:"layers"`
}

// Save captures the current network state.
func (n *Network) Save() Snapshot {
	layers := make([]LayerState, len(n.layers))
	for i, l := range n.layers {
		layers[i] = l.State()
	}
	return Snapshot{
		Structure:     n.Structure(),
		LearningRate:  n.learningRate,
		Normalization: n.normalization,
		Layers:        layers,
	}
}

// Config returns a network configuration that restores the snapshot.
func (s Snapshot) Config() Config {
	return Config{
		Structure:     s.Structure,
		LearningRate:  s.LearningRate,
		Normalization: s.Normalization,
		Layers:        s.Layers,
	}
}

// FromSnapshot rebuilds a network from a snapshot. Shapes are validated
// against the snapshot structure.
func FromSnapshot(s Snapshot) (*Network, error) {
	return New(s.Config())
}
