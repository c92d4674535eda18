package nn

// Progress reports how far a training run has advanced.
type Progress struct {
	Iteration int // Examples processed so far
	Total     int // Examples in the run
}

// Done reports whether the run has processed every example.
func (p Progress) Done() bool {
	return p.Iteration >= p.Total
}

// ProgressObserver receives training progress.
//
// OnProgress is called synchronously from the training loop and must return
// quickly. It has no way to influence training.
type ProgressObserver interface {
	OnProgress(p Progress)
}

// ProgressFunc adapts a plain function to ProgressObserver.
type ProgressFunc func(p Progress)

// OnProgress calls f(p).
func (f ProgressFunc) OnProgress(p Progress) {
	f(p)
}

// ChannelObserver forwards progress to a channel the caller consumes.
//
// Sends never block: when the channel is full the report is dropped.
type ChannelObserver struct {
	ch chan<- Progress
}

// NewChannelObserver returns an observer that publishes to ch.
func NewChannelObserver(ch chan<- Progress) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnProgress publishes p if the channel has room.
func (o *ChannelObserver) OnProgress(p Progress) {
	select {
	case o.ch <- p:
	default:
	}
}

func (n *Network) report(p Progress) {
	if n.observer != nil {
		n.observer.OnProgress(p)
	}
}
