package raster

// Unassigned marks a label grid cell that belongs to no cluster.
const Unassigned = -1

// Labels is a row-major width×height grid of cluster indices.
type Labels struct {
	Width  int
	Height int
	IDs    []int
}

// NewLabels allocates a grid with every cell Unassigned.
func NewLabels(width, height int) *Labels {
	l := &Labels{Width: width, Height: height, IDs: make([]int, width*height)}
	l.Reset()
	return l
}

// Reset marks every cell Unassigned.
func (l *Labels) Reset() {
	for i := range l.IDs {
		l.IDs[i] = Unassigned
	}
}

func (l *Labels) At(x, y int) int      { return l.IDs[y*l.Width+x] }
func (l *Labels) Set(x, y int, id int) { l.IDs[y*l.Width+x] = id }
