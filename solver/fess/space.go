package fess

// FeatureSpace maps feature vectors to the search-tree nodes projected
// onto them, and cycles over the non-empty cells round-robin so that
// every discovered feature region keeps receiving expansion turns.
type FeatureSpace struct {
	buckets map[FeatureVector][]int32
	order   []FeatureVector
	cursor  int
}

// NewFeatureSpace creates an empty feature space.
func NewFeatureSpace() *FeatureSpace {
	return &FeatureSpace{buckets: make(map[FeatureVector][]int32)}
}

// Add appends a node to the cell of its feature vector, registering the
// cell in insertion order when it becomes non-empty.
func (fs *FeatureSpace) Add(vec FeatureVector, node int32) {
	if _, exists := fs.buckets[vec]; !exists {
		fs.order = append(fs.order, vec)
	}
	fs.buckets[vec] = append(fs.buckets[vec], node)
}

// Cells returns the number of non-empty cells.
func (fs *FeatureSpace) Cells() int {
	return len(fs.order)
}

// NextCell returns the next cell round-robin with its registered nodes.
// ok is false when the space is empty.
func (fs *FeatureSpace) NextCell() (vec FeatureVector, nodes []int32, ok bool) {
	if len(fs.order) == 0 {
		return FeatureVector{}, nil, false
	}
	vec = fs.order[fs.cursor%len(fs.order)]
	fs.cursor++
	return vec, fs.buckets[vec], true
}

// Nodes returns the nodes registered in a cell.
func (fs *FeatureSpace) Nodes(vec FeatureVector) []int32 {
	return fs.buckets[vec]
}
