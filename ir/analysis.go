package ir

// StreamVariableInfo describes one stream: a semantically tagged value that
// flows between pipeline stages.
//
// Internally a stream is a field of the per-stage streams struct; at the
// module interface it is a flat Input and/or Output variable.
type StreamVariableInfo struct {
	Name     string
	Semantic string
	Type     SymbolType

	Input  bool // read from the previous stage
	Output bool // written for the next stage
	Patch  bool // per-patch rather than per-vertex (tessellation only)

	// UsedThisStage is false for streams that only pass through.
	UsedThisStage bool

	// Field indices in the generated structs, -1 when absent.
	StreamStructFieldIndex int
	InputStructFieldIndex  int
	OutputStructFieldIndex int

	// Interface variables declared for the stream, 0 when absent.
	InputID  uint32
	OutputID uint32

	// Layout locations of user varyings, nil for built-ins.
	InputLocation  *uint32
	OutputLocation *uint32

	// Interface-side types of the declared variables.
	InputType  SymbolType
	OutputType SymbolType
}

// NewStreamVariableInfo creates a stream with no fields or variables assigned.
func NewStreamVariableInfo(name, semantic string, t SymbolType) *StreamVariableInfo {
	return &StreamVariableInfo{
		Name:                   name,
		Semantic:               semantic,
		Type:                   t,
		UsedThisStage:          true,
		StreamStructFieldIndex: -1,
		InputStructFieldIndex:  -1,
		OutputStructFieldIndex: -1,
	}
}

// StreamBinding pairs a stream with the interface variable that carries it.
// InterfaceType may differ from the stream's internal type; values are
// always converted between the two.
type StreamBinding struct {
	Info          *StreamVariableInfo
	ID            uint32
	InterfaceType SymbolType
}

// GlobalUsage is one global variable, constant buffer or resource seen by
// the analysis pass.
type GlobalUsage struct {
	Name string
	ID   uint32
	// Type is the value type; the global itself is a pointer to it.
	Type          SymbolType
	Space         AddressSpace
	UsedThisStage bool
	// InitializerID is the function computing the initial value, or 0.
	InitializerID uint32
}

// AnalysisResult is the per-entry-point record of referenced globals.
// Entries keep the order in which they were discovered.
type AnalysisResult struct {
	Variables []GlobalUsage
	CBuffers  []GlobalUsage
	Resources []GlobalUsage
	Streams   []*StreamVariableInfo
}

// LiveAnalysis accumulates the ids that must survive dead-code elimination.
type LiveAnalysis struct {
	methods map[uint32]struct{}
	order   []uint32
}

// NewLiveAnalysis creates an empty liveness set.
func NewLiveAnalysis() *LiveAnalysis {
	return &LiveAnalysis{methods: make(map[uint32]struct{})}
}

// MarkMethodUsed records id as reachable.
func (l *LiveAnalysis) MarkMethodUsed(id uint32) {
	if _, ok := l.methods[id]; ok {
		return
	}
	l.methods[id] = struct{}{}
	l.order = append(l.order, id)
}

// IsLive reports whether id was marked.
func (l *LiveAnalysis) IsLive(id uint32) bool {
	_, ok := l.methods[id]
	return ok
}

// Methods returns the marked ids in marking order.
func (l *LiveAnalysis) Methods() []uint32 {
	return l.order
}
