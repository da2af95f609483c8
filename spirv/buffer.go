package spirv

// Ref is a stable reference to an instruction stored in a Buffer.
// A Ref stays valid for the lifetime of its Buffer: inserting instructions
// elsewhere never moves it.
type Ref int

// Buffer is an ordered, insert-capable instruction sequence.
//
// Instructions live in an append-only arena and are addressed by Ref.
// A separate order slice gives their position in the serialized stream,
// so inserting in the middle only shifts order entries.
type Buffer struct {
	arena []Instruction
	order []Ref
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		arena: make([]Instruction, 0, 64),
		order: make([]Ref, 0, 64),
	}
}

// Add appends an instruction and returns its reference.
func (b *Buffer) Add(inst Instruction) Ref {
	ref := Ref(len(b.arena))
	b.arena = append(b.arena, inst)
	b.order = append(b.order, ref)
	return ref
}

// InsertAfter places inst immediately after the instruction at.
// Inserting repeatedly after the same Ref yields reverse order; callers that
// need a growing block keep the returned Ref as their next cursor.
func (b *Buffer) InsertAfter(at Ref, inst Instruction) Ref {
	pos := b.position(at)
	if pos < 0 {
		return b.Add(inst)
	}
	ref := Ref(len(b.arena))
	b.arena = append(b.arena, inst)
	b.order = append(b.order, 0)
	copy(b.order[pos+2:], b.order[pos+1:])
	b.order[pos+1] = ref
	return ref
}

func (b *Buffer) position(ref Ref) int {
	for i := len(b.order) - 1; i >= 0; i-- {
		if b.order[i] == ref {
			return i
		}
	}
	return -1
}

// Get returns the instruction at ref.
func (b *Buffer) Get(ref Ref) Instruction {
	return b.arena[ref]
}

// Set replaces the instruction at ref in place.
func (b *Buffer) Set(ref Ref, inst Instruction) {
	b.arena[ref] = inst
}

// Nop patches the instruction at ref to a no-op. No-ops are dropped when
// the buffer is serialized.
func (b *Buffer) Nop(ref Ref) {
	b.arena[ref] = Instruction{Opcode: OpNop}
}

// Each calls fn for every live instruction in order until fn returns false.
func (b *Buffer) Each(fn func(Ref, Instruction) bool) {
	for _, ref := range b.order {
		inst := b.arena[ref]
		if inst.IsNop() {
			continue
		}
		if !fn(ref, inst) {
			return
		}
	}
}

// Instructions returns the live instructions in order.
func (b *Buffer) Instructions() []Instruction {
	out := make([]Instruction, 0, len(b.order))
	b.Each(func(_ Ref, inst Instruction) bool {
		out = append(out, inst)
		return true
	})
	return out
}

// Len returns the number of live instructions.
func (b *Buffer) Len() int {
	n := 0
	for _, ref := range b.order {
		if !b.arena[ref].IsNop() {
			n++
		}
	}
	return n
}

// Last returns the reference of the last instruction in order, or -1.
func (b *Buffer) Last() Ref {
	if len(b.order) == 0 {
		return -1
	}
	return b.order[len(b.order)-1]
}
