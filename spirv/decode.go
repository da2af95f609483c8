package spirv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidModule is returned when a binary is not a SPIR-V module.
var ErrInvalidModule = errors.New("spirv: invalid module")

// Header is the five-word SPIR-V module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Module is a decoded SPIR-V binary.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// Decode parses a little-endian SPIR-V binary.
func Decode(data []byte) (*Module, error) {
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidModule, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidModule, magic)
	}

	version := binary.LittleEndian.Uint32(data[4:])
	m := &Module{
		Header: Header{
			Version:   Version{Major: uint8(version >> 16), Minor: uint8(version >> 8)},
			Generator: binary.LittleEndian.Uint32(data[8:]),
			Bound:     binary.LittleEndian.Uint32(data[12:]),
			Schema:    binary.LittleEndian.Uint32(data[16:]),
		},
	}

	for offset := 20; offset < len(data); {
		word := binary.LittleEndian.Uint32(data[offset:])
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount*4 > len(data) {
			return nil, fmt.Errorf("%w: word count %d at offset 0x%X", ErrInvalidModule, wordCount, offset)
		}
		words := make([]uint32, wordCount-1)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(data[offset+4+i*4:])
		}
		m.Instructions = append(m.Instructions, Instruction{Opcode: OpCode(word & 0xFFFF), Words: words})
		offset += wordCount * 4
	}
	return m, nil
}

// Count returns the number of instructions with the given opcode.
func (m *Module) Count(opcode OpCode) int {
	n := 0
	for _, inst := range m.Instructions {
		if inst.Opcode == opcode {
			n++
		}
	}
	return n
}

// Filter returns the instructions with the given opcode in module order.
func (m *Module) Filter(opcode OpCode) []Instruction {
	var out []Instruction
	for _, inst := range m.Instructions {
		if inst.Opcode == opcode {
			out = append(out, inst)
		}
	}
	return out
}

// EntryPoint is a decoded OpEntryPoint.
type EntryPoint struct {
	Model      ExecutionModel
	Function   uint32
	Name       string
	Interfaces []uint32
}

// EntryPoints returns the decoded OpEntryPoint records.
func (m *Module) EntryPoints() []EntryPoint {
	var out []EntryPoint
	for _, inst := range m.Filter(OpEntryPoint) {
		name, n := DecodeString(inst.Words[2:])
		out = append(out, EntryPoint{
			Model:      ExecutionModel(inst.Words[0]),
			Function:   inst.Words[1],
			Name:       name,
			Interfaces: append([]uint32(nil), inst.Words[2+n:]...),
		})
	}
	return out
}

// Function returns the instructions from the OpFunction with result id
// through its OpFunctionEnd.
func (m *Module) Function(id uint32) []Instruction {
	start := -1
	for i, inst := range m.Instructions {
		if start < 0 {
			if inst.Opcode == OpFunction && inst.Words[1] == id {
				start = i
			}
			continue
		}
		if inst.Opcode == OpFunctionEnd {
			return m.Instructions[start : i+1]
		}
	}
	return nil
}

// Name returns the OpName of id.
func (m *Module) Name(id uint32) string {
	for _, inst := range m.Filter(OpName) {
		if inst.Words[0] == id {
			name, _ := DecodeString(inst.Words[1:])
			return name
		}
	}
	return ""
}

// StorageClassOf returns the storage class of a global variable id.
func (m *Module) StorageClassOf(id uint32) (StorageClass, bool) {
	for _, inst := range m.Filter(OpVariable) {
		if inst.Words[1] == id {
			return StorageClass(inst.Words[2]), true
		}
	}
	return 0, false
}
