// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package adapter

import (
	"github.com/gogpu/spvwrap/ir"
	"github.com/gogpu/spvwrap/logging"
	"github.com/gogpu/spvwrap/spirv"
)

// WrapperSuffix is appended to the entry point name to name its wrapper.
const WrapperSuffix = "_Wrapper"

// Request describes one entry point to wrap.
type Request struct {
	// EntryPoint is the lowered shader function. Its Type is updated when
	// the wrapper rewrites its signature.
	EntryPoint *ir.Symbol
	Model      spirv.ExecutionModel

	Analysis *ir.AnalysisResult
	Live     *ir.LiveAnalysis

	Streams Streams
	Types   StreamTypes

	// StreamsVariable is the Private <STAGE>_STREAMS global the lowered
	// code reads and writes streams through.
	StreamsVariable uint32

	// ArrayInputSize is the number of vertices or control points read per
	// invocation, 0 for stages without arrayed inputs.
	ArrayInputSize uint32
	// ArrayOutputSize is the number of control points a hull shader emits.
	ArrayOutputSize uint32

	// PatchConstant is the hull shader's patch-constant function, if any.
	PatchConstant *ir.Symbol

	// ExtraVariables are additional globals to list in OpEntryPoint.
	ExtraVariables []uint32
}

// Generator emits entry-point wrappers into a module.
type Generator struct {
	ctx  *spirv.Context
	code *spirv.Buffer
	log  *logging.Logger
}

// NewGenerator creates a generator appending wrapper functions to code.
func NewGenerator(ctx *spirv.Context, code *spirv.Buffer, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.Nop()
	}
	return &Generator{ctx: ctx, code: code, log: log}
}

// wrapper is the state of one GenerateWrapper call.
type wrapper struct {
	*spirv.CodeBuilder
	req    *Request
	log    *logging.Logger
	binder *Binder

	// cursor is where the next local variable is inserted. Locals must
	// precede all other instructions of the entry block.
	cursor spirv.Ref

	inputs           uint32
	outputsGenerated bool

	// referenced holds the stream variables the wrapper body reads or
	// writes. Only these are listed on OpEntryPoint.
	referenced map[uint32]struct{}
}

// GenerateWrapper emits a void, parameterless function that moves values
// between the stage's interface variables and the entry point's own
// representation, calls the entry point, and registers the wrapper with
// OpEntryPoint. It returns the wrapper's id and name.
//
// Any inconsistency between the entry point and the request aborts
// generation with an *Error. The module must not be assembled after a
// failure.
func (g *Generator) GenerateWrapper(req *Request) (uint32, string, error) {
	fn := req.EntryPoint
	if fn == nil || fn.FunctionType() == nil {
		return 0, "", NewError(ErrInternal, "entry point is not a function")
	}
	if req.Live == nil {
		req.Live = ir.NewLiveAnalysis()
	}
	if req.Analysis == nil {
		req.Analysis = &ir.AnalysisResult{}
	}

	b := spirv.NewCodeBuilder(g.ctx, g.code)
	w := &wrapper{
		CodeBuilder: b,
		req:         req,
		log:         g.log,
		binder:      NewBinder(b, req.Model),
		referenced:  make(map[uint32]struct{}),
	}

	name := fn.Name + WrapperSuffix
	wrapperID := w.AddFunction(&ir.FunctionType{ReturnType: ir.Void}, spirv.FunctionControlNone)
	g.ctx.AddName(wrapperID, name)
	_, w.cursor = w.AddLabel()

	if err := w.generateBody(); err != nil {
		return 0, "", withEntry(err, fn.Name)
	}

	w.AddReturn()
	w.AddFunctionEnd()

	interfaces := w.interfaceList()
	req.Live.MarkMethodUsed(wrapperID)
	g.ctx.AddEntryPoint(req.Model, wrapperID, name, interfaces)

	g.log.Info("Wrapper", name+" registered as "+req.Model.String())
	g.log.Debugf("%s lists %d interface variables", name, len(interfaces))
	return wrapperID, name, nil
}

func (w *wrapper) generateBody() error {
	w.callInitializers()

	fn := w.req.EntryPoint
	args := make([]uint32, len(fn.FunctionType().Parameters))
	if err := w.fillSemanticArguments(fn, args); err != nil {
		return err
	}

	if w.req.ArrayInputSize != 0 {
		return w.generateArrayed(args)
	}

	switch w.req.Model {
	case spirv.ExecutionModelVertex, spirv.ExecutionModelFragment, spirv.ExecutionModelGLCompute:
		return w.generateDirect(args)
	case spirv.ExecutionModelTessellationControl, spirv.ExecutionModelTessellationEvaluation, spirv.ExecutionModelGeometry:
		return NewError(ErrInternal, "%s stage requires arrayed inputs", w.req.Model)
	default:
		return NewError(ErrUnsupportedStage, "execution model %d", w.req.Model)
	}
}

// callInitializers runs the initializer of every used global that has one.
func (w *wrapper) callInitializers() {
	for _, v := range w.req.Analysis.Variables {
		if !v.UsedThisStage || v.InitializerID == 0 {
			continue
		}
		w.req.Live.MarkMethodUsed(v.InitializerID)
		value := w.AddFunctionCall(v.Type, v.InitializerID)
		w.AddStore(v.ID, value)
	}
}

// localVariable declares a Function-storage variable in the entry block.
func (w *wrapper) localVariable(t ir.SymbolType, name string) uint32 {
	var id uint32
	id, w.cursor = w.InsertVariable(w.cursor, t)
	if name != "" {
		w.Context.AddName(id, name)
	}
	return id
}

// fillSemanticArguments fills the parameters of fn tagged with a system
// value semantic. Pointer parameters get a local holding the value.
func (w *wrapper) fillSemanticArguments(fn *ir.Symbol, args []uint32) error {
	fnType := fn.FunctionType()
	for _, p := range SemanticParameters(w.Context, fn) {
		if p.Index < 0 || p.Index >= len(args) {
			return NewError(ErrInternal, "semantic %s on missing parameter %d of %s", p.Semantic, p.Index, fn.Name)
		}
		valueType := fnType.ParameterValueType(p.Index)
		value, err := w.binder.Resolve(valueType, p.Semantic)
		if err != nil {
			return err
		}
		if _, ok := fnType.Parameters[p.Index].Type.(ir.PointerType); !ok {
			args[p.Index] = value
			continue
		}
		local := w.localVariable(valueType, "")
		w.AddStore(local, value)
		args[p.Index] = local
	}
	return nil
}

// generateDirect handles stages whose streams are single values: inputs
// are copied into the streams struct before the call and outputs are
// copied out of it afterwards.
func (w *wrapper) generateDirect(args []uint32) error {
	for _, s := range w.req.Streams.Input {
		if s.Info.StreamStructFieldIndex < 0 {
			continue
		}
		value := w.AddLoad(s.InterfaceType, w.variable(s))
		converted, err := w.Convert(s.InterfaceType, s.Info.Type, value)
		if err != nil {
			return wrapError(ErrInternal, err, "input %s", s.Info.Name)
		}
		w.AddStore(w.streamField(s.Info), converted)
	}

	if _, err := w.call(w.req.EntryPoint, args); err != nil {
		return err
	}

	for _, s := range w.req.Streams.Output {
		if s.Info.StreamStructFieldIndex < 0 {
			continue
		}
		value := w.AddLoad(s.Info.Type, w.streamField(s.Info))
		converted, err := w.Convert(s.Info.Type, s.InterfaceType, value)
		if err != nil {
			return wrapError(ErrInternal, err, "output %s", s.Info.Name)
		}
		w.AddStore(w.variable(s), converted)
	}
	return nil
}

// variable returns the interface variable of a binding and marks it
// referenced.
func (w *wrapper) variable(s ir.StreamBinding) uint32 {
	w.referenced[s.ID] = struct{}{}
	return s.ID
}

// streamField returns a pointer to the stream's field of the streams struct.
func (w *wrapper) streamField(info *ir.StreamVariableInfo) uint32 {
	index := w.Context.ConstantInt(int32(info.StreamStructFieldIndex))
	return w.AddAccessChain(info.Type, ir.SpacePrivate, w.req.StreamsVariable, index)
}

// generateArrayed handles geometry and tessellation stages, whose
// per-vertex inputs arrive as one array per stream and are regrouped into
// an array of <STAGE>_INPUT structs.
func (w *wrapper) generateArrayed(args []uint32) error {
	if err := w.gatherInputs(); err != nil {
		return err
	}

	switch w.req.Model {
	case spirv.ExecutionModelTessellationControl, spirv.ExecutionModelTessellationEvaluation:
		return w.generateTessellation(args)
	case spirv.ExecutionModelGeometry:
		return w.generateGeometry(args)
	default:
		return NewError(ErrInternal, "%s stage has no arrayed inputs", w.req.Model)
	}
}

// gatherInputs builds the "inputs" local: element i holds the i-th value
// of every input stream array.
func (w *wrapper) gatherInputs() error {
	n := w.req.ArrayInputSize
	element := w.req.Types.Input
	arrayType := ir.ArrayType{Base: element, Size: n}
	w.inputs = w.localVariable(arrayType, "inputs")

	streams := w.req.Streams.Input
	loaded := make([]uint32, len(streams))
	for j, s := range streams {
		loaded[j] = w.AddLoad(ir.ArrayType{Base: s.InterfaceType, Size: n}, w.variable(s))
	}

	elements := make([]uint32, n)
	for i := range elements {
		fields := make([]uint32, len(streams))
		for j, s := range streams {
			value := w.AddCompositeExtract(s.InterfaceType, loaded[j], uint32(i))
			converted, err := w.Convert(s.InterfaceType, s.Info.Type, value)
			if err != nil {
				return wrapError(ErrInternal, err, "input %s", s.Info.Name)
			}
			fields[j] = converted
		}
		elements[i] = w.AddCompositeConstruct(element, fields...)
	}
	w.AddStore(w.inputs, w.AddCompositeConstruct(arrayType, elements...))
	return nil
}

// call checks that every argument is filled, emits the call and returns
// its result id.
func (w *wrapper) call(fn *ir.Symbol, args []uint32) (uint32, error) {
	fnType := fn.FunctionType()
	if len(args) != len(fnType.Parameters) {
		return 0, NewError(ErrInternal, "%s takes %d arguments, got %d", fn.Name, len(fnType.Parameters), len(args))
	}
	for i, arg := range args {
		if arg == 0 {
			return 0, NewError(ErrInvalidArgument, "cannot process argument %d (%s) of %s",
				i, fnType.Parameters[i].Type, fn.Name)
		}
	}
	w.req.Live.MarkMethodUsed(fn.ID)
	return w.AddFunctionCall(fnType.ReturnType, fn.ID, args...), nil
}
