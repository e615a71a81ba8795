package ir

import (
	"fmt"
)

// FunctionBuilder appends instructions to one function. Register and label
// counters are per function; registers and block labels share one namespace.
// Allocas always go to the head of the entry block so loops never grow the
// stack.
type FunctionBuilder struct {
	fn      *Function
	entry   *BasicBlock
	current *BasicBlock
	allocas int

	valueCounter int
	blockCounter int
	used         map[string]bool
}

// NewFunctionBuilder creates the entry block of fn and reserves its
// parameter names.
func NewFunctionBuilder(fn *Function) *FunctionBuilder {
	b := &FunctionBuilder{
		fn:   fn,
		used: make(map[string]bool),
	}
	for _, p := range fn.Params {
		b.used["%"+p.Name] = true
	}
	b.entry = b.StartBlock(b.label("entry"))
	return b
}

func (b *FunctionBuilder) Function() *Function {
	return b.fn
}

// Current returns the block instructions are appended to.
func (b *FunctionBuilder) Current() *BasicBlock {
	return b.current
}

// Terminated reports whether the current block is closed.
func (b *FunctionBuilder) Terminated() bool {
	return b.current.Terminated()
}

// NewValue creates a fresh register of type t.
func (b *FunctionBuilder) NewValue(t Type) *Value {
	for {
		name := fmt.Sprintf("%%t%d", b.valueCounter)
		b.valueCounter++
		if !b.used[name] {
			b.used[name] = true
			return &Value{Type: t, Name: name}
		}
	}
}

// Labels returns one label per prefix, all sharing a fresh numeric suffix
// that no parameter or register already uses.
func (b *FunctionBuilder) Labels(prefixes ...string) []string {
	labels := make([]string, len(prefixes))
	for {
		id := b.blockCounter
		b.blockCounter++
		free := true
		for i, p := range prefixes {
			labels[i] = fmt.Sprintf("%s%d", p, id)
			if b.used["%"+labels[i]] {
				free = false
			}
		}
		if free {
			break
		}
	}
	for _, l := range labels {
		b.used["%"+l] = true
	}
	return labels
}

// label reserves name for a block, adding a suffix when a parameter or
// register took it first.
func (b *FunctionBuilder) label(name string) string {
	l := name
	for n := 1; b.used["%"+l]; n++ {
		l = fmt.Sprintf("%s.%d", name, n)
	}
	b.used["%"+l] = true
	return l
}

// StartBlock appends a new block and makes it current.
func (b *FunctionBuilder) StartBlock(label string) *BasicBlock {
	block := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, block)
	b.current = block
	return block
}

// Emit appends inst to the current block. Code following a terminator is
// unreachable; it is collected in a fresh block with no predecessors.
func (b *FunctionBuilder) Emit(inst Instruction) {
	if b.current.Terminated() {
		b.StartBlock(b.Labels("dead")[0])
	}
	b.current.Instructions = append(b.current.Instructions, inst)
}

// Alloca reserves a stack slot named after a source variable in the entry
// block and returns its address.
func (b *FunctionBuilder) Alloca(name string, t Type) *Value {
	reg := "%" + name + ".addr"
	for n := 1; b.used[reg]; n++ {
		reg = fmt.Sprintf("%%%s.addr%d", name, n)
	}
	b.used[reg] = true

	addr := &Value{Type: PointerTo(t), Name: reg}
	inst := &AllocaInstruction{Result: addr, Elem: t}

	entry := b.entry.Instructions
	entry = append(entry, nil)
	copy(entry[b.allocas+1:], entry[b.allocas:])
	entry[b.allocas] = inst
	b.entry.Instructions = entry
	b.allocas++
	return addr
}

// Jump closes the current block with a branch to label unless it is
// already terminated.
func (b *FunctionBuilder) Jump(label string) {
	if !b.current.Terminated() {
		b.current.Instructions = append(b.current.Instructions, &JumpTerminator{Target: label})
	}
}

// Branch closes the current block with a conditional branch.
func (b *FunctionBuilder) Branch(cond *Value, then, els string) {
	b.Emit(&BranchTerminator{Condition: cond, TrueLabel: then, FalseLabel: els})
}

// Return closes the current block with a return; v is nil for void.
func (b *FunctionBuilder) Return(v *Value) {
	b.Emit(&ReturnTerminator{Value: v})
}

// Unreachable closes the current block with unreachable.
func (b *FunctionBuilder) Unreachable() {
	b.Emit(&UnreachableTerminator{})
}

// Finish terminates the last block: void functions return, others end in
// unreachable since every path was checked to return.
func (b *FunctionBuilder) Finish() *Function {
	if !b.current.Terminated() {
		if IsVoid(b.fn.Return) {
			b.current.Instructions = append(b.current.Instructions, &ReturnTerminator{})
		} else {
			b.current.Instructions = append(b.current.Instructions, &UnreachableTerminator{})
		}
	}
	return b.fn
}

// Instruction helpers. Each emits into the current block and returns the
// result register.

func (b *FunctionBuilder) Load(addr *Value) *Value {
	v := b.NewValue(Elem(addr.Type))
	b.Emit(&LoadInstruction{Result: v, Address: addr})
	return v
}

func (b *FunctionBuilder) Store(v, addr *Value) {
	b.Emit(&StoreInstruction{Value: v, Address: addr})
}

func (b *FunctionBuilder) Binary(op string, left, right *Value) *Value {
	v := b.NewValue(left.Type)
	b.Emit(&BinaryInstruction{Result: v, Op: op, Left: left, Right: right})
	return v
}

func (b *FunctionBuilder) Compare(pred string, left, right *Value) *Value {
	v := b.NewValue(I1)
	b.Emit(&CompareInstruction{Result: v, Float: IsFloat(left.Type), Predicate: pred, Left: left, Right: right})
	return v
}

// GEP computes an address of type *result from base and indices.
func (b *FunctionBuilder) GEP(result Type, base *Value, indices ...*Value) *Value {
	v := b.NewValue(PointerTo(result))
	b.Emit(&GEPInstruction{Result: v, Base: base, Indices: indices})
	return v
}

func (b *FunctionBuilder) Cast(op string, v *Value, to Type) *Value {
	r := b.NewValue(to)
	b.Emit(&CastInstruction{Result: r, Op: op, Value: v})
	return r
}

// Call emits a call; the result is nil when sig returns void.
func (b *FunctionBuilder) Call(callee *Value, sig *FuncType, args ...*Value) *Value {
	var r *Value
	if !IsVoid(sig.Return) {
		r = b.NewValue(sig.Return)
	}
	b.Emit(&CallInstruction{Result: r, Callee: callee, Sig: sig, Args: args})
	return r
}

func (b *FunctionBuilder) InsertValue(agg, elem *Value, index int) *Value {
	v := b.NewValue(agg.Type)
	b.Emit(&InsertValueInstruction{Result: v, Aggregate: agg, Element: elem, Index: index})
	return v
}

func (b *FunctionBuilder) ExtractValue(agg *Value, index int, t Type) *Value {
	v := b.NewValue(t)
	b.Emit(&ExtractValueInstruction{Result: v, Aggregate: agg, Index: index})
	return v
}
