// Package builder implements the Module Builder (§4.F) and its supporting
// registries: the Type Registry (§4.C), Import Registry (§4.D), and
// Function/Local Registry (§4.E). Together they expose the public
// emission surface a trace compiler drives to produce a byte-exact
// WebAssembly module.
package builder

import (
	"fmt"

	"github.com/KoltIP/runtime/hostabi"
	"github.com/KoltIP/runtime/internal/buffer"
	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/KoltIP/runtime/options"
	"go.uber.org/zap"
)

// Config configures a new Builder. Zero-value fields fall back to
// sensible defaults (a NativeHost, 32000-byte buffers, 64-slot constant
// table, maxFailures=2).
type Config struct {
	Encoder           hostabi.Encoder
	OptionStore       hostabi.OptionStore
	FunctionTable     hostabi.FunctionTable
	Logger            *zap.Logger
	BufferCapacity    int
	ConstantSlotCount int
	MaxMemsetSize     int
	MaxFailures       int

	// EmitNameSection overrides the auto-decided "emit a name section iff
	// stats/trace-dump is enabled" behaviour when non-nil (SPEC_FULL
	// supplemented feature, grounded on wasm/binary/names.go).
	EmitNameSection *bool
}

// Builder is the Module Builder of §4.F. It owns the Buffer Stack, the
// Type/Import/Function registries, the Constant Slot Table, the Options
// Layer, and the Function Pointer Table Manager, and exposes the public
// emission surface a trace's generator callback drives.
type Builder struct {
	stack     *buffer.Stack
	types     *typeRegistry
	imports   *importRegistry
	constants *constantSlotTable
	opts      *options.Layer
	funcTable *functionPointerTable
	log       *zap.Logger

	functions []*functionRecord
	byName    map[string]*functionRecord

	// base is the trace base address ip_const rebases against.
	base int64

	// per-function emission state, valid only between beginFunction and
	// endFunction.
	curLocals    *localMap
	curGroups    [][]LocalDecl
	activeBlocks int
	backBranches map[int]struct{}

	maxMemsetSize   int
	maxFailures     int
	failureCount    int
	emitNameSection *bool

	lastFailure struct {
		funcName    string
		partialBody []byte
		err         error
	}
}

// New constructs a Builder from cfg.
func New(cfg Config) *Builder {
	if cfg.BufferCapacity == 0 {
		cfg.BufferCapacity = buffer.DefaultCapacity
	}
	if cfg.ConstantSlotCount == 0 {
		cfg.ConstantSlotCount = 64
	}
	if cfg.MaxMemsetSize == 0 {
		cfg.MaxMemsetSize = 64
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	native := hostabi.NewNativeHost(nil)
	enc := cfg.Encoder
	if enc == nil {
		enc = native
	}
	store := cfg.OptionStore
	if store == nil {
		store = native
	}
	table := cfg.FunctionTable
	if table == nil {
		table = native
	}

	b := &Builder{
		stack:         buffer.NewStack(cfg.BufferCapacity, enc),
		types:         newTypeRegistry(),
		imports:       newImportRegistry(),
		constants:     newConstantSlotTable(cfg.ConstantSlotCount),
		opts:          options.NewLayer(store, cfg.Logger),
		funcTable:     newFunctionPointerTable(table),
		log:           cfg.Logger,
		byName:          map[string]*functionRecord{},
		maxMemsetSize:   cfg.MaxMemsetSize,
		maxFailures:     cfg.MaxFailures,
		emitNameSection: cfg.EmitNameSection,
	}
	return b
}

// Clear resets all per-compilation state (non-permanent types, imports,
// functions, constant slots, buffers) while keeping permanent types and
// the options/function-table host wiring intact, per §5.
func (b *Builder) Clear() {
	b.stack.Clear()
	b.types.clearPerCompilation()
	b.imports.clear()
	b.constants.clear()
	b.functions = nil
	b.byName = map[string]*functionRecord{}
	b.curLocals = nil
	b.curGroups = nil
	b.activeBlocks = 0
	b.backBranches = nil
}

// SetBase sets the trace base address used by IPConst to compute
// ip - base.
func (b *Builder) SetBase(base int64) { b.base = base }

// DefineType interns a function type by structural shape (§4.C).
func (b *Builder) DefineType(name string, params, results []wasm.ValueType, permanent bool) (uint32, error) {
	return b.types.define(name, params, results, permanent)
}

// DefineImportedFunction registers an imported function (§4.D).
// wasmName, if empty, defaults to friendlyName.
func (b *Builder) DefineImportedFunction(module, name, typeName string, assumeUsed bool, wasmName string) (string, error) {
	idx, ok := b.types.byName(typeName)
	if !ok {
		return "", fmt.Errorf("import type %q: %w", typeName, wasm.ErrUnknownType)
	}
	if wasmName == "" {
		wasmName = name
	}
	e, err := b.imports.define(module, wasmName, name, idx, assumeUsed)
	if err != nil {
		return "", err
	}
	return e.FriendlyName, nil
}

// CallImport emits `call <index>`, lazily assigning the import's index on
// first reference (§4.D).
func (b *Builder) CallImport(name string) error {
	idx, err := b.imports.resolve(name)
	if err != nil {
		return err
	}
	cur := b.stack.Current()
	if _, err := cur.AppendU8(wasm.OpCall); err != nil {
		return err
	}
	_, err = cur.AppendULeb(uint64(idx))
	return err
}

// DefineFunction registers a function record with a generator to run
// during EmitImportsAndFunctions (§3 Function Record, §4.E/§4.F).
func (b *Builder) DefineFunction(name, typeName string, params, locals []LocalDecl, export bool, generator func(*Builder) error) error {
	if _, exists := b.byName[name]; exists {
		return fmt.Errorf("function %q: %w", name, wasm.ErrDuplicateName)
	}
	idx, ok := b.types.byName(typeName)
	if !ok {
		return fmt.Errorf("function type %q: %w", typeName, wasm.ErrUnknownType)
	}
	rec := &functionRecord{
		Name: name, TypeName: typeName, TypeIndex: idx, Export: export,
		Params: params, Locals: locals, Generator: generator,
	}
	b.functions = append(b.functions, rec)
	b.byName[name] = rec
	return nil
}

// LastFailure returns the name, partial body, and error of the most
// recent generator failure, for forensic dumping (§4.F, §9 Open
// Question resolution: generator errors propagate, but the partial body
// is preserved here).
func (b *Builder) LastFailure() (funcName string, partialBody []byte, err error) {
	return b.lastFailure.funcName, b.lastFailure.partialBody, b.lastFailure.err
}

// recordFailure increments the global failure counter and, on reaching
// maxFailures, disables further generation by turning off all three
// emission categories through the Options Layer (§5, §7).
func (b *Builder) recordFailure() {
	b.failureCount++
	if b.failureCount < b.maxFailures {
		return
	}
	b.log.Warn("jiterpreter disabled after repeated trace failures", zap.Int("failures", b.failureCount))
	_ = b.opts.ApplyOptions(options.Partial{
		options.EnableTraces:     false,
		options.EnableInterpEntry: false,
		options.EnableJitCall:    false,
	})
}

// Options returns the Options Layer so callers can read or update
// configuration flags directly (§4.H).
func (b *Builder) Options() *options.Layer { return b.opts }

// FunctionTable returns the Function Pointer Table Manager (§4.I).
func (b *Builder) FunctionTable() *functionPointerTable { return b.funcTable }
