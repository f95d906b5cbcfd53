package main

import (
	"github.com/KoltIP/runtime/builder"
	"github.com/KoltIP/runtime/internal/wasm"
	"github.com/KoltIP/runtime/options"
)

// buildDemoModule assembles a small fixed module exercising most of the
// public emission surface: a permanent type, an imported function, a
// pointer constant reused across two call sites, and the memset peephole
// falling back to bulk memory.fill for a large count. It exists purely
// to give this CLI something concrete to dump; real traces come from the
// jiterpreter's own generator callbacks.
func buildDemoModule(useConstants bool) ([]byte, error) {
	b := builder.New(builder.Config{ConstantSlotCount: 4})
	if err := b.Options().ApplyOptions(options.Partial{options.UseConstants: useConstants}); err != nil {
		return nil, err
	}

	if _, err := b.DefineType("v_v", nil, nil, true); err != nil {
		return nil, err
	}
	if _, err := b.DefineType("i32_v", []wasm.ValueType{wasm.ValueTypeI32}, nil, false); err != nil {
		return nil, err
	}

	if _, err := b.DefineImportedFunction("env", "trace_enter", "v_v", true, ""); err != nil {
		return nil, err
	}

	err := b.DefineFunction("demo_trace", "i32_v",
		[]builder.LocalDecl{{Name: "dest", Type: wasm.ValueTypeI32}},
		[]builder.LocalDecl{{Name: "math_lhs32", Type: wasm.ValueTypeI32}},
		true,
		func(bb *builder.Builder) error {
			if err := bb.CallImport("trace_enter"); err != nil {
				return err
			}
			if err := bb.PtrConst(0x1000); err != nil {
				return err
			}
			if err := bb.Drop(); err != nil {
				return err
			}
			if err := bb.PtrConst(0x1000); err != nil {
				return err
			}
			if err := bb.Drop(); err != nil {
				return err
			}
			ok, err := bb.TryMemsetFast("dest", 0, 96, false)
			if err != nil {
				return err
			}
			if !ok {
				if err := bb.Arg("dest"); err != nil {
					return err
				}
				if err := bb.AppendMemsetDest(0, 96); err != nil {
					return err
				}
			}
			return bb.End()
		},
	)
	if err != nil {
		return nil, err
	}

	return b.EmitModule()
}
