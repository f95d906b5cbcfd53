// Package wasm holds the binary-format constants and structural data types
// shared by the builder. It mirrors the constant tables a WebAssembly 1.0
// (MVP) producer needs: section ids, value types, and the opcodes the
// builder is known to emit.
package wasm

// SectionID identifies the sections of a module in the WebAssembly 1.0
// (MVP) Binary Format.
//
// See https://www.w3.org/TR/wasm-core-1/#sections%E2%91%A0
type SectionID = byte

const (
	SectionIDCustom SectionID = iota
	SectionIDType
	SectionIDImport
	SectionIDFunction
	SectionIDTable
	SectionIDMemory
	SectionIDGlobal
	SectionIDExport
	SectionIDStart
	SectionIDElement
	SectionIDCode
	SectionIDData
)

// ValueType is the binary encoding of a WebAssembly value type.
//
// See https://www.w3.org/TR/wasm-core-1/#binary-valtype
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
	// ValueTypeVoid represents an empty block result type (0x40), not a
	// real value type; it only ever appears in a block-type position.
	ValueTypeVoid ValueType = 0x40
)

// ValueTypeName returns the WebAssembly text-format name of t, or
// "unknown" if t is not one of the ValueType constants.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeVoid:
		return "void"
	}
	return "unknown"
}

// ImportKind indicates which import description is present in an import
// entry.
type ImportKind = byte

const (
	ImportKindFunc   ImportKind = 0x00
	ImportKindTable  ImportKind = 0x01
	ImportKindMemory ImportKind = 0x02
	ImportKindGlobal ImportKind = 0x03
)

// ExportKind indicates which index space an export entry refers to.
type ExportKind = byte

const (
	ExportKindFunc   ExportKind = 0x00
	ExportKindTable  ExportKind = 0x01
	ExportKindMemory ExportKind = 0x02
	ExportKindGlobal ExportKind = 0x03
)

// Opcodes the builder is known to emit. This is not an exhaustive opcode
// table (decoding/validating arbitrary opcodes is out of scope); it is the
// fixed vocabulary the public emission surface and the peephole helpers
// use.
const (
	OpBlock      = 0x02
	OpLoop       = 0x03
	OpIf         = 0x04
	OpElse       = 0x05
	OpEnd        = 0x0b
	OpBr         = 0x0c
	OpBrIf       = 0x0d
	OpReturn     = 0x0f
	OpCall       = 0x10
	OpDrop       = 0x1a
	OpLocalGet   = 0x20
	OpLocalSet   = 0x21
	OpLocalTee   = 0x22
	OpGlobalGet  = 0x23
	OpGlobalSet  = 0x24
	OpI32Load    = 0x28
	OpI64Load    = 0x29
	OpI32Load8U  = 0x2d
	OpI32Load16U = 0x2f
	OpI32Store   = 0x36
	OpI64Store   = 0x37
	OpI32Store8  = 0x3a
	OpI32Store16 = 0x3b
	OpI32Const   = 0x41
	OpI64Const   = 0x42
	OpF32Const   = 0x43
	OpF64Const   = 0x44
	OpI32Add     = 0x6a
	// OpMisc is the prefix byte (0xFC) for the multi-byte "misc" opcode
	// space that bulk-memory operations live in.
	OpMisc = 0xfc
	// MiscMemoryCopy / MiscMemoryFill are sub-opcodes
	// within the OpMisc space.
	MiscMemoryCopy = 0x0a
	MiscMemoryFill = 0x0b
)

// Magic and Version are the fixed 8-byte header every WebAssembly 1.0
// module begins with.
var (
	Magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	Version = []byte{0x01, 0x00, 0x00, 0x00}
)

// PageSize is the size in bytes of one WebAssembly linear memory page.
const PageSize = 65536
