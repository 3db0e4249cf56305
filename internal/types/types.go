// Package types models the slice of the goat type system the pipeline
// needs: builtin scalars, sequences, mappings, channels, promise handles,
// named types and enums. It deliberately stops there; numeric promotion,
// generics and interfaces are outside this pipeline's contract.
package types

import (
	"fmt"

	"fortio.org/safecast"

	"goat/internal/source"
)

// TypeID references an interned type.
type TypeID uint32

const NoTypeID TypeID = 0

// Kind enumerates type categories.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindError
	KindSlice
	KindMap
	KindChan
	KindPromise
	KindEnum
	KindNamed
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindError:
		return "error"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	case KindChan:
		return "chan"
	case KindPromise:
		return "promise"
	case KindEnum:
		return "enum"
	case KindNamed:
		return "named"
	default:
		return "invalid"
	}
}

// Type is the interned value. Elem/Key reference other interned types;
// Payload indexes kind-specific side storage (enum info slots).
type Type struct {
	Kind    Kind
	Elem    TypeID
	Key     TypeID
	Name    source.StringID
	Payload uint32
}

// BuiltinTypes exposes the always-present scalar types.
type BuiltinTypes struct {
	Bool   TypeID
	Int    TypeID
	Float  TypeID
	String TypeID
	Error  TypeID
}

// Interner deduplicates structural types and owns enum side storage. It is
// written once during collection and read-only afterwards.
type Interner struct {
	byID     []Type
	index    map[Type]TypeID
	enums    []EnumInfo
	builtins BuiltinTypes
}

// NewInterner creates an interner with the builtins pre-registered.
func NewInterner() *Interner {
	in := &Interner{
		byID:  make([]Type, 1), // slot 0 = NoTypeID
		index: make(map[Type]TypeID),
	}
	in.builtins = BuiltinTypes{
		Bool:   in.internRaw(Type{Kind: KindBool}),
		Int:    in.internRaw(Type{Kind: KindInt}),
		Float:  in.internRaw(Type{Kind: KindFloat}),
		String: in.internRaw(Type{Kind: KindString}),
		Error:  in.internRaw(Type{Kind: KindError}),
	}
	return in
}

// Builtins returns the pre-registered scalar types.
func (in *Interner) Builtins() BuiltinTypes {
	return in.builtins
}

func (in *Interner) internRaw(t Type) TypeID {
	if id, ok := in.index[t]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.byID))
	if err != nil {
		panic(fmt.Errorf("type count overflow: %w", err))
	}
	id := TypeID(slot)
	in.byID = append(in.byID, t)
	in.index[t] = id
	return id
}

// Slice interns []elem.
func (in *Interner) Slice(elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindSlice, Elem: elem})
}

// Map interns map[key]elem.
func (in *Interner) Map(key, elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindMap, Key: key, Elem: elem})
}

// Chan interns chan elem.
func (in *Interner) Chan(elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindChan, Elem: elem})
}

// Promise interns promise<elem>.
func (in *Interner) Promise(elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindPromise, Elem: elem})
}

// Named registers a named type over an underlying type. Each declaration gets
// its own identity, so two same-named types from different packages never
// collapse.
func (in *Interner) Named(name source.StringID, underlying TypeID) TypeID {
	slot, err := safecast.Conv[uint32](len(in.byID))
	if err != nil {
		panic(fmt.Errorf("type count overflow: %w", err))
	}
	id := TypeID(slot)
	in.byID = append(in.byID, Type{Kind: KindNamed, Name: name, Elem: underlying})
	return id
}

// Lookup returns the interned type for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.byID) {
		return Type{}, false
	}
	return in.byID[id], true
}

// Underlying peels named types down to their structural type.
func (in *Interner) Underlying(id TypeID) TypeID {
	for {
		t, ok := in.Lookup(id)
		if !ok || t.Kind != KindNamed || t.Elem == NoTypeID {
			return id
		}
		id = t.Elem
	}
}

// KindOf returns the structural kind of id, looking through named types.
func (in *Interner) KindOf(id TypeID) Kind {
	t, ok := in.Lookup(in.Underlying(id))
	if !ok {
		return KindInvalid
	}
	return t.Kind
}

// IsSequence reports whether id supports append/copy/len/cap.
func (in *Interner) IsSequence(id TypeID) bool {
	return in.KindOf(id) == KindSlice
}

// IsTextual reports whether id supports len over its bytes.
func (in *Interner) IsTextual(id TypeID) bool {
	return in.KindOf(id) == KindString
}

// IsMapping reports whether id supports delete/len via its own definitions.
func (in *Interner) IsMapping(id TypeID) bool {
	return in.KindOf(id) == KindMap
}

// IsChannel reports whether id supports close.
func (in *Interner) IsChannel(id TypeID) bool {
	return in.KindOf(id) == KindChan
}

// IsError reports whether id is the error type.
func (in *Interner) IsError(id TypeID) bool {
	return in.KindOf(id) == KindError
}

// String renders a type for diagnostics.
func (in *Interner) String(id TypeID, strings *source.Interner) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindSlice:
		return "[]" + in.String(t.Elem, strings)
	case KindMap:
		return "map[" + in.String(t.Key, strings) + "]" + in.String(t.Elem, strings)
	case KindChan:
		return "chan " + in.String(t.Elem, strings)
	case KindPromise:
		return "promise<" + in.String(t.Elem, strings) + ">"
	case KindEnum, KindNamed:
		if strings != nil {
			if s, ok := strings.Lookup(t.Name); ok && s != "" {
				return s
			}
		}
		return t.Kind.String()
	default:
		return t.Kind.String()
	}
}
