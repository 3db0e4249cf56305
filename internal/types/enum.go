package types

import (
	"fmt"

	"fortio.org/safecast"

	"goat/internal/source"
)

// EnumState tracks the per-enum validation state machine:
// Declared -> (Rejected | Usable). Use-site checks only run against Usable
// enums, so a broken declaration never cascades into switch diagnostics.
type EnumState uint8

const (
	EnumDeclared EnumState = iota
	EnumRejected
	EnumUsable
)

func (s EnumState) String() string {
	switch s {
	case EnumDeclared:
		return "declared"
	case EnumRejected:
		return "rejected"
	case EnumUsable:
		return "usable"
	default:
		return "invalid"
	}
}

// EnumMemberInfo stores one declared member. Ordinal is final after
// validation: the explicit value when written, the declaration index when
// not.
type EnumMemberInfo struct {
	Name    source.StringID
	Ordinal int64
	Span    source.Span
}

// EnumProblem describes one reason a declaration was rejected.
type EnumProblem struct {
	Member EnumMemberInfo
	Prev   source.Span // earlier occupant for duplicate name / ordinal collisions
	Reason EnumProblemReason
}

// EnumProblemReason classifies rejection causes.
type EnumProblemReason uint8

const (
	EnumDupName EnumProblemReason = iota
	EnumDupOrdinal
	EnumOrdinalOutOfRange
	EnumNoMembers
)

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name    source.StringID
	Decl    source.Span
	State   EnumState
	Members []EnumMemberInfo
	byName  map[source.StringID]int
}

// RegisterEnum allocates an enum type slot in Declared state and returns its
// TypeID.
func (in *Interner) RegisterEnum(name source.StringID, decl source.Span) TypeID {
	if in.enums == nil {
		in.enums = append(in.enums, EnumInfo{})
	}
	in.enums = append(in.enums, EnumInfo{Name: name, Decl: decl})
	slot, err := safecast.Conv[uint32](len(in.enums) - 1)
	if err != nil {
		panic(fmt.Errorf("enum info overflow: %w", err))
	}
	typeSlot, err := safecast.Conv[uint32](len(in.byID))
	if err != nil {
		panic(fmt.Errorf("type count overflow: %w", err))
	}
	id := TypeID(typeSlot)
	in.byID = append(in.byID, Type{Kind: KindEnum, Name: name, Payload: slot})
	return id
}

// ValidateEnum moves the enum from Declared to Usable or Rejected and returns
// the problems found. Members carry their final ordinals; the name->ordinal
// map is built here, once, and never rebuilt.
func (in *Interner) ValidateEnum(typeID TypeID, members []EnumMemberInfo) []EnumProblem {
	info := in.enumInfo(typeID)
	if info == nil || info.State != EnumDeclared {
		return nil
	}

	// A memberless enum has no zero member and nothing for the generated
	// helpers to return; it never becomes usable.
	if len(members) == 0 {
		info.State = EnumRejected
		return []EnumProblem{{Reason: EnumNoMembers}}
	}

	var problems []EnumProblem
	count := int64(len(members))
	byName := make(map[source.StringID]int, len(members))
	byOrdinal := make(map[int64]int, len(members))

	for i, m := range members {
		if prev, ok := byName[m.Name]; ok {
			problems = append(problems, EnumProblem{Member: m, Prev: members[prev].Span, Reason: EnumDupName})
			continue
		}
		byName[m.Name] = i

		if m.Ordinal < 0 || m.Ordinal >= count {
			problems = append(problems, EnumProblem{Member: m, Reason: EnumOrdinalOutOfRange})
			continue
		}
		if prev, ok := byOrdinal[m.Ordinal]; ok {
			problems = append(problems, EnumProblem{Member: m, Prev: members[prev].Span, Reason: EnumDupOrdinal})
			continue
		}
		byOrdinal[m.Ordinal] = i
	}

	info.Members = append([]EnumMemberInfo(nil), members...)
	if len(problems) > 0 {
		info.State = EnumRejected
		return problems
	}
	// Unique names plus in-range, collision-free ordinals over a dense domain
	// imply exactly the set [0, count).
	info.State = EnumUsable
	info.byName = byName
	return nil
}

// EnumInfoFor returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfoFor(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// EnumState returns the validation state for the enum.
func (in *Interner) EnumState(typeID TypeID) EnumState {
	info := in.enumInfo(typeID)
	if info == nil {
		return EnumDeclared
	}
	return info.State
}

// AllValues enumerates the members of a Usable enum in declaration order.
func (in *Interner) AllValues(typeID TypeID) []EnumMemberInfo {
	info := in.enumInfo(typeID)
	if info == nil || info.State != EnumUsable {
		return nil
	}
	return append([]EnumMemberInfo(nil), info.Members...)
}

// ZeroMember returns the implicit zero value of a Usable enum: its first
// declared member.
func (in *Interner) ZeroMember(typeID TypeID) (EnumMemberInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil || info.State != EnumUsable || len(info.Members) == 0 {
		return EnumMemberInfo{}, false
	}
	return info.Members[0], true
}

// MemberByName resolves a declared member at compile time.
func (in *Interner) MemberByName(typeID TypeID, name source.StringID) (EnumMemberInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil || info.State != EnumUsable {
		return EnumMemberInfo{}, false
	}
	i, ok := info.byName[name]
	if !ok {
		return EnumMemberInfo{}, false
	}
	return info.Members[i], true
}

// FromString resolves a member from a dynamic string. This is the one
// runtime-contract lookup of the enum model: an unknown name is a recoverable
// error for the calling program, never a compile-time diagnostic and never a
// panic.
func (in *Interner) FromString(typeID TypeID, name string, strings *source.Interner) (EnumMemberInfo, error) {
	info := in.enumInfo(typeID)
	if info == nil || info.State != EnumUsable {
		return EnumMemberInfo{}, fmt.Errorf("enum type is not usable")
	}
	id := strings.Intern(name)
	i, ok := info.byName[id]
	if !ok {
		enumName, _ := strings.Lookup(info.Name)
		return EnumMemberInfo{}, fmt.Errorf("unknown enum name %q for %s", name, enumName)
	}
	return info.Members[i], nil
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	if typeID == NoTypeID {
		return nil
	}
	t, ok := in.Lookup(typeID)
	if !ok || t.Kind != KindEnum {
		return nil
	}
	if t.Payload == 0 || int(t.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[t.Payload]
}
