package ast

import (
	"encoding/json"
	"fmt"
	"io"

	"goat/internal/source"
)

// JSON interchange for trees. The external parser hands the CLI a unit in
// this shape; `goat lower` emits the lowered unit back in the same shape for
// the external emitter. Node kinds carry their name, payloads are flattened
// with omitempty.

type spanJSON struct {
	File  uint32 `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type unitJSON struct {
	Packages []pkgJSON `json:"packages"`
}

type pkgJSON struct {
	Name  string     `json:"name"`
	Files []fileJSON `json:"files"`
}

type fileJSON struct {
	Path    string       `json:"path"`
	ID      uint32       `json:"id"`
	Span    spanJSON     `json:"span"`
	Imports []importJSON `json:"imports,omitempty"`
	Decls   []declJSON   `json:"decls,omitempty"`
}

type importJSON struct {
	Span  spanJSON `json:"span"`
	Path  string   `json:"path"`
	Alias string   `json:"alias,omitempty"`
	Open  bool     `json:"open,omitempty"`
}

type declJSON struct {
	Kind     string        `json:"kind"`
	Span     spanJSON      `json:"span"`
	Vis      string        `json:"vis,omitempty"`
	Name     string        `json:"name"`
	NameSpan spanJSON      `json:"name_span"`
	Params   []paramJSON   `json:"params,omitempty"`
	Results  []*typeJSON   `json:"results,omitempty"`
	Body     *blockJSON    `json:"body,omitempty"`
	Type     *typeJSON     `json:"type,omitempty"`
	Value    *exprJSON     `json:"value,omitempty"`
	Members  []memberJSON  `json:"members,omitempty"`
}

type paramJSON struct {
	Name string    `json:"name"`
	Span spanJSON  `json:"span"`
	Type *typeJSON `json:"type"`
}

type memberJSON struct {
	Name    string   `json:"name"`
	Span    spanJSON `json:"span"`
	Ordinal *int64   `json:"ordinal,omitempty"`
}

type typeJSON struct {
	Kind string    `json:"kind"`
	Span spanJSON  `json:"span"`
	Name string    `json:"name,omitempty"`
	Key  *typeJSON `json:"key,omitempty"`
	Elem *typeJSON `json:"elem,omitempty"`
}

type blockJSON struct {
	Span  spanJSON   `json:"span"`
	Stmts []stmtJSON `json:"stmts,omitempty"`
}

type stmtJSON struct {
	Kind      string     `json:"kind"`
	Span      spanJSON   `json:"span"`
	Names     []string   `json:"names,omitempty"`
	NameSpans []spanJSON `json:"name_spans,omitempty"`
	Type      *typeJSON  `json:"type,omitempty"`
	Value     *exprJSON  `json:"value,omitempty"`
	Target    *exprJSON  `json:"target,omitempty"`
	Values    []exprJSON `json:"values,omitempty"`
	Cond      *exprJSON  `json:"cond,omitempty"`
	Then      *blockJSON `json:"then,omitempty"`
	Else      *stmtJSON  `json:"else,omitempty"`
	Cases     []caseJSON `json:"cases,omitempty"`
	Default   *blockJSON `json:"default,omitempty"`
	X         *exprJSON  `json:"x,omitempty"`
	Block     *blockJSON `json:"block,omitempty"`
}

type caseJSON struct {
	Span   spanJSON   `json:"span"`
	Values []exprJSON `json:"values"`
	Body   *blockJSON `json:"body"`
}

type exprJSON struct {
	Kind    string     `json:"kind"`
	Span    spanJSON   `json:"span"`
	Name    string     `json:"name,omitempty"`
	Lit     string     `json:"lit,omitempty"`
	Text    string     `json:"text,omitempty"`
	Int     int64      `json:"int,omitempty"`
	Float   float64    `json:"float,omitempty"`
	Bool    bool       `json:"bool,omitempty"`
	Str     string     `json:"str,omitempty"`
	Callee  *exprJSON  `json:"callee,omitempty"`
	Args    []exprJSON `json:"args,omitempty"`
	Op      string     `json:"op,omitempty"`
	Left    *exprJSON  `json:"left,omitempty"`
	Right   *exprJSON  `json:"right,omitempty"`
	X       *exprJSON  `json:"x,omitempty"`
	Sel     string     `json:"sel,omitempty"`
	SelSpan *spanJSON  `json:"sel_span,omitempty"`
	Index   *exprJSON  `json:"index,omitempty"`
	Call    *exprJSON  `json:"call,omitempty"`
}

// EncodeUnit writes u as indented JSON.
func EncodeUnit(w io.Writer, u *Unit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(unitToJSON(u))
}

// DecodeUnit reads a unit from JSON.
func DecodeUnit(r io.Reader) (*Unit, error) {
	var uj unitJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&uj); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return unitFromJSON(&uj)
}

func spanToJSON(s source.Span) spanJSON {
	return spanJSON{File: uint32(s.File), Start: s.Start, End: s.End}
}

func spanFromJSON(s spanJSON) source.Span {
	return source.Span{File: source.FileID(s.File), Start: s.Start, End: s.End}
}

func unitToJSON(u *Unit) *unitJSON {
	out := &unitJSON{}
	for _, p := range u.Packages {
		pj := pkgJSON{Name: p.Name}
		for _, f := range p.Files {
			pj.Files = append(pj.Files, fileToJSON(f))
		}
		out.Packages = append(out.Packages, pj)
	}
	return out
}

func fileToJSON(f *File) fileJSON {
	fj := fileJSON{Path: f.Path, ID: uint32(f.ID), Span: spanToJSON(f.Span)}
	for _, imp := range f.Imports {
		fj.Imports = append(fj.Imports, importJSON{
			Span: spanToJSON(imp.Span), Path: imp.Path, Alias: imp.Alias, Open: imp.Open,
		})
	}
	for _, d := range f.Decls {
		fj.Decls = append(fj.Decls, declToJSON(d))
	}
	return fj
}

func declToJSON(d *Decl) declJSON {
	dj := declJSON{
		Kind:     d.Kind.String(),
		Span:     spanToJSON(d.Span),
		Name:     d.Name,
		NameSpan: spanToJSON(d.NameSpan),
	}
	if d.Vis != VisNone {
		dj.Vis = d.Vis.String()
	}
	switch data := d.Data.(type) {
	case *FuncData:
		for _, p := range data.Params {
			dj.Params = append(dj.Params, paramJSON{Name: p.Name, Span: spanToJSON(p.Span), Type: typeToJSON(p.Type)})
		}
		for _, r := range data.Results {
			dj.Results = append(dj.Results, typeToJSON(r))
		}
		dj.Body = blockToJSON(data.Body)
	case *VarData:
		dj.Type = typeToJSON(data.Type)
		dj.Value = exprToJSON(data.Value)
	case *TypeData:
		dj.Type = typeToJSON(data.Underlying)
	case *EnumData:
		for _, m := range data.Members {
			dj.Members = append(dj.Members, memberJSON{Name: m.Name, Span: spanToJSON(m.Span), Ordinal: m.Ordinal})
		}
	}
	return dj
}

func typeToJSON(t *TypeExpr) *typeJSON {
	if t == nil {
		return nil
	}
	kind := map[TypeKind]string{
		TypeName: "name", TypeSlice: "slice", TypeMap: "map", TypeChan: "chan", TypePromise: "promise",
	}[t.Kind]
	return &typeJSON{
		Kind: kind,
		Span: spanToJSON(t.Span),
		Name: t.Name,
		Key:  typeToJSON(t.Key),
		Elem: typeToJSON(t.Elem),
	}
}

func blockToJSON(b *Block) *blockJSON {
	if b == nil {
		return nil
	}
	bj := &blockJSON{Span: spanToJSON(b.Span)}
	for _, s := range b.Stmts {
		bj.Stmts = append(bj.Stmts, stmtToJSON(s))
	}
	return bj
}

func stmtToJSON(s *Stmt) stmtJSON {
	sj := stmtJSON{Kind: s.Kind.String(), Span: spanToJSON(s.Span)}
	switch data := s.Data.(type) {
	case *LetData:
		sj.Names = data.Names
		for _, sp := range data.NameSpans {
			sj.NameSpans = append(sj.NameSpans, spanToJSON(sp))
		}
		sj.Type = typeToJSON(data.Type)
		sj.Value = exprToJSON(data.Value)
	case *AssignData:
		sj.Target = exprToJSON(data.Target)
		sj.Value = exprToJSON(data.Value)
	case *ReturnData:
		for _, v := range data.Values {
			sj.Values = append(sj.Values, *exprToJSON(v))
		}
	case *IfData:
		sj.Cond = exprToJSON(data.Cond)
		sj.Then = blockToJSON(data.Then)
		if data.Else != nil {
			ej := stmtToJSON(data.Else)
			sj.Else = &ej
		}
	case *SwitchData:
		sj.Value = exprToJSON(data.Value)
		for _, c := range data.Cases {
			cj := caseJSON{Span: spanToJSON(c.Span), Body: blockToJSON(c.Body)}
			for _, v := range c.Values {
				cj.Values = append(cj.Values, *exprToJSON(v))
			}
			sj.Cases = append(sj.Cases, cj)
		}
		sj.Default = blockToJSON(data.Default)
	case *ExprStmtData:
		sj.X = exprToJSON(data.X)
	case *BlockStmtData:
		sj.Block = blockToJSON(data.Block)
	}
	return sj
}

func exprToJSON(e *Expr) *exprJSON {
	if e == nil {
		return nil
	}
	ej := &exprJSON{Kind: e.Kind.String(), Span: spanToJSON(e.Span)}
	switch data := e.Data.(type) {
	case *IdentData:
		ej.Name = data.Name
	case *LitData:
		ej.Lit = data.Kind.String()
		ej.Text = data.Text
		ej.Int = data.IntValue
		ej.Float = data.FloatValue
		ej.Bool = data.BoolValue
		ej.Str = data.StringValue
	case *CallData:
		ej.Callee = exprToJSON(data.Callee)
		for _, a := range data.Args {
			ej.Args = append(ej.Args, *exprToJSON(a))
		}
	case *BinaryData:
		ej.Op = data.Op.String()
		ej.Left = exprToJSON(data.Left)
		ej.Right = exprToJSON(data.Right)
	case *UnaryData:
		ej.Op = data.Op.String()
		ej.X = exprToJSON(data.X)
	case *SelectorData:
		ej.X = exprToJSON(data.X)
		ej.Sel = data.Sel
		sp := spanToJSON(data.SelSpan)
		ej.SelSpan = &sp
	case *IndexData:
		ej.X = exprToJSON(data.X)
		ej.Index = exprToJSON(data.Index)
	case *PropagateData:
		ej.Call = exprToJSON(data.Call)
	case *LaunchData:
		ej.Call = exprToJSON(data.Call)
	}
	return ej
}

func unitFromJSON(uj *unitJSON) (*Unit, error) {
	out := &Unit{}
	for _, pj := range uj.Packages {
		p := &Package{Name: pj.Name}
		for i := range pj.Files {
			f, err := fileFromJSON(&pj.Files[i])
			if err != nil {
				return nil, err
			}
			p.Files = append(p.Files, f)
		}
		out.Packages = append(out.Packages, p)
	}
	return out, nil
}

func fileFromJSON(fj *fileJSON) (*File, error) {
	f := &File{
		Path: fj.Path,
		ID:   source.FileID(fj.ID),
		Span: spanFromJSON(fj.Span),
	}
	for _, ij := range fj.Imports {
		f.Imports = append(f.Imports, &Import{
			Span: spanFromJSON(ij.Span), Path: ij.Path, Alias: ij.Alias, Open: ij.Open,
		})
	}
	for i := range fj.Decls {
		d, err := declFromJSON(&fj.Decls[i])
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", fj.Path, err)
		}
		f.Decls = append(f.Decls, d)
	}
	return f, nil
}

func visFromJSON(s string) (Visibility, error) {
	switch s {
	case "":
		return VisNone, nil
	case "private":
		return VisPrivate, nil
	case "package":
		return VisPackage, nil
	case "public":
		return VisPublic, nil
	default:
		return VisNone, fmt.Errorf("unknown visibility %q", s)
	}
}

func declFromJSON(dj *declJSON) (*Decl, error) {
	vis, err := visFromJSON(dj.Vis)
	if err != nil {
		return nil, err
	}
	d := &Decl{
		Span:     spanFromJSON(dj.Span),
		Vis:      vis,
		Name:     dj.Name,
		NameSpan: spanFromJSON(dj.NameSpan),
	}
	switch dj.Kind {
	case "func":
		d.Kind = DeclFunc
		fd := &FuncData{}
		for _, pj := range dj.Params {
			t, err := typeFromJSON(pj.Type)
			if err != nil {
				return nil, err
			}
			fd.Params = append(fd.Params, Param{Name: pj.Name, Span: spanFromJSON(pj.Span), Type: t})
		}
		for _, rj := range dj.Results {
			t, err := typeFromJSON(rj)
			if err != nil {
				return nil, err
			}
			fd.Results = append(fd.Results, t)
		}
		if fd.Body, err = blockFromJSON(dj.Body); err != nil {
			return nil, err
		}
		d.Data = fd
	case "var", "const":
		if dj.Kind == "var" {
			d.Kind = DeclVar
		} else {
			d.Kind = DeclConst
		}
		vd := &VarData{}
		if vd.Type, err = typeFromJSON(dj.Type); err != nil {
			return nil, err
		}
		if vd.Value, err = exprFromJSON(dj.Value); err != nil {
			return nil, err
		}
		d.Data = vd
	case "type":
		d.Kind = DeclType
		td := &TypeData{}
		if td.Underlying, err = typeFromJSON(dj.Type); err != nil {
			return nil, err
		}
		d.Data = td
	case "enum":
		d.Kind = DeclEnum
		ed := &EnumData{}
		for _, mj := range dj.Members {
			ed.Members = append(ed.Members, EnumMember{Name: mj.Name, Span: spanFromJSON(mj.Span), Ordinal: mj.Ordinal})
		}
		d.Data = ed
	default:
		return nil, fmt.Errorf("unknown decl kind %q", dj.Kind)
	}
	return d, nil
}

func typeFromJSON(tj *typeJSON) (*TypeExpr, error) {
	if tj == nil {
		return nil, nil
	}
	t := &TypeExpr{Span: spanFromJSON(tj.Span), Name: tj.Name}
	var err error
	switch tj.Kind {
	case "name":
		t.Kind = TypeName
	case "slice":
		t.Kind = TypeSlice
	case "map":
		t.Kind = TypeMap
	case "chan":
		t.Kind = TypeChan
	case "promise":
		t.Kind = TypePromise
	default:
		return nil, fmt.Errorf("unknown type kind %q", tj.Kind)
	}
	if t.Key, err = typeFromJSON(tj.Key); err != nil {
		return nil, err
	}
	if t.Elem, err = typeFromJSON(tj.Elem); err != nil {
		return nil, err
	}
	return t, nil
}

func blockFromJSON(bj *blockJSON) (*Block, error) {
	if bj == nil {
		return nil, nil
	}
	b := &Block{Span: spanFromJSON(bj.Span)}
	for i := range bj.Stmts {
		s, err := stmtFromJSON(&bj.Stmts[i])
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func stmtFromJSON(sj *stmtJSON) (*Stmt, error) {
	s := &Stmt{Span: spanFromJSON(sj.Span)}
	var err error
	switch sj.Kind {
	case "Let":
		s.Kind = StmtLet
		ld := &LetData{Names: sj.Names}
		for _, sp := range sj.NameSpans {
			ld.NameSpans = append(ld.NameSpans, spanFromJSON(sp))
		}
		if ld.Type, err = typeFromJSON(sj.Type); err != nil {
			return nil, err
		}
		if ld.Value, err = exprFromJSON(sj.Value); err != nil {
			return nil, err
		}
		s.Data = ld
	case "Assign":
		s.Kind = StmtAssign
		ad := &AssignData{}
		if ad.Target, err = exprFromJSON(sj.Target); err != nil {
			return nil, err
		}
		if ad.Value, err = exprFromJSON(sj.Value); err != nil {
			return nil, err
		}
		s.Data = ad
	case "Return":
		s.Kind = StmtReturn
		rd := &ReturnData{}
		for i := range sj.Values {
			v, err := exprFromJSON(&sj.Values[i])
			if err != nil {
				return nil, err
			}
			rd.Values = append(rd.Values, v)
		}
		s.Data = rd
	case "If":
		s.Kind = StmtIf
		id := &IfData{}
		if id.Cond, err = exprFromJSON(sj.Cond); err != nil {
			return nil, err
		}
		if id.Then, err = blockFromJSON(sj.Then); err != nil {
			return nil, err
		}
		if sj.Else != nil {
			if id.Else, err = stmtFromJSON(sj.Else); err != nil {
				return nil, err
			}
		}
		s.Data = id
	case "Switch":
		s.Kind = StmtSwitch
		sd := &SwitchData{}
		if sd.Value, err = exprFromJSON(sj.Value); err != nil {
			return nil, err
		}
		for i := range sj.Cases {
			cj := &sj.Cases[i]
			c := SwitchCase{Span: spanFromJSON(cj.Span)}
			for j := range cj.Values {
				v, err := exprFromJSON(&cj.Values[j])
				if err != nil {
					return nil, err
				}
				c.Values = append(c.Values, v)
			}
			if c.Body, err = blockFromJSON(cj.Body); err != nil {
				return nil, err
			}
			sd.Cases = append(sd.Cases, c)
		}
		if sd.Default, err = blockFromJSON(sj.Default); err != nil {
			return nil, err
		}
		s.Data = sd
	case "Expr":
		s.Kind = StmtExpr
		ed := &ExprStmtData{}
		if ed.X, err = exprFromJSON(sj.X); err != nil {
			return nil, err
		}
		s.Data = ed
	case "Block":
		s.Kind = StmtBlock
		bd := &BlockStmtData{}
		if bd.Block, err = blockFromJSON(sj.Block); err != nil {
			return nil, err
		}
		s.Data = bd
	default:
		return nil, fmt.Errorf("unknown stmt kind %q", sj.Kind)
	}
	return s, nil
}

func binOpFromJSON(s string) (BinOp, bool) {
	for op := OpAdd; op <= OpOr; op++ {
		if op.String() == s {
			return op, true
		}
	}
	return 0, false
}

func exprFromJSON(ej *exprJSON) (*Expr, error) {
	if ej == nil {
		return nil, nil
	}
	e := &Expr{Span: spanFromJSON(ej.Span)}
	var err error
	switch ej.Kind {
	case "Ident":
		e.Kind = ExprIdent
		e.Data = &IdentData{Name: ej.Name}
	case "Lit":
		e.Kind = ExprLit
		ld := &LitData{
			Text:        ej.Text,
			IntValue:    ej.Int,
			FloatValue:  ej.Float,
			BoolValue:   ej.Bool,
			StringValue: ej.Str,
		}
		switch ej.Lit {
		case "int":
			ld.Kind = LitInt
		case "float":
			ld.Kind = LitFloat
		case "string":
			ld.Kind = LitString
		case "bool":
			ld.Kind = LitBool
		case "nil":
			ld.Kind = LitNil
		default:
			return nil, fmt.Errorf("unknown literal kind %q", ej.Lit)
		}
		e.Data = ld
	case "Call":
		e.Kind = ExprCall
		cd := &CallData{}
		if cd.Callee, err = exprFromJSON(ej.Callee); err != nil {
			return nil, err
		}
		for i := range ej.Args {
			a, err := exprFromJSON(&ej.Args[i])
			if err != nil {
				return nil, err
			}
			cd.Args = append(cd.Args, a)
		}
		e.Data = cd
	case "Binary":
		e.Kind = ExprBinary
		op, ok := binOpFromJSON(ej.Op)
		if !ok {
			return nil, fmt.Errorf("unknown binary operator %q", ej.Op)
		}
		bd := &BinaryData{Op: op}
		if bd.Left, err = exprFromJSON(ej.Left); err != nil {
			return nil, err
		}
		if bd.Right, err = exprFromJSON(ej.Right); err != nil {
			return nil, err
		}
		e.Data = bd
	case "Unary":
		e.Kind = ExprUnary
		ud := &UnaryData{}
		switch ej.Op {
		case "-":
			ud.Op = OpNeg
		case "!":
			ud.Op = OpNot
		default:
			return nil, fmt.Errorf("unknown unary operator %q", ej.Op)
		}
		if ud.X, err = exprFromJSON(ej.X); err != nil {
			return nil, err
		}
		e.Data = ud
	case "Selector":
		e.Kind = ExprSelector
		sd := &SelectorData{Sel: ej.Sel}
		if ej.SelSpan != nil {
			sd.SelSpan = spanFromJSON(*ej.SelSpan)
		}
		if sd.X, err = exprFromJSON(ej.X); err != nil {
			return nil, err
		}
		e.Data = sd
	case "Index":
		e.Kind = ExprIndex
		id := &IndexData{}
		if id.X, err = exprFromJSON(ej.X); err != nil {
			return nil, err
		}
		if id.Index, err = exprFromJSON(ej.Index); err != nil {
			return nil, err
		}
		e.Data = id
	case "Propagate":
		e.Kind = ExprPropagate
		pd := &PropagateData{}
		if pd.Call, err = exprFromJSON(ej.Call); err != nil {
			return nil, err
		}
		e.Data = pd
	case "Launch":
		e.Kind = ExprLaunch
		ld := &LaunchData{}
		if ld.Call, err = exprFromJSON(ej.Call); err != nil {
			return nil, err
		}
		e.Data = ld
	default:
		return nil, fmt.Errorf("unknown expr kind %q", ej.Kind)
	}
	return e, nil
}
