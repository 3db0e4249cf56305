package lower

import (
	"fmt"
	"strconv"
	"strings"

	"goat/internal/ast"
)

// Dump renders a tree as readable source-like text. It exists for the CLI's
// lower command and for golden assertions in tests; it is not a formatter
// contract.
func Dump(unit *ast.Unit) string {
	var p printer
	for i, pkg := range unit.Packages {
		if i > 0 {
			p.line("")
		}
		p.line("package " + pkg.Name)
		for _, f := range pkg.Files {
			p.line("")
			p.line("// file " + f.Path)
			for _, imp := range f.Imports {
				if imp.Open {
					p.line(fmt.Sprintf("import open %q", imp.Path))
				} else if imp.Alias != "" {
					p.line(fmt.Sprintf("import %s %q", imp.Alias, imp.Path))
				} else {
					p.line(fmt.Sprintf("import %q", imp.Path))
				}
			}
			for _, d := range f.Decls {
				p.decl(d)
			}
		}
	}
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) line(s string) {
	if s != "" {
		p.sb.WriteString(strings.Repeat("\t", p.indent))
		p.sb.WriteString(s)
	}
	p.sb.WriteByte('\n')
}

func (p *printer) decl(d *ast.Decl) {
	vis := ""
	if d.Vis != ast.VisNone {
		vis = d.Vis.String() + " "
	}
	switch data := d.Data.(type) {
	case *ast.FuncData:
		p.line(vis + "func " + d.Name + signature(data))
		p.block(data.Body)
	case *ast.VarData:
		kw := "var"
		if d.Kind == ast.DeclConst {
			kw = "const"
		}
		s := vis + kw + " " + d.Name
		if data.Type != nil {
			s += " " + data.Type.String()
		}
		if data.Value != nil {
			s += " = " + exprString(data.Value)
		}
		p.line(s)
	case *ast.TypeData:
		p.line(vis + "type " + d.Name + " " + data.Underlying.String())
	case *ast.EnumData:
		p.line(vis + "enum " + d.Name + " {")
		p.indent++
		for _, m := range data.Members {
			if m.Ordinal != nil {
				p.line(fmt.Sprintf("%s = %d", m.Name, *m.Ordinal))
			} else {
				p.line(m.Name)
			}
		}
		p.indent--
		p.line("}")
	}
}

func signature(data *ast.FuncData) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, param := range data.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(param.Name + " " + param.Type.String())
	}
	sb.WriteByte(')')
	switch len(data.Results) {
	case 0:
	case 1:
		sb.WriteString(" " + data.Results[0].String())
	default:
		parts := make([]string, len(data.Results))
		for i, r := range data.Results {
			parts[i] = r.String()
		}
		sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	return sb.String()
}

func (p *printer) block(b *ast.Block) {
	if b == nil {
		p.line("{}")
		return
	}
	p.line("{")
	p.indent++
	for _, s := range b.Stmts {
		p.stmt(s)
	}
	p.indent--
	p.line("}")
}

func (p *printer) stmt(s *ast.Stmt) {
	if s == nil {
		return
	}
	switch data := s.Data.(type) {
	case *ast.LetData:
		out := "let " + strings.Join(data.Names, ", ")
		if data.Type != nil {
			out += " " + data.Type.String()
		}
		if data.Value != nil {
			out += " = " + exprString(data.Value)
		}
		p.line(out)
	case *ast.AssignData:
		p.line(exprString(data.Target) + " = " + exprString(data.Value))
	case *ast.ReturnData:
		if len(data.Values) == 0 {
			p.line("return")
			return
		}
		parts := make([]string, len(data.Values))
		for i, v := range data.Values {
			parts[i] = exprString(v)
		}
		p.line("return " + strings.Join(parts, ", "))
	case *ast.IfData:
		p.line("if " + exprString(data.Cond))
		p.block(data.Then)
		if data.Else != nil {
			p.line("else")
			p.stmt(data.Else)
		}
	case *ast.SwitchData:
		p.line("switch " + exprString(data.Value))
		p.line("{")
		p.indent++
		for _, cs := range data.Cases {
			parts := make([]string, len(cs.Values))
			for i, v := range cs.Values {
				parts[i] = exprString(v)
			}
			p.line("case " + strings.Join(parts, ", ") + ":")
			p.indent++
			for _, st := range cs.Body.Stmts {
				p.stmt(st)
			}
			p.indent--
		}
		if data.Default != nil {
			p.line("default:")
			p.indent++
			for _, st := range data.Default.Stmts {
				p.stmt(st)
			}
			p.indent--
		}
		p.indent--
		p.line("}")
	case *ast.ExprStmtData:
		p.line(exprString(data.X))
	case *ast.BlockStmtData:
		p.block(data.Block)
	}
}

func exprString(e *ast.Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch data := e.Data.(type) {
	case *ast.IdentData:
		return data.Name
	case *ast.LitData:
		return litString(data)
	case *ast.CallData:
		parts := make([]string, len(data.Args))
		for i, a := range data.Args {
			parts[i] = exprString(a)
		}
		return exprString(data.Callee) + "(" + strings.Join(parts, ", ") + ")"
	case *ast.SelectorData:
		return exprString(data.X) + "." + data.Sel
	case *ast.BinaryData:
		return operand(data.Left) + " " + data.Op.String() + " " + operand(data.Right)
	case *ast.UnaryData:
		return data.Op.String() + operand(data.X)
	case *ast.IndexData:
		return exprString(data.X) + "[" + exprString(data.Index) + "]"
	case *ast.PropagateData:
		return exprString(data.Call) + "¿"
	case *ast.LaunchData:
		return "launch " + exprString(data.Call)
	}
	return "<expr>"
}

// operand parenthesizes nested binary operands so precedence survives the
// round trip through text.
func operand(e *ast.Expr) string {
	if e != nil && e.Kind == ast.ExprBinary {
		return "(" + exprString(e) + ")"
	}
	return exprString(e)
}

func litString(data *ast.LitData) string {
	switch data.Kind {
	case ast.LitInt:
		return strconv.FormatInt(data.IntValue, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(data.FloatValue, 'g', -1, 64)
	case ast.LitString:
		return strconv.Quote(data.StringValue)
	case ast.LitBool:
		return strconv.FormatBool(data.BoolValue)
	case ast.LitNil:
		return "nil"
	}
	if data.Text != "" {
		return data.Text
	}
	return "<lit>"
}
