package parse

import (
	"strings"

	"github.com/robfig/ngc/ast"
)

// forLoopContextVariables are implicitly declared in the body of a for loop.
var forLoopContextVariables = []string{"$index", "$first", "$last", "$even", "$odd", "$count"}

// param is one semicolon-separated parameter of a block, trimmed.
type param struct {
	text string
	pos  ast.Pos
}

// keyword returns the rest of p after the leading word kw, and whether p
// begins with it.
func (p param) keyword(kw string) (param, bool) {
	if !strings.HasPrefix(p.text, kw) {
		return param{}, false
	}
	var rest = p.text[len(kw):]
	if rest != "" && !isSpace(rune(rest[0])) {
		return param{}, false
	}
	return trimParam(rest, p.pos+ast.Pos(len(kw))), true
}

func trimParam(s string, pos ast.Pos) param {
	var trimmed = strings.TrimLeftFunc(s, isSpace)
	pos += ast.Pos(len(s) - len(trimmed))
	return param{strings.TrimRightFunc(trimmed, isSpace), pos}
}

// blockParts splits the text of a block tag into its name and parameters.
// "{:else if cond}" is named "else if".
func blockParts(tok item) (name string, params []param) {
	var inner = tok.val[2 : len(tok.val)-1]
	var pos = tok.pos + 2
	var i = 0
	for i < len(inner) && isNameChar(rune(inner[i])) {
		i++
	}
	name = inner[:i]
	var rest = trimParam(inner[i:], pos+ast.Pos(i))
	if name == "else" {
		if p, ok := rest.keyword("if"); ok {
			name, rest = "else if", p
		}
	}
	return name, splitParams(rest)
}

// splitParams splits p on semicolons outside of quotes and brackets,
// dropping empty parameters.
func splitParams(p param) []param {
	var (
		params []param
		depth  = 0
		quote  byte
		start  = 0
	)
	var add = func(end int) {
		if q := trimParam(p.text[start:end], p.pos+ast.Pos(start)); q.text != "" {
			params = append(params, q)
		}
		start = end + 1
	}
	for i := 0; i < len(p.text); i++ {
		var c = p.text[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ';' && depth == 0:
			add(i)
		}
	}
	add(len(p.text))
	return params
}

// block parses {#for}, {#if} and {#switch} blocks.
func (t *tree) block(open item) ast.Node {
	var name, params = blockParts(open)
	switch name {
	case "for":
		return t.forBlock(open, params)
	case "if":
		return t.ifBlock(open, params)
	case "switch":
		return t.switchBlock(open, params)
	}
	t.errorAt(open.pos, "unrecognized block {#%s}", name)
	return nil
}

// forBlock:
//	"{#for" name "of" expr ";" "track" expr [";" "let" alias ("," alias)*] "}"
//	nodeList [ "{:empty}" nodeList ] "{/for}"
func (t *tree) forBlock(open item, params []param) ast.Node {
	if len(params) == 0 {
		t.errorAt(open.pos, "for loop must have an \"item of items\" expression")
	}

	var n = &ast.ForLoopBlock{}
	var first = params[0]
	var i = 0
	for i < len(first.text) && isIdentChar(first.text[i]) {
		i++
	}
	var rest, ok = trimParam(first.text[i:], first.pos+ast.Pos(i)).keyword("of")
	if i == 0 || !ok || rest.text == "" {
		t.errorAt(first.pos, "cannot parse for loop expression %q; expected \"item of items\"", first.text)
	}
	var itemSpan = ast.Span{Start: first.pos, End: first.pos + ast.Pos(i)}
	n.Item = &ast.Variable{Span: itemSpan, Name: first.text[:i], Value: "$implicit", KeySpan: itemSpan}
	n.Expression = t.parseExpr(rest.text, rest.pos)

	var aliases []*ast.Variable
	for _, p := range params[1:] {
		if track, ok := p.keyword("track"); ok {
			if n.TrackBy != nil {
				t.errorAt(p.pos, "for loop can only have one \"track\" expression")
			}
			n.TrackBy = t.parseExpr(track.text, track.pos)
			continue
		}
		if let, ok := p.keyword("let"); ok {
			aliases = append(aliases, t.loopAliases(let)...)
			continue
		}
		t.errorAt(p.pos, "unrecognized for loop parameter %q", p.text)
	}
	if n.TrackBy == nil {
		t.errorAt(open.pos, "for loop must have a \"track\" expression")
	}

	var openSpan = span(open)
	for _, name := range forLoopContextVariables {
		n.ContextVariables = append(n.ContextVariables, &ast.Variable{Span: openSpan, Name: name, Value: name, KeySpan: openSpan})
	}
	n.ContextVariables = append(n.ContextVariables, aliases...)

	n.Body = t.nodeList()
	var tok = t.next()
	if tok.typ == itemBlockBranch {
		if name, _ := blockParts(tok); name != "empty" {
			t.errorAt(tok.pos, "unexpected {:%s} in {#for} block", name)
		}
		var body = t.nodeList()
		n.Empty = &ast.ForLoopEmpty{Span: ast.Span{Start: tok.pos, End: t.peek().pos}, Body: body}
		tok = t.next()
	}
	var end = t.expectBlockClose(open, tok, "for")
	n.Span = ast.Span{Start: open.pos, End: end.end()}
	return n
}

// loopAliases parses "i = $index, e = $even".
func (t *tree) loopAliases(p param) []*ast.Variable {
	var vars []*ast.Variable
	var start = 0
	for start <= len(p.text) {
		var end = strings.IndexByte(p.text[start:], ',')
		if end < 0 {
			end = len(p.text)
		} else {
			end += start
		}
		var part = trimParam(p.text[start:end], p.pos+ast.Pos(start))
		var eq = strings.IndexByte(part.text, '=')
		if eq < 0 {
			t.errorAt(part.pos, "invalid for loop alias %q; expected \"name = $variable\"", part.text)
		}
		var name = trimParam(part.text[:eq], part.pos)
		var value = trimParam(part.text[eq+1:], part.pos+ast.Pos(eq+1))
		if !isContextVariable(value.text) {
			t.errorAt(value.pos, "unknown for loop context variable %q", value.text)
		}
		var keySpan = ast.Span{Start: name.pos, End: name.pos + ast.Pos(len(name.text))}
		var valueSpan = ast.Span{Start: value.pos, End: value.pos + ast.Pos(len(value.text))}
		vars = append(vars, &ast.Variable{
			Span:      ast.Span{Start: keySpan.Start, End: valueSpan.End},
			Name:      name.text,
			Value:     value.text,
			KeySpan:   keySpan,
			ValueSpan: &valueSpan,
		})
		start = end + 1
	}
	return vars
}

func isContextVariable(name string) bool {
	for _, v := range forLoopContextVariables {
		if v == name {
			return true
		}
	}
	return false
}

// ifBlock:
//	"{#if" expr [";" "as" name] "}" nodeList
//	( "{:else if" expr "}" nodeList )* [ "{:else}" nodeList ] "{/if}"
func (t *tree) ifBlock(open item, params []param) ast.Node {
	if len(params) == 0 {
		t.errorAt(open.pos, "conditional block does not have an expression")
	}
	var branch = &ast.IfBlockBranch{Condition: t.parseExpr(params[0].text, params[0].pos)}
	for _, p := range params[1:] {
		var as, ok = p.keyword("as")
		if !ok {
			t.errorAt(p.pos, "unrecognized conditional parameter %q", p.text)
		}
		if branch.Alias != nil {
			t.errorAt(p.pos, "conditional can only have one \"as\" expression")
		}
		if !isIdent(as.text) {
			t.errorAt(as.pos, "invalid conditional alias %q", as.text)
		}
		var aliasSpan = ast.Span{Start: as.pos, End: as.pos + ast.Pos(len(as.text))}
		branch.Alias = &ast.Variable{Span: aliasSpan, Name: as.text, KeySpan: aliasSpan}
	}

	var n = &ast.IfBlock{}
	var start = open.pos
	var sawElse = false
	for {
		branch.Body = t.nodeList()
		branch.Span = ast.Span{Start: start, End: t.peek().pos}
		n.Branches = append(n.Branches, branch)

		var tok = t.next()
		if tok.typ != itemBlockBranch {
			var end = t.expectBlockClose(open, tok, "if")
			n.Span = ast.Span{Start: open.pos, End: end.end()}
			return n
		}
		if sawElse {
			t.errorAt(tok.pos, "{:else} must be the last branch of a conditional block")
		}
		var name, params = blockParts(tok)
		switch name {
		case "else if":
			if len(params) != 1 {
				t.errorAt(tok.pos, "{:else if} must have exactly one condition")
			}
			branch = &ast.IfBlockBranch{Condition: t.parseExpr(params[0].text, params[0].pos)}
		case "else":
			if len(params) != 0 {
				t.errorAt(tok.pos, "{:else} cannot have parameters")
			}
			sawElse = true
			branch = &ast.IfBlockBranch{}
		default:
			t.errorAt(tok.pos, "unexpected {:%s} in {#if} block", name)
		}
		start = tok.pos
	}
}

// switchBlock:
//	"{#switch" expr "}" ( "{:case" expr "}" nodeList | "{:default}" nodeList )* "{/switch}"
func (t *tree) switchBlock(open item, params []param) ast.Node {
	if len(params) != 1 {
		t.errorAt(open.pos, "switch block must have exactly one expression")
	}
	var n = &ast.SwitchBlock{Expression: t.parseExpr(params[0].text, params[0].pos)}
	t.switchFiller()

	var sawDefault = false
	for {
		var tok = t.next()
		if tok.typ != itemBlockBranch {
			var end = t.expectBlockClose(open, tok, "switch")
			n.Span = ast.Span{Start: open.pos, End: end.end()}
			return n
		}
		var name, params = blockParts(tok)
		var c = &ast.SwitchCase{}
		switch name {
		case "case":
			if len(params) != 1 {
				t.errorAt(tok.pos, "{:case} must have exactly one expression")
			}
			c.Expression = t.parseExpr(params[0].text, params[0].pos)
		case "default":
			if sawDefault {
				t.errorAt(tok.pos, "switch block can only have one {:default}")
			}
			sawDefault = true
		default:
			t.errorAt(tok.pos, "unexpected {:%s} in {#switch} block", name)
		}
		c.Body = t.nodeList()
		c.Span = ast.Span{Start: tok.pos, End: t.peek().pos}
		n.Cases = append(n.Cases, c)
	}
}

// switchFiller consumes the content between {#switch} and its first case,
// which may only be whitespace.
func (t *tree) switchFiller() {
	for _, n := range t.nodeList() {
		if text, ok := n.(*ast.Text); !ok || !allSpace(text.Value) {
			t.errorAt(n.SourceSpan().Start, "switch block can only contain {:case} and {:default} blocks")
		}
	}
}

// expectBlockClose checks that tok closes the block opened by open.
func (t *tree) expectBlockClose(open, tok item, name string) item {
	if tok.typ != itemBlockClose {
		t.errorAt(open.pos, "unclosed block {#%s}", name)
	}
	if closeName, _ := blockParts(tok); closeName != name {
		t.errorAt(tok.pos, "unexpected {/%s}; expected {/%s}", closeName, name)
	}
	return tok
}

// icu:
//	"{" switch "," type "," ( case "{" nodeList "}" )+ "}"
func (t *tree) icu(open item) ast.Node {
	var sw = t.expect(itemIcuSwitch, "ICU expression")
	var n = &ast.Icu{Switch: t.parseExpr(sw.val, sw.pos)}
	if ast.IsEmpty(n.Switch) {
		t.errorAt(sw.pos, "ICU expression must have a switch value")
	}
	var typ = t.expect(itemIcuType, "ICU expression")
	switch typ.val {
	case "plural", "select", "selectordinal":
		n.Type = typ.val
	default:
		t.errorAt(typ.pos, "unknown ICU type %q; expected plural or select", typ.val)
	}
	for {
		var tok = t.next()
		switch tok.typ {
		case itemIcuEnd:
			if len(n.Cases) == 0 {
				t.errorAt(open.pos, "ICU expression must have at least one case")
			}
			n.Span = ast.Span{Start: open.pos, End: tok.end()}
			return n
		case itemIcuCase:
			t.expect(itemIcuCaseStart, "ICU case")
			var body = t.nodeList()
			var end = t.expect(itemIcuCaseEnd, "ICU case")
			n.Cases = append(n.Cases, &ast.IcuCase{
				Span:  ast.Span{Start: tok.pos, End: end.end()},
				Value: tok.val,
				Body:  body,
			})
		default:
			t.unexpected(tok, "ICU expression")
		}
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isIdent(s string) bool {
	if s == "" || ('0' <= s[0] && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
