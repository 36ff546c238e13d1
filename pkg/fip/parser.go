package fip

import (
	"fmt"
	"strings"
)

// Parser is a recursive-descent parser with one-token lookahead over the
// token stream produced by Lexer (spec §4.2).
type Parser struct {
	file   string
	tokens []Token
	pos    int
}

// NewParser builds a Parser over an already-lexed token stream. file is
// used only to stamp diagnostics.
func NewParser(file string, tokens []Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// ParseFile lexes and parses src in one call.
func ParseFile(file, src string) (*Program, error) {
	tokens, err := NewLexer(file, src).Lex()
	if err != nil {
		return nil, err
	}
	return NewParser(file, tokens).ParseProgram()
}

func (p *Parser) cur() Token  { return p.tokens[p.pos] }
func (p *Parser) curLoc() Location {
	return Location{File: p.file, Pos: p.cur().Pos}
}

func (p *Parser) advance() Token {
	t := p.cur()
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Loc: p.curLoc(), Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.cur().Kind != kind {
		return Token{}, p.errorf("expected %s, found %s", kind, p.cur().Kind)
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == TokNewline {
		p.advance()
	}
}

func (p *Parser) skipSeparators() {
	for p.cur().Kind == TokNewline || p.cur().Kind == TokSemicolon {
		p.advance()
	}
}

// ParseProgram parses a whole file: a sequence of top-level forms
// terminated by end of file.
func (p *Parser) ParseProgram() (*Program, error) {
	start := p.curLoc()
	var forms []Expr
	p.skipSeparators()
	for p.cur().Kind != TokEOF {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
		if p.cur().Kind != TokEOF && p.cur().Kind != TokNewline && p.cur().Kind != TokSemicolon {
			return nil, p.errorf("expected newline or ';' between statements, found %s", p.cur().Kind)
		}
		p.skipSeparators()
	}
	return &Program{baseNode: baseNode{loc: start}, Forms: forms}, nil
}

// parseForm implements Statement ::= use-statement | async function-
// definition | binding | expression.
func (p *Parser) parseForm() (Expr, error) {
	switch p.cur().Kind {
	case TokUse:
		return p.parseUse()
	case TokAsync:
		return p.parseAsyncBinding()
	}

	if binding, ok, err := p.tryParseBinding(); err != nil {
		return nil, err
	} else if ok {
		return binding, nil
	}

	return p.parseExpression()
}

func (p *Parser) parseAsyncBinding() (Expr, error) {
	loc := p.curLoc()
	p.advance() // 'async'
	binding, ok, err := p.tryParseBinding()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.errorf("expected a function binding after 'async'")
	}
	fn, ok := binding.Value.(*FuncLit)
	if !ok {
		return nil, &ParseError{Loc: loc, Message: "'async' may only prefix a function binding"}
	}
	fn.Async = true
	return binding, nil
}

// tryParseBinding attempts `pattern : expr`, backtracking entirely if the
// lookahead does not confirm a binding (so callers can fall back to
// parsing a plain expression, e.g. an object or array literal that merely
// starts the same way a pattern would).
func (p *Parser) tryParseBinding() (*Binding, bool, error) {
	save := p.pos
	loc := p.curLoc()

	pat, ok := p.tryParsePattern()
	if !ok {
		p.pos = save
		return nil, false, nil
	}
	if p.cur().Kind != TokColon {
		p.pos = save
		return nil, false, nil
	}
	p.advance() // ':'
	p.skipNewlines()

	value, err := p.parseExpression()
	if err != nil {
		return nil, false, err
	}

	if name, isIdent := identPatternName(pat); isIdent {
		if fn, isFn := value.(*FuncLit); isFn {
			fn.Name = name
			if err := checkSuffixAgreement(loc, name, fn); err != nil {
				return nil, false, err
			}
		}
	}

	return &Binding{baseNode: baseNode{loc: loc}, Pattern: pat, Value: value}, true, nil
}

func identPatternName(pat Pattern) (string, bool) {
	ip, ok := pat.(*IdentPattern)
	if !ok {
		return "", false
	}
	return ip.Name, true
}

func checkSuffixAgreement(loc Location, name string, fn *FuncLit) error {
	nameImpure := strings.HasSuffix(name, "!")
	namePredicate := strings.HasSuffix(name, "?")
	// A literal with no suffix of its own takes the binding name's suffix.
	if !fn.Impure && !fn.Predicate {
		fn.Impure, fn.Predicate = nameImpure, namePredicate
		return nil
	}
	if nameImpure != fn.Impure || namePredicate != fn.Predicate {
		return &ParseError{Loc: loc, Message: fmt.Sprintf(
			"binding name %q suffix disagrees with function literal's suffix", name)}
	}
	return nil
}

// tryParsePattern parses an identifier or a nested array/object
// destructuring pattern. It fully backtracks on failure.
func (p *Parser) tryParsePattern() (Pattern, bool) {
	switch p.cur().Kind {
	case TokIdent:
		name := p.advance().Text
		return &IdentPattern{Name: name}, true
	case TokLBracket:
		return p.tryParseArrayPattern()
	case TokLBrace:
		return p.tryParseObjectPattern()
	default:
		return nil, false
	}
}

func (p *Parser) tryParseArrayPattern() (Pattern, bool) {
	save := p.pos
	p.advance() // '['
	p.skipNewlines()
	var elems []Pattern
	for p.cur().Kind != TokRBracket {
		if p.cur().Kind == TokEOF {
			p.pos = save
			return nil, false
		}
		sub, ok := p.tryParsePattern()
		if !ok {
			p.pos = save
			return nil, false
		}
		elems = append(elems, sub)
		p.skipNewlines()
		if p.cur().Kind == TokComma {
			p.advance()
			p.skipNewlines()
		}
	}
	p.advance() // ']'
	return &ArrayPattern{Elements: elems}, true
}

func (p *Parser) tryParseObjectPattern() (Pattern, bool) {
	save := p.pos
	p.advance() // '{'
	p.skipNewlines()
	var fields []ObjectPatternField
	for p.cur().Kind != TokRBrace {
		if p.cur().Kind != TokIdent {
			p.pos = save
			return nil, false
		}
		key := p.advance().Text
		if p.cur().Kind == TokColon {
			p.advance()
			p.skipNewlines()
			sub, ok := p.tryParsePattern()
			if !ok {
				p.pos = save
				return nil, false
			}
			fields = append(fields, ObjectPatternField{Key: key, Nested: sub})
		} else {
			fields = append(fields, ObjectPatternField{Key: key})
		}
		p.skipNewlines()
		if p.cur().Kind == TokComma {
			p.advance()
			p.skipNewlines()
		}
	}
	p.advance() // '}'
	return &ObjectPattern{Fields: fields}, true
}

// parseUse implements the three forms of spec §4.2/§4.5.
func (p *Parser) parseUse() (Expr, error) {
	loc := p.curLoc()
	p.advance() // 'use'
	p.skipNewlines()

	if p.cur().Kind == TokLBrace {
		p.advance()
		p.skipNewlines()
		var names []string
		for p.cur().Kind != TokRBrace {
			name, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			names = append(names, name.Text)
			p.skipNewlines()
			if p.cur().Kind == TokComma {
				p.advance()
				p.skipNewlines()
			}
		}
		if _, err := p.expect(TokRBrace); err != nil {
			return nil, err
		}
		p.skipNewlines()
		if _, err := p.expect(TokFrom); err != nil {
			return nil, err
		}
		p.skipNewlines()
		path, err := p.parseModulePath()
		if err != nil {
			return nil, err
		}
		return &Use{baseNode: baseNode{loc: loc}, Form: UseSelective, Names: names, ModulePath: path}, nil
	}

	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()

	if p.cur().Kind == TokAs {
		p.advance()
		p.skipNewlines()
		alias, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		p.skipNewlines()
		if _, err := p.expect(TokFrom); err != nil {
			return nil, err
		}
		p.skipNewlines()
		path, err := p.parseModulePath()
		if err != nil {
			return nil, err
		}
		return &Use{baseNode: baseNode{loc: loc}, Form: UseNamespace, Names: []string{name.Text}, Alias: alias.Text, ModulePath: path}, nil
	}

	if _, err := p.expect(TokFrom); err != nil {
		return nil, err
	}
	p.skipNewlines()
	path, err := p.parseModulePath()
	if err != nil {
		return nil, err
	}
	return &Use{baseNode: baseNode{loc: loc}, Form: UseSingle, Names: []string{name.Text}, ModulePath: path}, nil
}

func (p *Parser) parseModulePath() (string, error) {
	tok, err := p.expect(TokString)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// --- Expressions, weakest to strongest precedence ---

var binaryPrecedence = map[TokenKind]int{
	TokPipe: 0,
	TokAmp:  1,
	TokEq:   2, TokNotEq: 2,
	TokLt: 3, TokGt: 3, TokLtEq: 3, TokGtEq: 3,
	TokPlus: 4, TokMinus: 4,
	TokStar: 5, TokSlash: 5,
}

var binaryOpText = map[TokenKind]string{
	TokPipe: "|", TokAmp: "&", TokEq: "=", TokNotEq: "≠",
	TokLt: "<", TokGt: ">", TokLtEq: "<=", TokGtEq: ">=",
	TokPlus: "+", TokMinus: "-", TokStar: "*", TokSlash: "/",
}

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binaryPrecedence[p.cur().Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		loc := p.curLoc()
		op := binaryOpText[p.cur().Kind]
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{baseNode: baseNode{loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.cur().Kind == TokMinus || p.cur().Kind == TokPlus {
		loc := p.curLoc()
		op := p.cur().Text
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{baseNode: baseNode{loc: loc}, Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case TokLParen:
			loc := p.curLoc()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &Call{baseNode: baseNode{loc: loc}, Callee: expr, Args: args}
		case TokDot:
			loc := p.curLoc()
			p.advance()
			name, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			expr = &PropertyAccess{baseNode: baseNode{loc: loc}, Object: expr, Property: name.Text}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	p.advance() // '('
	p.skipNewlines()
	var args []Expr
	for p.cur().Kind != TokRParen {
		if p.cur().Kind == TokEOF {
			return nil, p.errorf("unterminated call, expected ')'")
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines()
		if p.cur().Kind == TokComma {
			p.advance()
			p.skipNewlines()
		}
	}
	p.advance() // ')'
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	loc := p.curLoc()
	switch p.cur().Kind {
	case TokNumber:
		tok := p.advance()
		return &NumberLit{baseNode: baseNode{loc: loc}, Value: tok.Number}, nil
	case TokTrue:
		p.advance()
		return &BoolLit{baseNode: baseNode{loc: loc}, Value: true}, nil
	case TokFalse:
		p.advance()
		return &BoolLit{baseNode: baseNode{loc: loc}, Value: false}, nil
	case TokNull:
		p.advance()
		return &NullLit{baseNode: baseNode{loc: loc}}, nil
	case TokString:
		tok := p.advance()
		return p.parseStringTemplate(loc, tok.Text)
	case TokIdent:
		tok := p.advance()
		return &Ident{baseNode: baseNode{loc: loc}, Name: tok.Text}, nil
	case TokAwait:
		p.advance()
		inner, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return &Await{baseNode: baseNode{loc: loc}, Value: inner}, nil
	case TokLBracket:
		return p.parseArrayLit()
	case TokLBrace:
		return p.parseBraceExpr()
	case TokLParen:
		return p.parseParenOrFuncLit()
	case TokEllipsis:
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &SpreadExpr{baseNode: baseNode{loc: loc}, Value: inner}, nil
	default:
		return nil, p.errorf("unexpected token %s", p.cur().Kind)
	}
}

func (p *Parser) parseArrayLit() (Expr, error) {
	loc := p.curLoc()
	p.advance() // '['
	p.skipNewlines()
	var elems []Expr
	for p.cur().Kind != TokRBracket {
		if p.cur().Kind == TokEOF {
			return nil, p.errorf("unterminated array literal, expected ']'")
		}
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		p.skipNewlines()
		if p.cur().Kind == TokComma {
			p.advance()
			p.skipNewlines()
		}
	}
	p.advance() // ']'
	return &ArrayLit{baseNode: baseNode{loc: loc}, Elements: elems}, nil
}

// parseBraceExpr disambiguates object literals from block expressions: it
// tries the strict `key: value` / `...spread` object grammar first,
// backtracking completely to parse a Block if that fails.
func (p *Parser) parseBraceExpr() (Expr, error) {
	save := p.pos
	if obj, err, ok := p.tryParseObjectLit(); ok {
		return obj, err
	}
	p.pos = save
	return p.parseBlock()
}

func (p *Parser) tryParseObjectLit() (Expr, error, bool) {
	save := p.pos
	loc := p.curLoc()
	p.advance() // '{'
	p.skipNewlines()
	var fields []ObjectField
	for p.cur().Kind != TokRBrace {
		if p.cur().Kind == TokEllipsis {
			p.advance()
			val, err := p.parseExpression()
			if err != nil {
				p.pos = save
				return nil, nil, false
			}
			fields = append(fields, ObjectField{Spread: val})
		} else if p.cur().Kind == TokIdent {
			key := p.advance().Text
			if p.cur().Kind != TokColon {
				p.pos = save
				return nil, nil, false
			}
			p.advance()
			p.skipNewlines()
			val, err := p.parseExpression()
			if err != nil {
				p.pos = save
				return nil, nil, false
			}
			fields = append(fields, ObjectField{Key: key, Value: val})
		} else {
			p.pos = save
			return nil, nil, false
		}
		p.skipNewlines()
		if p.cur().Kind == TokComma {
			p.advance()
			p.skipNewlines()
		} else if p.cur().Kind != TokRBrace {
			p.pos = save
			return nil, nil, false
		}
	}
	p.advance() // '}'
	return &ObjectLit{baseNode: baseNode{loc: loc}, Fields: fields}, nil, true
}

func (p *Parser) parseBlock() (*Block, error) {
	loc := p.curLoc()
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	p.skipSeparators()
	var forms []Expr
	for p.cur().Kind != TokRBrace {
		if p.cur().Kind == TokEOF {
			return nil, p.errorf("unterminated block, expected '}'")
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
		if p.cur().Kind != TokRBrace && p.cur().Kind != TokNewline && p.cur().Kind != TokSemicolon {
			return nil, p.errorf("expected newline or ';' between block forms, found %s", p.cur().Kind)
		}
		p.skipSeparators()
	}
	p.advance() // '}'
	return &Block{baseNode: baseNode{loc: loc}, Forms: forms}, nil
}

// parseParenOrFuncLit disambiguates `(expr)` grouping from `(params)
// [!|?] { body }` function literals by attempting the function-literal
// grammar first and backtracking completely on mismatch.
func (p *Parser) parseParenOrFuncLit() (Expr, error) {
	save := p.pos
	if fn, ok := p.tryParseFuncLit(); ok {
		return fn, nil
	}
	p.pos = save

	p.advance() // '('
	p.skipNewlines()
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *Parser) tryParseFuncLit() (Expr, bool) {
	save := p.pos
	loc := p.curLoc()
	p.advance() // '('
	p.skipNewlines()

	var params []string
	for p.cur().Kind != TokRParen {
		if p.cur().Kind != TokIdent {
			p.pos = save
			return nil, false
		}
		text := p.advance().Text
		if strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
			p.pos = save
			return nil, false
		}
		params = append(params, text)
		p.skipNewlines()
		if p.cur().Kind == TokComma {
			p.advance()
			p.skipNewlines()
		} else if p.cur().Kind != TokRParen {
			p.pos = save
			return nil, false
		}
	}
	p.advance() // ')'

	impure, predicate := false, false
	switch p.cur().Kind {
	case TokBang:
		impure = true
		p.advance()
	case TokQuestion:
		predicate = true
		p.advance()
	}

	if p.cur().Kind != TokLBrace {
		p.pos = save
		return nil, false
	}
	body, err := p.parseBlock()
	if err != nil {
		p.pos = save
		return nil, false
	}
	return &FuncLit{baseNode: baseNode{loc: loc}, Params: params, Body: body, Impure: impure, Predicate: predicate}, true
}

// parseStringTemplate carves `<expr>` interpolation segments out of a
// string token's body and re-lexes/re-parses each as a full expression
// (ground: original_source/src/parser.rs's parse_string_template).
func (p *Parser) parseStringTemplate(loc Location, raw string) (Expr, error) {
	var segments []StringSegment
	var lit strings.Builder
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '<' {
			lit.WriteRune(runes[i])
			continue
		}
		if lit.Len() > 0 {
			segments = append(segments, StringSegment{Literal: lit.String()})
			lit.Reset()
		}
		j := i + 1
		depth := 1
		for j < len(runes) && depth > 0 {
			if runes[j] == '<' {
				depth++
			} else if runes[j] == '>' {
				depth--
				if depth == 0 {
					break
				}
			}
			j++
		}
		if j >= len(runes) {
			return nil, &ParseError{Loc: loc, Message: "unterminated interpolation in string literal"}
		}
		inner := strings.TrimSpace(string(runes[i+1 : j]))
		if inner == "" {
			return nil, &ParseError{Loc: loc, Message: "interpolation expression cannot be empty"}
		}
		expr, err := parseSubExpression(p.file, inner)
		if err != nil {
			return nil, err
		}
		segments = append(segments, StringSegment{Expr: expr})
		i = j
	}
	if lit.Len() > 0 {
		segments = append(segments, StringSegment{Literal: lit.String()})
	}
	return &StringLit{baseNode: baseNode{loc: loc}, Segments: segments}, nil
}

func parseSubExpression(file, src string) (Expr, error) {
	tokens, err := NewLexer(file, src).Lex()
	if err != nil {
		return nil, err
	}
	sub := NewParser(file, tokens)
	expr, err := sub.parseExpression()
	if err != nil {
		return nil, err
	}
	sub.skipNewlines()
	if sub.cur().Kind != TokEOF {
		return nil, sub.errorf("unexpected tokens after interpolation expression")
	}
	return expr, nil
}
