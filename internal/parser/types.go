package parser

import (
	"github.com/Swanchick/kyryl-script-sub000/internal/token"
	"github.com/Swanchick/kyryl-script-sub000/internal/types"
)

// parseType handles the `type` production (spec §4.3 grammar):
//
//	type := 'int'|'float'|'string'|'bool'|'void'
//	      | '[' type ']'
//	      | '(' type {',' type} ')'
//	      | 'function' '(' [type {',' type}] ')' ':' type
func (p *Parser) parseType() (types.DataType, error) {
	switch p.cur().Type {
	case token.INT_KW:
		p.advance()
		return types.Basic(types.Int), nil
	case token.FLOAT_KW:
		p.advance()
		return types.Basic(types.Float), nil
	case token.STRING_KW:
		p.advance()
		return types.Basic(types.String), nil
	case token.BOOL_KW:
		p.advance()
		return types.Basic(types.Bool), nil
	case token.VOID:
		p.advance()
		return types.NewVoid(nil), nil

	case token.LBRACKET:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return types.DataType{}, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return types.DataType{}, err
		}
		return types.NewList(elem), nil

	case token.LPAREN:
		p.advance()
		var elems []types.DataType
		for !p.at(token.RPAREN) {
			if len(elems) > 0 {
				if _, err := p.expect(token.COMMA); err != nil {
					return types.DataType{}, err
				}
			}
			t, err := p.parseType()
			if err != nil {
				return types.DataType{}, err
			}
			elems = append(elems, t)
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return types.DataType{}, err
		}
		return types.NewTuple(elems...), nil

	case token.FUNCTION:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return types.DataType{}, err
		}
		var params []types.DataType
		for !p.at(token.RPAREN) {
			if len(params) > 0 {
				if _, err := p.expect(token.COMMA); err != nil {
					return types.DataType{}, err
				}
			}
			t, err := p.parseType()
			if err != nil {
				return types.DataType{}, err
			}
			params = append(params, t)
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return types.DataType{}, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return types.DataType{}, err
		}
		ret, err := p.parseType()
		if err != nil {
			return types.DataType{}, err
		}
		return types.NewFunction(params, ret), nil

	default:
		return types.DataType{}, parseErr(p.line(), "expected a type, got %s (%q)", p.cur().Type, p.cur().Lexeme)
	}
}
