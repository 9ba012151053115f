package lexer

import "github.com/Swanchick/kyryl-script-sub000/internal/token"

// Stream is an indexed, peekable buffer of tokens (spec C3). The whole
// source is lexed up front so the parser can peek ahead (it uses Peek(1)
// to tell an assignment from an expression statement) without
// re-driving the scanner.
type Stream struct {
	tokens []token.Token
	pos    int
}

// NewStream drains l completely into a Stream, stopping at the first
// lexical error or at EOF (EOF itself is kept as the stream's final
// token).
func NewStream(l *Lexer) (*Stream, error) {
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return &Stream{tokens: toks}, nil
}

// Current returns the token at the stream's cursor.
func (s *Stream) Current() token.Token { return s.at(s.pos) }

// Peek returns the token offset tokens ahead of the cursor without
// advancing it.
func (s *Stream) Peek(offset int) token.Token { return s.at(s.pos + offset) }

// Advance moves the cursor forward one token and returns the token that
// was current before advancing.
func (s *Stream) Advance() token.Token {
	tok := s.Current()
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return tok
}

func (s *Stream) at(i int) token.Token {
	if i < 0 {
		i = 0
	}
	if i >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1] // EOF
	}
	return s.tokens[i]
}
