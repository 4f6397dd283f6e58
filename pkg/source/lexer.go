package source

import (
	"bufio"
	"fmt"
	"io"
	"unicode"

	"github.com/oisee/wmm-emulator/pkg/model"
)

// Lexer turns a byte stream into a sequence of Tokens, one lookahead token
// at a time. Grounded on the original Tokenizer: peek-then-consume,
// single-token lookahead, the same character classes.
type Lexer struct {
	r       *bufio.Reader
	current Token
	err     error
}

// NewLexer wraps r and reads the first token.
func NewLexer(r io.Reader) (*Lexer, error) {
	l := &Lexer{r: bufio.NewReader(r)}
	if err := l.Next(); err != nil {
		return nil, err
	}
	return l, nil
}

// Token returns the current lookahead token.
func (l *Lexer) Token() Token { return l.current }

// Done reports whether the lookahead token is the end of the stream.
func (l *Lexer) Done() bool { return l.current.Kind == TokenStreamEnd }

func (l *Lexer) peek() (rune, bool) {
	r, _, err := l.r.ReadRune()
	if err != nil {
		return 0, false
	}
	l.r.UnreadRune()
	return r, true
}

func (l *Lexer) skipSpace() {
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.r.ReadRune()
	}
}

// Next advances the lookahead token by one.
func (l *Lexer) Next() error {
	l.skipSpace()
	c, ok := l.peek()
	if !ok {
		l.current = Token{Kind: TokenStreamEnd}
		return nil
	}

	switch {
	case unicode.IsDigit(c):
		n, err := l.readNumber()
		if err != nil {
			return err
		}
		l.current = Token{Kind: TokenConstant, Constant: n}
		return nil
	case isSymbolStart(c):
		sym := l.readSymbol()
		if kw, ok := keywords[sym]; ok {
			l.current = Token{Kind: TokenKeyword, Keyword: kw}
		} else {
			l.current = Token{Kind: TokenSymbol, Symbol: sym}
		}
		return nil
	case c == '#':
		l.r.ReadRune()
		next, ok := l.peek()
		if !ok || !isSymbolStart(next) {
			return fmt.Errorf("source: tag is met, but expected a symbol right after")
		}
		l.current = Token{Kind: TokenTaggedSymbol, Symbol: l.readSymbol()}
		return nil
	case isBinOpStart(c):
		op, err := l.readBinOp()
		if err != nil {
			return err
		}
		l.current = Token{Kind: TokenBinOp, BinOp: op}
		return nil
	case c == '=':
		l.r.ReadRune()
		l.current = Token{Kind: TokenThreadLocalAssign}
		return nil
	case c == ':':
		l.r.ReadRune()
		if next, ok := l.peek(); ok && next == '=' {
			l.r.ReadRune()
			l.current = Token{Kind: TokenAssignment}
		} else {
			l.current = Token{Kind: TokenColon}
		}
		return nil
	case c == ';':
		l.r.ReadRune()
		l.current = Token{Kind: TokenSemicolon}
		return nil
	default:
		return fmt.Errorf("source: faced unknown symbol %q when tokenizing input", c)
	}
}

func isSymbolStart(c rune) bool { return unicode.IsLetter(c) }

func isSymbolInternal(c rune) bool { return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' }

func isBinOpStart(c rune) bool {
	switch c {
	case '+', '-', '*', '/', '<', '>':
		return true
	default:
		return false
	}
}

func (l *Lexer) readSymbol() string {
	var b []byte
	for {
		r, ok := l.peek()
		if !ok || !isSymbolInternal(r) {
			break
		}
		l.r.ReadRune()
		b = append(b, []byte(string(r))...)
	}
	return string(b)
}

func (l *Lexer) readNumber() (uint64, error) {
	var b []byte
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsDigit(r) {
			break
		}
		l.r.ReadRune()
		b = append(b, byte(r))
	}
	var n uint64
	for _, digit := range b {
		n = n*10 + uint64(digit-'0')
	}
	return n, nil
}

func (l *Lexer) readBinOp() (model.BinOp, error) {
	first, _, _ := l.r.ReadRune()
	text := string(first)
	if next, ok := l.peek(); ok && next == '=' {
		l.r.ReadRune()
		text += "="
	}
	switch text {
	case "+":
		return model.Add, nil
	case "-":
		return model.Subtract, nil
	case "*":
		return model.Multiply, nil
	case "/":
		return model.Divide, nil
	case "<":
		return model.Less, nil
	case ">":
		return model.Greater, nil
	case "<=":
		return model.LessEqual, nil
	case ">=":
		return model.GreaterEqual, nil
	default:
		return 0, fmt.Errorf("source: unknown binary operator token %q", text)
	}
}
