package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/oisee/wmm-emulator/pkg/program"
)

// Parser turns a token stream into a program.Descriptor. Grounded on the
// original two-pass Parser: ParseSharedState/ParseReserveSpace consume the
// optional header directives, FirstPassParsing splits the remaining tokens
// into one token slice per instruction and records label positions, and
// SecondPassParsing converts each slice into a program.Instruction,
// allocating registers lazily in first-sight order across the whole
// program (see program.Descriptor's doc comment).
type Parser struct {
	lex *Lexer

	cellIndex map[string]int
	cellName  []string

	registerIndex map[string]program.Register
	registerName  []string

	labelIndex map[string]int

	reservedSpace int

	tokenized [][]Token
	texts     []string
}

// Parse reads a complete source program from r.
func Parse(r io.Reader) (*program.Descriptor, error) {
	lex, err := NewLexer(r)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		lex:           lex,
		cellIndex:     make(map[string]int),
		registerIndex: make(map[string]program.Register),
		labelIndex:    make(map[string]int),
	}
	return p.parseAll()
}

func (p *Parser) parseAll() (*program.Descriptor, error) {
	if err := p.parseSharedState(); err != nil {
		return nil, err
	}
	if err := p.parseReserveSpace(); err != nil {
		return nil, err
	}
	if err := p.firstPass(); err != nil {
		return nil, err
	}
	instructions, err := p.secondPass()
	if err != nil {
		return nil, err
	}

	cellCount := len(p.cellName) + p.reservedSpace
	cellNames := make([]string, cellCount)
	copy(cellNames, p.cellName)
	for i := len(p.cellName); i < cellCount; i++ {
		cellNames[i] = fmt.Sprintf("#%d", i)
	}

	return &program.Descriptor{
		Instructions: instructions,
		RegisterName: p.registerName,
		CellName:     cellNames,
	}, nil
}

func (p *Parser) tok() Token { return p.lex.Token() }

func (p *Parser) advance() error { return p.lex.Next() }

func (p *Parser) parseSharedState() error {
	t := p.tok()
	if t.Kind != TokenKeyword || t.Keyword != KeywordSharedState {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok().Kind != TokenColon {
		return fmt.Errorf("source: shared_state must be followed by a colon")
	}
	if err := p.advance(); err != nil {
		return err
	}
	for p.tok().Kind != TokenSemicolon {
		if p.tok().Kind != TokenSymbol {
			return fmt.Errorf("source: shared_state expects a symbol, got %s", p.tok())
		}
		name := p.tok().Symbol
		if _, exists := p.cellIndex[name]; exists {
			return fmt.Errorf("source: duplicate shared_state symbol %q", name)
		}
		p.cellIndex[name] = len(p.cellName)
		p.cellName = append(p.cellName, name)
		if err := p.advance(); err != nil {
			return err
		}
	}
	return p.advance()
}

func (p *Parser) parseReserveSpace() error {
	t := p.tok()
	if t.Kind != TokenKeyword || t.Keyword != KeywordReserveSpace {
		return nil
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok().Kind != TokenColon {
		return fmt.Errorf("source: reserve_space must be followed by a colon")
	}
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok().Kind != TokenConstant {
		return fmt.Errorf("source: reserve_space expects a constant size")
	}
	p.reservedSpace = int(p.tok().Constant)
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok().Kind != TokenSemicolon {
		return fmt.Errorf("source: reserve_space must end with a semicolon")
	}
	return p.advance()
}

// firstPass splits the remaining tokens into one instruction per semicolon
// and resolves every label to the instruction index that follows it.
func (p *Parser) firstPass() error {
	for !p.lex.Done() {
		if err := p.parseSingleInstruction(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseSingleInstruction() error {
	start := p.tok()
	if err := p.advance(); err != nil {
		return err
	}
	if start.Kind == TokenSymbol && p.tok().Kind == TokenColon {
		if _, exists := p.labelIndex[start.Symbol]; exists {
			return fmt.Errorf("source: repeating label %q", start.Symbol)
		}
		p.labelIndex[start.Symbol] = len(p.tokenized)
		if err := p.advance(); err != nil {
			return err
		}
		return p.parseSingleInstruction()
	}
	if start.Kind != TokenSymbol && start.Kind != TokenKeyword {
		return fmt.Errorf("source: unexpected instruction start %s", start)
	}
	return p.tokenizeInstruction(start)
}

func (p *Parser) tokenizeInstruction(start Token) error {
	instruction := []Token{start}
	var text bytes.Buffer
	fmt.Fprintf(&text, "%s ", start)
	for !p.lex.Done() && p.tok().Kind != TokenSemicolon {
		instruction = append(instruction, p.tok())
		fmt.Fprintf(&text, "%s ", p.tok())
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.tok().Kind != TokenSemicolon {
		return fmt.Errorf("source: each instruction must end with a semicolon")
	}
	p.tokenized = append(p.tokenized, instruction)
	p.texts = append(p.texts, text.String())
	return p.advance()
}

func (p *Parser) register(name string) program.Register {
	if reg, ok := p.registerIndex[name]; ok {
		return reg
	}
	reg := program.Register(len(p.registerName))
	p.registerIndex[name] = reg
	p.registerName = append(p.registerName, name)
	return reg
}

func (p *Parser) cell(name string) (int, error) {
	idx, ok := p.cellIndex[name]
	if !ok {
		return 0, fmt.Errorf("source: reference to undeclared shared_state symbol %q", name)
	}
	return idx, nil
}

func (p *Parser) secondPass() ([]program.Instruction, error) {
	instructions := make([]program.Instruction, 0, len(p.tokenized))
	for i, tokens := range p.tokenized {
		instr, err := p.instructionFromTokens(tokens)
		if err != nil {
			return nil, err
		}
		instr.SetText(p.texts[i])
		instructions = append(instructions, instr)
	}
	return instructions, nil
}

func (p *Parser) instructionFromTokens(tokens []Token) (program.Instruction, error) {
	if len(tokens) == 0 {
		return program.Instruction{}, fmt.Errorf("source: cannot parse an empty instruction")
	}
	if tokens[0].Kind == TokenSymbol {
		return p.assignmentInstruction(tokens)
	}
	if tokens[0].Kind == TokenKeyword {
		return p.keywordInstruction(tokens)
	}
	return program.Instruction{}, fmt.Errorf("source: invalid token %s at start of instruction", tokens[0])
}

func (p *Parser) assignmentInstruction(tokens []Token) (program.Instruction, error) {
	dst := p.register(tokens[0].Symbol)
	if len(tokens) < 2 {
		return program.Instruction{}, fmt.Errorf("source: incomplete assignment to %s", tokens[0])
	}
	switch tokens[1].Kind {
	case TokenThreadLocalAssign:
		return p.threadLocalAssignment(dst, tokens)
	case TokenAssignment:
		return p.keywordAssignment(dst, tokens)
	default:
		return program.Instruction{}, fmt.Errorf("source: expected assignment token after %s", tokens[0].Symbol)
	}
}

// threadLocalAssignment handles "r = value" (RegConst, sourcing either a
// shared_state symbol or a literal) and "r = r1 op r2" (RegBinOp).
func (p *Parser) threadLocalAssignment(dst program.Register, tokens []Token) (program.Instruction, error) {
	if len(tokens) == 3 {
		switch tokens[2].Kind {
		case TokenSymbol:
			cell, err := p.cell(tokens[2].Symbol)
			if err != nil {
				return program.Instruction{}, err
			}
			return program.Instruction{Kind: program.KindRegConst, Dst: dst, Value: uint64(cell)}, nil
		case TokenConstant:
			return program.Instruction{Kind: program.KindRegConst, Dst: dst, Value: tokens[2].Constant}, nil
		default:
			return program.Instruction{}, fmt.Errorf("source: thread-local assignment with unexpected token %s", tokens[2])
		}
	}
	if len(tokens) != 5 || tokens[2].Kind != TokenSymbol || tokens[3].Kind != TokenBinOp || tokens[4].Kind != TokenSymbol {
		return program.Instruction{}, fmt.Errorf("source: malformed binary-operation assignment")
	}
	return program.Instruction{
		Kind: program.KindRegBinOp,
		Dst:  dst,
		Lhs:  p.register(tokens[2].Symbol),
		Op:   tokens[3].BinOp,
		Rhs:  p.register(tokens[4].Symbol),
	}, nil
}

// keywordAssignment handles "r := fai MODE #addr increment" and
// "r := cas MODE #addr expected desired".
func (p *Parser) keywordAssignment(dst program.Register, tokens []Token) (program.Instruction, error) {
	if len(tokens) < 3 || tokens[2].Kind != TokenKeyword {
		return program.Instruction{}, fmt.Errorf("source: expected a keyword after :=")
	}
	switch tokens[2].Keyword {
	case KeywordFai:
		if len(tokens) != 6 || tokens[3].Kind != TokenKeyword || tokens[4].Kind != TokenTaggedSymbol || tokens[5].Kind != TokenSymbol {
			return program.Instruction{}, fmt.Errorf("source: incorrect usage of fai instruction")
		}
		mode, ok := accessModeOf(tokens[3].Keyword)
		if !ok {
			return program.Instruction{}, fmt.Errorf("source: expected access mode in fai instruction")
		}
		return program.Instruction{
			Kind:      program.KindFai,
			Mode:      mode,
			Dst:       dst,
			Addr:      p.register(tokens[4].Symbol),
			Increment: p.register(tokens[5].Symbol),
		}, nil
	case KeywordCas:
		if len(tokens) != 7 || tokens[3].Kind != TokenKeyword || tokens[4].Kind != TokenTaggedSymbol || tokens[5].Kind != TokenSymbol || tokens[6].Kind != TokenSymbol {
			return program.Instruction{}, fmt.Errorf("source: incorrect usage of cas instruction")
		}
		mode, ok := accessModeOf(tokens[3].Keyword)
		if !ok {
			return program.Instruction{}, fmt.Errorf("source: expected access mode in cas instruction")
		}
		return program.Instruction{
			Kind:     program.KindCas,
			Mode:     mode,
			Dst:      dst,
			Addr:     p.register(tokens[4].Symbol),
			Expected: p.register(tokens[5].Symbol),
			Desired:  p.register(tokens[6].Symbol),
		}, nil
	default:
		return program.Instruction{}, fmt.Errorf("source: unexpected keyword %s in assignment", tokens[2].Keyword)
	}
}

// keywordInstruction handles load, store, fence and if — the instructions
// that do not start with a destination register.
func (p *Parser) keywordInstruction(tokens []Token) (program.Instruction, error) {
	switch tokens[0].Keyword {
	case KeywordLoad:
		if len(tokens) != 4 || tokens[1].Kind != TokenKeyword || tokens[2].Kind != TokenTaggedSymbol || tokens[3].Kind != TokenSymbol {
			return program.Instruction{}, fmt.Errorf("source: incorrect load instruction")
		}
		mode, ok := accessModeOf(tokens[1].Keyword)
		if !ok {
			return program.Instruction{}, fmt.Errorf("source: expected access mode in load instruction")
		}
		return program.Instruction{
			Kind: program.KindLoad,
			Mode: mode,
			Addr: p.register(tokens[2].Symbol),
			Dst:  p.register(tokens[3].Symbol),
		}, nil
	case KeywordStore:
		if len(tokens) != 4 || tokens[1].Kind != TokenKeyword || tokens[2].Kind != TokenTaggedSymbol || tokens[3].Kind != TokenSymbol {
			return program.Instruction{}, fmt.Errorf("source: incorrect store instruction")
		}
		mode, ok := accessModeOf(tokens[1].Keyword)
		if !ok {
			return program.Instruction{}, fmt.Errorf("source: expected access mode in store instruction")
		}
		return program.Instruction{
			Kind: program.KindStore,
			Mode: mode,
			Addr: p.register(tokens[2].Symbol),
			Src:  p.register(tokens[3].Symbol),
		}, nil
	case KeywordIf:
		if len(tokens) != 4 || tokens[1].Kind != TokenSymbol || tokens[2].Kind != TokenKeyword || tokens[2].Keyword != KeywordGoto || tokens[3].Kind != TokenSymbol {
			return program.Instruction{}, fmt.Errorf("source: incorrect if instruction")
		}
		target, ok := p.labelIndex[tokens[3].Symbol]
		if !ok {
			return program.Instruction{}, fmt.Errorf("source: unknown label %q in conditional jump", tokens[3].Symbol)
		}
		return program.Instruction{
			Kind:   program.KindIf,
			Cond:   p.register(tokens[1].Symbol),
			Target: target,
		}, nil
	case KeywordFence:
		if len(tokens) != 2 || tokens[1].Kind != TokenKeyword {
			return program.Instruction{}, fmt.Errorf("source: incorrect fence instruction")
		}
		mode, ok := accessModeOf(tokens[1].Keyword)
		if !ok {
			return program.Instruction{}, fmt.Errorf("source: expected access mode in fence instruction")
		}
		return program.Instruction{Kind: program.KindFence, Mode: mode}, nil
	default:
		return program.Instruction{}, fmt.Errorf("source: unexpected keyword %s at start of instruction", tokens[0].Keyword)
	}
}
