package strategy

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oisee/wmm-emulator/pkg/engine"
)

// Interactive prints each enabled transition with a 0-based index, reads an
// integer from its input, and validates it is in range. Grounded on the
// line-buffered stdin reading the teacher uses for its own CLI prompts —
// no raw-terminal library appears anywhere in the example pack for
// line-based input, so bufio.Scanner is the idiom carried over here too.
type Interactive struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// NewInteractive builds an Interactive strategy reading from in and
// printing prompts to out.
func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{In: in, Out: out, scanner: bufio.NewScanner(in)}
}

func (s *Interactive) Select(exec *engine.Executor) (int, error) {
	threads := exec.EnabledThreadSteps()
	props := exec.EnabledPropagations()
	total := len(threads) + len(props)

	for i, tid := range threads {
		fmt.Fprintf(s.Out, "[%d] thread step: thread #%d\n", i, tid)
	}
	for i, p := range props {
		fmt.Fprintf(s.Out, "[%d] propagate: thread #%d, cell #%d\n", len(threads)+i, p.TID, p.Cell)
	}
	fmt.Fprintf(s.Out, "Select a transition [0-%d]: ", total-1)

	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.In)
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return 0, fmt.Errorf("strategy: reading selection: %w", err)
		}
		return 0, fmt.Errorf("strategy: no more input while expecting a selection")
	}

	text := strings.TrimSpace(s.scanner.Text())
	index, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("strategy: %q is not a valid selection: %w", text, err)
	}
	if index < 0 || index >= total {
		return 0, fmt.Errorf("strategy: selection %d out of range [0, %d)", index, total)
	}
	return index, nil
}
