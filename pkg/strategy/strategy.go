// Package strategy implements the three selection strategies a driver loop
// can plug into an engine.Executor: Interactive, Random and Exhaustive.
package strategy

import "github.com/oisee/wmm-emulator/pkg/engine"

// Strategy picks one transition index out of the total enabled on the
// current configuration. total is len(threads)+len(props); a strategy
// never needs to see the lists themselves, only how many choices there are,
// except Interactive which prints them for the user and therefore needs the
// executor to describe each one.
type Strategy interface {
	Select(exec *engine.Executor) (int, error)
}

// Run drives exec with strategy until no transition remains, mirroring the
// non-exhaustive driver loop: "while any transition is enabled, select and
// apply."
func Run(exec *engine.Executor, s Strategy) error {
	for !exec.IsDone() {
		threads := exec.EnabledThreadSteps()
		props := exec.EnabledPropagations()
		if len(threads)+len(props) == 0 {
			return nil
		}
		index, err := s.Select(exec)
		if err != nil {
			return err
		}
		if err := exec.Select(index, threads, props); err != nil {
			return err
		}
	}
	return nil
}
