package settings

import "fmt"

// ContractError is the panic value raised when a caller breaks an API
// contract, such as destroying an internal tree node.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("box2d: %s: %s", e.Op, e.Msg)
}

// Assert panics with a *ContractError when cond is false.
func Assert(cond bool, op, msg string) {
	if !cond {
		panic(&ContractError{Op: op, Msg: msg})
	}
}
