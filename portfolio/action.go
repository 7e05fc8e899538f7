package portfolio

import "fmt"

// Action is one of the three moves the agent can make on a bar.
type Action int

const (
	Buy Action = iota
	Hold
	Sell
)

// NumActions is the size of the action space.
const NumActions = 3

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Hold:
		return "HOLD"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ActionFromCode converts a raw action code (0, 1, 2) to an Action.
func ActionFromCode(code int) (Action, error) {
	switch code {
	case 0:
		return Buy, nil
	case 1:
		return Hold, nil
	case 2:
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown action code %d", code)
	}
}
