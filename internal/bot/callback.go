package bot

import (
	"strconv"
	"strings"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

// Callback command tokens carried in inline button payloads. The wire format is
// the bare command, optionally followed by a space and an integer argument,
// e.g. "ProblemSolved 1234".
const (
	cbEasyAdd       = "EasyAdd"
	cbEasyRemove    = "EasyRemove"
	cbMediumAdd     = "MediumAdd"
	cbMediumRemove  = "MediumRemove"
	cbHardAdd       = "HardAdd"
	cbHardRemove    = "HardRemove"
	cbProblemSolved = "ProblemSolved"
)

// Callback is a parsed inline button payload.
type Callback struct {
	Command string
	Arg     int
	HasArg  bool
}

// ParseCallback splits a raw callback payload into command and optional integer
// argument. Anything else is a ValidationError; the caller replies with a
// generic retry prompt and logs the cause.
func ParseCallback(data string) (Callback, error) {
	raw := strings.TrimPrefix(data, "\f")
	fields := strings.Fields(raw)
	switch len(fields) {
	case 1:
		return Callback{Command: fields[0]}, nil
	case 2:
		arg, err := strconv.Atoi(fields[1])
		if err != nil {
			return Callback{}, domain.Validationf(msgTryAgainLater)
		}
		return Callback{Command: fields[0], Arg: arg, HasArg: true}, nil
	default:
		return Callback{}, domain.Validationf(msgTryAgainLater)
	}
}

// SolvedCallbackData builds the payload attached to a delivered problem's
// acknowledgment button.
func SolvedCallbackData(problemID int) string {
	return cbProblemSolved + " " + strconv.Itoa(problemID)
}
