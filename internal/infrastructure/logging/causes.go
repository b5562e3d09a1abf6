package logging

import (
	"errors"
	"strings"
)

// Causes splits an error built with fmt.Errorf("...: %w") into one message
// per link, outermost first. A link whose text does not end with its cause's
// text is kept whole and ends the chain.
func Causes(err error) []string {
	var causes []string
	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)
		if next == nil {
			causes = append(causes, msg)
			break
		}

		trimmed, ok := strings.CutSuffix(msg, ": "+next.Error())
		if !ok {
			causes = append(causes, msg)
			break
		}
		causes = append(causes, trimmed)
		err = next
	}
	return causes
}
