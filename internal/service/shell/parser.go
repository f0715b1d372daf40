package shell

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Command is one parsed shell command: Create, Modify, Cancel or List.
type Command interface {
	isCommand()
}

// Create requests a new alarm with a caller-supplied id.
type Create struct {
	ID      int
	Type    string
	Seconds int
	Message string
}

// Modify rewrites an existing alarm's fields and restarts its delay.
type Modify struct {
	ID      int
	Type    string
	Seconds int
	Message string
}

// Cancel removes an alarm before it fires.
type Cancel struct {
	ID int
}

// List requests a view of all live alarms.
type List struct{}

func (Create) isCommand() {}
func (Modify) isCommand() {}
func (Cancel) isCommand() {}
func (List) isCommand()   {}

// ErrBadCommand is returned for input that matches no known command form.
var ErrBadCommand = errors.New("bad command")

// Command grammar of the interactive shell. The id and seconds are
// non-negative integers; the type tag follows a literal T.
var (
	startPattern  = regexp.MustCompile(`^Start_Alarm\((\d+)\):\s+T(\S+)\s+(\d+)\s+(.+)$`)
	changePattern = regexp.MustCompile(`^Change_Alarm\((\d+)\):\s+T(\S+)\s+(\d+)\s+(.+)$`)
	cancelPattern = regexp.MustCompile(`^Cancel_Alarm\((\d+)\)$`)
)

// Parse turns one input line into a Command. Surrounding whitespace is
// trimmed first; anything unrecognized yields ErrBadCommand.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)

	if m := startPattern.FindStringSubmatch(line); m != nil {
		id, seconds, err := parseNumbers(m[1], m[3])
		if err != nil {
			return nil, err
		}

		return Create{
			ID:      id,
			Type:    m[2],
			Seconds: seconds,
			Message: strings.TrimSpace(m[4]),
		}, nil
	}

	if m := changePattern.FindStringSubmatch(line); m != nil {
		id, seconds, err := parseNumbers(m[1], m[3])
		if err != nil {
			return nil, err
		}

		return Modify{
			ID:      id,
			Type:    m[2],
			Seconds: seconds,
			Message: strings.TrimSpace(m[4]),
		}, nil
	}

	if m := cancelPattern.FindStringSubmatch(line); m != nil {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, ErrBadCommand
		}

		return Cancel{ID: id}, nil
	}

	if line == "View_Alarms()" {
		return List{}, nil
	}

	return nil, ErrBadCommand
}

// parseNumbers converts the id and seconds captures. The patterns only
// match digits, so the remaining failure mode is overflow.
func parseNumbers(idText, secondsText string) (int, int, error) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		return 0, 0, ErrBadCommand
	}

	seconds, err := strconv.Atoi(secondsText)
	if err != nil {
		return 0, 0, ErrBadCommand
	}

	return id, seconds, nil
}
