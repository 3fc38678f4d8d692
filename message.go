package main

import (
	"github.com/horgh/irc"
	"github.com/pkg/errors"
)

// errIncomplete means the buffer holds the start of a line but not all of it
// yet. The buffer must be kept and more input appended.
var errIncomplete = errors.New("incomplete message")

// errMalformed means the buffer holds something that can never become a valid
// line. There is no reliable point to resynchronize at inside it, so the
// caller discards the whole buffer.
var errMalformed = errors.New("malformed message")

// parseMessage extracts one protocol line from the front of buf.
//
// On success we return the message and how many bytes of buf it used. The
// caller must drop that many bytes before calling again. Otherwise the error
// is errIncomplete or wraps errMalformed. buf is never modified.
//
// The grammar we accept:
//
//	message  = [ ":" prefix SPACE ] command 1*SPACE params crlf
//	command  = 1*( letter / digit )
//	params   = [ middle *( SPACE middle ) ] *SPACE [ ":" trailing ]
//	middle   = nospcrlfcl *( any octet except SPACE, CR, LF )
//	trailing = *( any octet except CR, LF )
//	crlf     = CR LF / LF
//
// Unlike irc.ParseMessage this works on a stream rather than a single line,
// and it does not change the case of the command.
func parseMessage(buf string) (irc.Message, int, error) {
	if len(buf) == 0 {
		return irc.Message{}, 0, errIncomplete
	}

	message := irc.Message{}
	index := 0

	if buf[0] == ':' {
		prefix, prefixIndex, err := parsePrefix(buf)
		if err != nil {
			return irc.Message{}, 0, err
		}
		message.Prefix = prefix
		index = prefixIndex
	}

	command, index, err := parseCommandName(buf, index)
	if err != nil {
		return irc.Message{}, 0, err
	}
	message.Command = command

	// At least one space must follow the command.
	spaceIndex, err := skipSpaces(buf, index)
	if err != nil {
		return irc.Message{}, 0, err
	}
	if spaceIndex == index {
		return irc.Message{}, 0, errors.Wrapf(errMalformed,
			"unexpected character after command: %q", buf[index])
	}

	params, index, err := parseParams(buf, spaceIndex)
	if err != nil {
		return irc.Message{}, 0, err
	}
	message.Params = params

	index, err = parseLineEnding(buf, index)
	if err != nil {
		return irc.Message{}, 0, err
	}

	return message, index, nil
}

// parsePrefix parses the prefix at the start of buf. buf[0] is ':'.
//
// We return the prefix without ':' and the index after the space that ends it.
func parsePrefix(buf string) (string, int, error) {
	pos := 1

	for pos < len(buf) {
		if buf[pos] == ' ' {
			break
		}

		// Nothing can end the prefix but a space, so a line ending here can never
		// be a valid message.
		if buf[pos] == '\x00' || buf[pos] == '\r' || buf[pos] == '\n' {
			return "", -1, errors.Wrapf(errMalformed,
				"invalid character in prefix: %q", buf[pos])
		}

		pos++
	}

	if pos == len(buf) {
		return "", -1, errIncomplete
	}

	if pos == 1 {
		return "", -1, errors.Wrap(errMalformed, "prefix is zero length")
	}

	return buf[1:pos], pos + 1, nil
}

// parseCommandName parses the command starting at index. We return it and
// the index just after it.
func parseCommandName(buf string, index int) (string, int, error) {
	newIndex := index

	for newIndex < len(buf) && isAlphanumeric(buf[newIndex]) {
		newIndex++
	}

	// We can't know the command is over until we see what follows it.
	if newIndex == len(buf) {
		return "", -1, errIncomplete
	}

	if newIndex == index {
		return "", -1, errors.Wrapf(errMalformed, "invalid command character: %q",
			buf[index])
	}

	return buf[index:newIndex], newIndex, nil
}

// parseParams parses the middle parameters and then the trailing parameter if
// there is one. index points after the spaces following the command.
//
// We return the parameters (trailing stripped of its ':') and the index where
// the line ending should begin.
func parseParams(buf string, index int) ([]string, int, error) {
	var params []string

	middle, newIndex, err := parseMiddle(buf, index)
	if err != nil {
		return nil, -1, err
	}

	if newIndex != -1 {
		params = append(params, middle)
		index = newIndex

		for {
			if index == len(buf) {
				return nil, -1, errIncomplete
			}

			if buf[index] != ' ' {
				break
			}

			middle, newIndex, err := parseMiddle(buf, index+1)
			if err != nil {
				return nil, -1, err
			}

			// Not a middle. Leave index at the space. It may introduce the trailing
			// parameter.
			if newIndex == -1 {
				break
			}

			params = append(params, middle)
			index = newIndex
		}
	}

	index, err = skipSpaces(buf, index)
	if err != nil {
		return nil, -1, err
	}

	if buf[index] != ':' {
		return params, index, nil
	}

	start := index + 1
	index = start
	for index < len(buf) && buf[index] != '\r' && buf[index] != '\n' {
		index++
	}

	if index == len(buf) {
		return nil, -1, errIncomplete
	}

	return append(params, buf[start:index]), index, nil
}

// parseMiddle parses a single middle parameter starting at index.
//
// If what is at index can't start a middle parameter, the returned index is
// -1 and there is no error.
func parseMiddle(buf string, index int) (string, int, error) {
	if index == len(buf) {
		return "", -1, errIncomplete
	}

	switch buf[index] {
	case ' ', ':', '\r', '\n':
		return "", -1, nil
	}

	newIndex := index + 1
	for newIndex < len(buf) {
		if buf[newIndex] == ' ' || buf[newIndex] == '\r' || buf[newIndex] == '\n' {
			return buf[index:newIndex], newIndex, nil
		}
		newIndex++
	}

	return "", -1, errIncomplete
}

// skipSpaces returns the index of the first non-space at or after index.
func skipSpaces(buf string, index int) (int, error) {
	for index < len(buf) && buf[index] == ' ' {
		index++
	}

	if index == len(buf) {
		return -1, errIncomplete
	}

	return index, nil
}

// parseLineEnding accepts CRLF or a bare LF at index and returns the index
// after it.
func parseLineEnding(buf string, index int) (int, error) {
	if index == len(buf) {
		return -1, errIncomplete
	}

	if buf[index] == '\n' {
		return index + 1, nil
	}

	if buf[index] != '\r' {
		return -1, errors.Wrapf(errMalformed, "unexpected character: %q",
			buf[index])
	}

	if index+1 == len(buf) {
		return -1, errIncomplete
	}

	if buf[index+1] != '\n' {
		return -1, errors.Wrap(errMalformed, "CR not followed by LF")
	}

	return index + 2, nil
}

func isAlphanumeric(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
