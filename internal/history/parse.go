package history

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	timestampRe = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`)
	sourceDirRe = regexp.MustCompile(`Source directory: (.+)`)
	renamedRe   = regexp.MustCompile(`RENAMED:\s+(.+?)\s+->\s+(.+)`)
	movedRe     = regexp.MustCompile(`MOVED:\s+(.+?)\s+->\s+(.+)`)
)

// ParseLog scans a rename log line by line. Timestamp lines and source
// directory headers set context that tags every following operation until
// the next header. Unrecognized lines are ignored.
func ParseLog(r io.Reader) ([]Op, error) {
	var (
		ops       []Op
		directory string
		timestamp string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := timestampRe.FindStringSubmatch(line); m != nil {
			timestamp = m[1]
		}

		if strings.Contains(line, "Source directory:") {
			if m := sourceDirRe.FindStringSubmatch(line); m != nil {
				directory = strings.TrimSpace(m[1])
			}
		}

		if strings.Contains(line, "RENAMED:") {
			if m := renamedRe.FindStringSubmatch(line); m != nil {
				ops = append(ops, Op{
					Timestamp: timestamp,
					OldName:   strings.TrimSpace(m[1]),
					NewName:   strings.TrimSpace(m[2]),
					Directory: directory,
					Action:    ActionRenamed,
				})
			}
			continue
		}

		if strings.Contains(line, "MOVED:") {
			if m := movedRe.FindStringSubmatch(line); m != nil {
				name := strings.TrimSpace(m[1])
				ops = append(ops, Op{
					Timestamp:   timestamp,
					OldName:     name,
					NewName:     name, // a move keeps the filename
					Directory:   directory,
					Destination: strings.TrimSpace(m[2]),
					Action:      ActionMoved,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}
