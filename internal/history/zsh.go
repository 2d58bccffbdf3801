package history

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// zshMeta is the byte zsh writes before a metafied character.
const zshMeta = 0x83

// ParseZsh parses ~/.zsh_history.
//
// Extended format: `: <epoch>:<elapsed>;<command>`
// Plain fallback:  one command per line.
//
// A physical line ending in a backslash continues on the next line; the
// backslash is dropped and the lines are joined with a newline.
func ParseZsh(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var pending []string
	for scanner.Scan() {
		line := unmetafy(scanner.Text())

		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			continue
		}
		if len(pending) > 0 {
			line = strings.Join(append(pending, line), "\n")
			pending = nil
		}
		if line == "" {
			continue
		}
		records = append(records, parseZshEntry(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// A dangling continuation at EOF is a command the shell is still writing.
	// Keep what we have so the count matches what the shell flushed.
	if len(pending) > 0 {
		records = append(records, parseZshEntry(strings.Join(pending, "\n")))
	}
	return records, nil
}

func parseZshEntry(line string) Record {
	if !strings.HasPrefix(line, ": ") {
		return Record{Text: line}
	}
	rest := line[2:]
	semi := strings.IndexByte(rest, ';')
	if semi <= 0 {
		return Record{Text: line}
	}
	timePart, cmd := rest[:semi], rest[semi+1:]

	epochStr, elapsedStr, ok := strings.Cut(timePart, ":")
	if !ok {
		return Record{Text: line}
	}
	epoch, err := strconv.ParseInt(epochStr, 10, 64)
	if err != nil {
		return Record{Text: line}
	}
	rec := Record{Text: cmd, Timestamp: time.Unix(epoch, 0)}
	if elapsed, err := strconv.ParseInt(elapsedStr, 10, 64); err == nil {
		rec.Elapsed = time.Duration(elapsed) * time.Second
	}
	return rec
}

func unmetafy(s string) string {
	if strings.IndexByte(s, zshMeta) < 0 {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == zshMeta && i+1 < len(s) {
			i++
			b = append(b, s[i]^32)
			continue
		}
		b = append(b, s[i])
	}
	return string(b)
}
