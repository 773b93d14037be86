package stream

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Apertium implements the `[transfuse:…]` wire dialect.
type Apertium struct{}

var (
	apertiumHeaderRe = regexp.MustCompile(`\[transfuse:tmpdir:([^\]]*)\]`)
	apertiumOpenRe   = regexp.MustCompile(`^\[transfuse:([^\]]+)\]$`)
	apertiumCloseRe  = regexp.MustCompile(`^\[/transfuse:([^\]]+)\]$`)
)

func (Apertium) Header(tmpdir string) string {
	return "[transfuse:tmpdir:" + tmpdir + "]"
}

func (Apertium) GetTmpdir(headerLine string) string {
	m := apertiumHeaderRe.FindStringSubmatch(headerLine)
	if m == nil {
		return ""
	}
	return m[1]
}

func (Apertium) BlockOpen(id string) string {
	return "[transfuse:" + id + "]\n"
}

func (Apertium) BlockBody(body string) string {
	return apertiumEscape(body) + "\n"
}

func (Apertium) BlockClose(id string) string {
	return "[/transfuse:" + id + "]\n"
}

func (Apertium) GetBlock(r *bufio.Reader) (id, body string, ok bool, err error) {
	for {
		line, rerr := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")

		if m := apertiumOpenRe.FindStringSubmatch(trimmed); m != nil {
			openID := m[1]
			var lines []string
			for {
				bodyLine, berr := r.ReadString('\n')
				bodyTrimmed := strings.TrimRight(bodyLine, "\r\n")
				if cm := apertiumCloseRe.FindStringSubmatch(bodyTrimmed); cm != nil && cm[1] == openID {
					return openID, apertiumUnescape(strings.Join(lines, "\n")), true, nil
				}
				lines = append(lines, bodyTrimmed)
				if berr != nil {
					if berr == io.EOF {
						return "", "", false, nil
					}
					return "", "", false, berr
				}
			}
		}

		if rerr != nil {
			if rerr == io.EOF {
				return "", "", false, nil
			}
			return "", "", false, rerr
		}
	}
}

func apertiumEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	return s
}

func apertiumUnescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
