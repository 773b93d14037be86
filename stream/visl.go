package stream

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// VISL implements the `<STREAMCMD:TRANSFUSE:…>` wire dialect.
type VISL struct{}

var (
	vislHeaderRe = regexp.MustCompile(`<STREAMCMD:TRANSFUSE:TMPDIR:([^>]*)>`)
	vislOpenRe   = regexp.MustCompile(`^<STREAMCMD:TRANSFUSE:BLOCKOPEN:([^>]+)>$`)
	vislCloseRe  = regexp.MustCompile(`^<STREAMCMD:TRANSFUSE:BLOCKCLOSE:([^>]+)>$`)
)

func (VISL) Header(tmpdir string) string {
	return "<STREAMCMD:TRANSFUSE:TMPDIR:" + tmpdir + ">"
}

func (VISL) GetTmpdir(headerLine string) string {
	m := vislHeaderRe.FindStringSubmatch(headerLine)
	if m == nil {
		return ""
	}
	return m[1]
}

func (VISL) BlockOpen(id string) string {
	return "<STREAMCMD:TRANSFUSE:BLOCKOPEN:" + id + ">\n"
}

func (VISL) BlockBody(body string) string {
	return vislEscape(body) + "\n"
}

func (VISL) BlockClose(id string) string {
	return "<STREAMCMD:TRANSFUSE:BLOCKCLOSE:" + id + ">\n"
}

func (VISL) GetBlock(r *bufio.Reader) (id, body string, ok bool, err error) {
	for {
		line, rerr := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")

		if m := vislOpenRe.FindStringSubmatch(trimmed); m != nil {
			openID := m[1]
			var lines []string
			for {
				bodyLine, berr := r.ReadString('\n')
				bodyTrimmed := strings.TrimRight(bodyLine, "\r\n")
				if cm := vislCloseRe.FindStringSubmatch(bodyTrimmed); cm != nil && cm[1] == openID {
					return openID, vislUnescape(strings.Join(lines, "\n")), true, nil
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

func vislEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "<", `\<`)
	s = strings.ReplaceAll(s, ">", `\>`)
	return s
}

func vislUnescape(s string) string {
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
