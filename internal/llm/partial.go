package llm

import "strings"

// RepairJSON turns a truncated JSON document into the longest valid document
// it can. An unterminated string value is closed; a dangling key, colon,
// comma or unfinished literal is dropped. It reports false when no complete
// prefix exists yet.
func RepairJSON(s string) (string, bool) {
	var (
		stack     []byte
		keyNext   []bool
		safeLen   = -1
		safeStack []byte
		inString  bool
		isKey     bool
		escaped   bool
		escStart  = -1
	)

	markSafe := func(n int) {
		safeLen = n
		safeStack = append(safeStack[:0], stack...)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
				escStart = i
			case c == '"':
				inString = false
				if !isKey {
					markSafe(i + 1)
				}
			}
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
		case '{', '[':
			stack = append(stack, c)
			keyNext = append(keyNext, c == '{')
			markSafe(i + 1)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
			keyNext = keyNext[:len(keyNext)-1]
			markSafe(i + 1)
		case '"':
			inString = true
			escStart = -1
			isKey = len(stack) > 0 && stack[len(stack)-1] == '{' && keyNext[len(keyNext)-1]
		case ':':
			if len(keyNext) > 0 {
				keyNext[len(keyNext)-1] = false
			}
		case ',':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				keyNext[len(keyNext)-1] = true
			}
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\n\r,:]}", rune(s[j])) {
				j++
			}
			// a literal that reaches the end of input may still grow
			if j < len(s) {
				markSafe(j)
			}
			i = j - 1
		}
	}

	if inString && !isKey {
		out := s
		switch {
		case escaped:
			out = s[:len(s)-1]
		case escStart >= 0 && s[escStart+1] == 'u' && len(s)-escStart < 6:
			// unfinished \uXXXX
			out = s[:escStart]
		}
		return out + `"` + closers(stack), true
	}
	if safeLen < 0 {
		return "", false
	}
	return s[:safeLen] + closers(safeStack), true
}

func closers(stack []byte) string {
	var b strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
