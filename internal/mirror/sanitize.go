package mirror

import (
	"fmt"
	"strings"
	"unicode"
)

const maxNamespaceLen = 100

// Namespace turns an account name into the remote tab title for it.
func Namespace(account string) (string, error) {
	var b strings.Builder

	inSpace := false

	for _, r := range strings.TrimSpace(account) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteRune('_')
			}

			inSpace = true

			continue
		case strings.ContainsRune(`'[]*?/\:`, r):
		default:
			b.WriteRune(r)
		}

		inSpace = false
	}

	name := []rune(b.String())
	if len(name) > maxNamespaceLen {
		name = name[:maxNamespaceLen]
	}

	if len(name) == 0 {
		return "", fmt.Errorf("%w: account %q has no usable namespace name", ErrRemoteValidation, account)
	}

	return string(name), nil
}
