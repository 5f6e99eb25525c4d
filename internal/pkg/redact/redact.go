// redact маскирует email и токены перед записью в лог.
// Пароли не логируются вовсе.
package redact

import "strings"

const (
	mask      = "***"
	tokenMask = "[REDACTED_TOKEN]"
	// tokenKeep — видимый префикс токена, чтобы записи можно было сопоставить.
	tokenKeep = 4
)

// Email оставляет два первых символа локальной части и домен.
func Email(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return mask
	}

	local, domain := s[:at], s[at+1:]
	if len(local) <= 2 {
		return mask + "@" + domain
	}

	return local[:2] + mask + "@" + domain
}

func Token(s string) string {
	if len(s) <= 2*tokenKeep {
		return tokenMask
	}

	return s[:tokenKeep] + "..." + tokenMask
}
