package errors

import "regexp"

const redacted = "[REDACTED]"

var (
	reBearer = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)
	reJWT    = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
	reParam  = regexp.MustCompile(`(?i)((?:access_token|refresh_token|id_token|code|code_verifier|password|apikey)["']?\s*[:=]\s*["']?)[^"'&\s,}]+`)
)

// Redact removes bearer tokens, JWTs and credential parameters from s.
// Use it before surfacing identity provider error text to clients or logs.
func Redact(s string) string {
	s = reBearer.ReplaceAllString(s, "Bearer "+redacted)
	s = reJWT.ReplaceAllString(s, redacted)
	return reParam.ReplaceAllString(s, "${1}"+redacted)
}
