package respond

import "regexp"

// secretRules run in order; the Anthropic rule precedes the OpenAI one
// because both keys start with "sk-".
var secretRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`), "$1****"},
	{regexp.MustCompile(`(?i)(bearer\s+)[a-z0-9_-]+\.[a-z0-9_-]+\.[a-z0-9_-]+`), "${1}****"},
	// user:password@ in postgres DSNs and NATS URLs
	{regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`), "://$1:****@"},
}

// SanitizeError returns err's message with API keys, bearer tokens and URL
// passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range secretRules {
		msg = r.re.ReplaceAllString(msg, r.repl)
	}
	return msg
}
