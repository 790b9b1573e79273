package respond

import (
	"regexp"
)

// Secrets this service actually handles: the model API keys it calls out
// with, the bearer tokens accounts authenticate with, and the database DSN.
var (
	// anthropicKeyPattern は openaiKeyPattern より先に適用する
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)

	bearerTokenPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)

	dsnPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
