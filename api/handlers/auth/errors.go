package auth

// 登录失败错误码，通过登录页查询参数透传。
// 对外只暴露笼统描述，具体原因留在审计日志中。
const (
	CodeAccessDenied     = "AccessDenied"
	CodeCredentialsError = "CredentialsSignin"
	CodeConfiguration    = "Configuration"
)

var errorMessages = map[string]string{
	CodeAccessDenied:     "You do not have permission to sign in.",
	CodeCredentialsError: "Sign in failed. Check the details you provided are correct.",
	CodeConfiguration:    "There is a problem with the server configuration.",
}

// MessageForCode 返回错误码对应的提示文案，未知错误码回退到通用文案。
func MessageForCode(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Unable to sign in."
}
