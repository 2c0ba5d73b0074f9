package localauth

// Error is a failure of a local credential operation. Message is the text
// shown to the user; Code identifies the case independently of the copy.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrDuplicateEmail     = &Error{Code: "local/email-exists", Message: "E-mail já cadastrado."}
	ErrInvalidCredentials = &Error{Code: "local/invalid-credentials", Message: "Credenciais inválidas."}
	ErrUserNotFound       = &Error{Code: "local/user-not-found", Message: "Não encontramos uma conta com esse e-mail."}
	ErrNoActiveSession    = &Error{Code: "local/no-user", Message: "Nenhum usuário local autenticado."}
)
