package userkey

import (
	"github.com/saylorsolutions/vaultkey/pkg/protect"
)

// Password is a Source derived from a master password.
// An empty password is allowed, and contributes the hash of zero bytes.
type Password struct {
	text *protect.Text
	key  *protect.Buffer
}

// NewPassword creates a Password from a string.
func NewPassword(password string) *Password {
	return NewPasswordBytes([]byte(password))
}

// NewPasswordBytes creates a Password from UTF-8 bytes.
// The input isn't retained, so the caller should wipe it afterward.
func NewPasswordBytes(password []byte) *Password {
	return &Password{
		text: protect.NewTextBytes(password),
		key:  hashed(password),
	}
}

func (p *Password) Name() string {
	return "password"
}

func (p *Password) KeyData() *protect.Buffer {
	return p.key
}

// Password returns the protected original password.
func (p *Password) Password() *protect.Text {
	return p.text
}

func (p *Password) Destroy() {
	p.text.Destroy()
	p.key.Destroy()
	p.key = nil
}
