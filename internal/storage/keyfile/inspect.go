package keyfile

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Info describes a parsed public key.
type Info struct {
	Type        string
	Fingerprint string
	Comment     string
}

// Inspect parses data in authorized_keys format and returns its type and
// SHA256 fingerprint. Only the first key is considered.
func Inspect(data []byte) (Info, error) {
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return Info{}, fmt.Errorf("keyfile: parse: %w", err)
	}
	return Info{
		Type:        pub.Type(),
		Fingerprint: ssh.FingerprintSHA256(pub),
		Comment:     comment,
	}, nil
}

// LogAttrs returns the info as slog key-value pairs.
func (i Info) LogAttrs() []any {
	return []any{
		"key_type", i.Type,
		"fingerprint", i.Fingerprint,
		"comment", i.Comment,
	}
}
