// Package credentials decrypts the symmetric-encrypted `.dat` files that
// hold the self-hosted platform's NTLM login, NTLM password, and PAT token,
// substituting golang.org/x/crypto/nacl/secretbox for the original's Fernet
// scheme (REDESIGN FLAG: Go has no Fernet implementation in the pack;
// secretbox is the idiomatic authenticated-encryption primitive already
// present in the teacher's transitive dependency graph).
package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32
const nonceSize = 24

// Provider exposes the three credential values the Ref Resolver / Fetcher's
// auth fallback chain needs. It is constructed once at startup and injected
// into the fetcher (REDESIGN FLAG: explicit provider, not module-level
// keyring state as in original_source/app/secure_save.py).
type Provider struct {
	login    string
	password string
	pat      string
}

// Login returns the decrypted NTLM username, or ("", false) if unconfigured.
func (p *Provider) Login() (string, bool) { return p.login, p.login != "" }

// Password returns the decrypted NTLM password, or ("", false) if unconfigured.
func (p *Provider) Password() (string, bool) { return p.password, p.password != "" }

// PAT returns the decrypted personal access token, or ("", false) if unconfigured.
func (p *Provider) PAT() (string, bool) { return p.pat, p.pat != "" }

// Keys bundles the three base64-encoded symmetric keys read from
// LOGIN_KEY / PASSWORD_KEY / PAT_KEY.
type Keys struct {
	LoginKeyB64    string
	PasswordKeyB64 string
	PATKeyB64      string
}

// Files bundles the three on-disk ciphertext paths.
type Files struct {
	LoginPath    string
	PasswordPath string
	PATPath      string
}

// Load decrypts whichever of the three files are present; a missing file or
// missing key is not an error here — it simply leaves that credential unset,
// and the fetcher's auth chain skips methods with entity.ErrNoCredentials.
func Load(keys Keys, files Files) (*Provider, error) {
	p := &Provider{}
	var err error

	if p.login, err = decryptIfPresent(files.LoginPath, keys.LoginKeyB64); err != nil {
		return nil, fmt.Errorf("login credential: %w", err)
	}
	if p.password, err = decryptIfPresent(files.PasswordPath, keys.PasswordKeyB64); err != nil {
		return nil, fmt.Errorf("password credential: %w", err)
	}
	if p.pat, err = decryptIfPresent(files.PATPath, keys.PATKeyB64); err != nil {
		return nil, fmt.Errorf("pat credential: %w", err)
	}

	return p, nil
}

func decryptIfPresent(path, keyB64 string) (string, error) {
	if path == "" || keyB64 == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decrypt(ciphertext, keyB64)
}

func decodeKey(keyB64 string) (*[keySize]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("key must decode to %d bytes, got %d", keySize, len(raw))
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}

// Decrypt opens a secretbox-sealed file: the first nonceSize bytes are the
// nonce, the remainder is the sealed box.
func Decrypt(ciphertext []byte, keyB64 string) (string, error) {
	key, err := decodeKey(keyB64)
	if err != nil {
		return "", err
	}
	if len(ciphertext) < nonceSize {
		return "", entity.ErrNoCredentials
	}

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, key)
	if !ok {
		return "", errors.New("credential decryption failed: authentication mismatch")
	}
	return string(plaintext), nil
}

// Encrypt seals text under key, prefixing a fresh random nonce. Used by the
// first-run setup flow to write login.dat/password.dat/pat_token.dat.
func Encrypt(text, keyB64 string) ([]byte, error) {
	key, err := decodeKey(keyB64)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	sealed := secretbox.Seal(nonce[:], []byte(text), &nonce, key)
	return sealed, nil
}

// GenerateKey returns a fresh random base64-encoded symmetric key, the Go
// equivalent of Fernet.generate_key() in original_source/app/secure_save.py.
func GenerateKey() (string, error) {
	var key [keySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key[:]), nil
}
