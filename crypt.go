package main

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/term"
)

const (
	saltLength   = 32
	scrN         = 32768
	scrR         = 8
	scrP         = 1
	scrKeyLength = 32
)

var errDecrypt = errors.New("decryption failed, wrong password or corrupted data")

// readPassword reads a password from the terminal with echo turned off.
// Replaced in tests.
var readPassword = func(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if len(password) == 0 {
		return nil, errors.New("empty password")
	}
	return password, nil
}

// encryptData seals data with a key derived from the password.
// The result is salt | nonce | ciphertext.
func encryptData(password, data []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	gcm, err := newCipher(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltLength+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// decryptData reverses encryptData
func decryptData(password, payload []byte) ([]byte, error) {
	if len(payload) < saltLength {
		return nil, fmt.Errorf("%w: data too short", errDecrypt)
	}
	gcm, err := newCipher(password, payload[:saltLength])
	if err != nil {
		return nil, err
	}
	payload = payload[saltLength:]
	if len(payload) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("%w: data too short", errDecrypt)
	}
	nonce, sealed := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]
	data, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errDecrypt
	}
	return data, nil
}

func newCipher(password, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, scrN, scrR, scrP, scrKeyLength)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
