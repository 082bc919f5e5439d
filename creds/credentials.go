////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package creds stores the session credentials from the last successful
// online login, encrypted under the user's password so a later offline
// session can resume with a real token instead of a bare identity match.
package creds

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"

	"gitlab.com/classhub/learndk-wasm/storage"
)

// Data lengths.
const (
	// keyLen is the length of the derived encryption key
	keyLen = chacha20poly1305.KeySize

	// saltLen is the length of the salt. Recommended to be 16 bytes here:
	// https://datatracker.ietf.org/doc/html/draft-irtf-cfrg-argon2-04#section-3.1
	saltLen = 16
)

// Storage keys.
const (
	// Key used to store the key-derivation salt.
	saltKey = "learndkCredentialSalt"

	// Key used to store the encrypted credentials.
	credentialsKey = "learndkEncryptedCredentials"

	// Key used to store the argon2 parameters used to encrypt/decrypt the
	// credentials.
	argonParamsKey = "learndkCredentialParams"
)

// Error messages.
const (
	getCredentialsStorageErr = "could not retrieve encrypted credentials from storage: %+v"
	getSaltStorageErr        = "could not retrieve salt from storage: %+v"
	getParamsStorageErr      = "could not retrieve encryption parameters from storage: %+v"
	paramsUnmarshalErr       = "failed to unmarshal encryption parameters loaded from storage: %+v"
	decryptCredentialsErr    = "could not decrypt credentials: %+v"

	readNonceLenErr        = "read %d bytes, too short to decrypt"
	decryptWithPasswordErr = "cannot decrypt with password: %+v"

	readSaltErr     = "could not generate salt: %+v"
	saltNumBytesErr = "expected %d bytes for salt, found %d bytes"
)

// ErrExpired is returned by Load when the stored token's expiry has passed.
var ErrExpired = errors.New("stored credentials have expired")

// Credentials is the session state captured at online login time.
type Credentials struct {
	UserID  string    `json:"userId"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Store persists credentials over the flat store, encrypted under the
// user's password.
type Store struct {
	kv storage.KeyValue
}

// NewStore creates a credential Store over the flat store.
func NewStore(kv storage.KeyValue) *Store {
	return &Store{kv: kv}
}

// Save encrypts the credentials under the password and stores them,
// replacing any previous credentials.
func (s *Store) Save(password string, c Credentials) error {
	salt, err := makeSalt(rand.Reader)
	if err != nil {
		return err
	}
	if err = s.kv.Set(saltKey, salt); err != nil {
		return err
	}

	params := defaultParams()
	paramsData, err := json.Marshal(params)
	if err != nil {
		return err
	}
	if err = s.kv.Set(argonParamsKey, paramsData); err != nil {
		return err
	}

	plaintext, err := json.Marshal(c)
	if err != nil {
		return err
	}

	key := deriveKey(password, salt, params)
	return s.kv.Set(credentialsKey, encrypt(plaintext, key, rand.Reader))
}

// Load decrypts and returns the stored credentials. Returns os.ErrNotExist
// when nothing is stored, ErrExpired when the token expiry has passed, and
// a decryption error when the password is wrong.
func (s *Store) Load(password string) (Credentials, error) {
	encrypted, err := s.kv.Get(credentialsKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, err
		}
		return Credentials{}, errors.Errorf(getCredentialsStorageErr, err)
	}

	salt, err := s.kv.Get(saltKey)
	if err != nil {
		return Credentials{}, errors.Errorf(getSaltStorageErr, err)
	}

	paramsData, err := s.kv.Get(argonParamsKey)
	if err != nil {
		return Credentials{}, errors.Errorf(getParamsStorageErr, err)
	}
	var params argonParams
	if err = json.Unmarshal(paramsData, &params); err != nil {
		return Credentials{}, errors.Errorf(paramsUnmarshalErr, err)
	}

	key := deriveKey(password, salt, params)
	plaintext, err := decrypt(encrypted, key)
	if err != nil {
		return Credentials{}, errors.Errorf(decryptCredentialsErr, err)
	}

	var c Credentials
	if err = json.Unmarshal(plaintext, &c); err != nil {
		return Credentials{}, errors.Wrap(
			err, "failed to unmarshal decrypted credentials")
	}

	if !c.Expires.IsZero() && time.Now().After(c.Expires) {
		return Credentials{}, ErrExpired
	}
	return c, nil
}

// ChangePassword re-encrypts the stored credentials under a new password.
func (s *Store) ChangePassword(oldPassword, newPassword string) error {
	c, err := s.Load(oldPassword)
	if err != nil && !errors.Is(err, ErrExpired) {
		return err
	}
	return s.Save(newPassword, c)
}

// Clear removes the stored credentials, salt, and parameters.
func (s *Store) Clear() error {
	for _, keyName := range []string{
		credentialsKey, saltKey, argonParamsKey} {
		s.kv.Remove(keyName)
	}
	return nil
}

// encrypt seals the data using XChaCha20-Poly1305.
func encrypt(data, key []byte, csprng io.Reader) []byte {
	chaCipher := initChaCha20Poly1305(key)
	nonce := make([]byte, chaCipher.NonceSize())
	if _, err := io.ReadFull(csprng, nonce); err != nil {
		jww.FATAL.Panicf("Could not generate nonce %+v", err)
	}
	ciphertext := chaCipher.Seal(nonce, nonce, data, nil)
	return ciphertext
}

// decrypt opens data sealed by encrypt.
func decrypt(data, key []byte) ([]byte, error) {
	chaCipher := initChaCha20Poly1305(key)
	nonceLen := chaCipher.NonceSize()
	if (len(data) - nonceLen) <= 0 {
		return nil, errors.Errorf(readNonceLenErr, len(data))
	}
	nonce, ciphertext := data[:nonceLen], data[nonceLen:]
	plaintext, err := chaCipher.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Errorf(decryptWithPasswordErr, err)
	}
	return plaintext, nil
}

// initChaCha20Poly1305 returns a XChaCha20-Poly1305 cipher.AEAD that uses
// the given key hashed into a 256-bit key.
func initChaCha20Poly1305(key []byte) cipher.AEAD {
	keyHash := blake2b.Sum256(key)
	chaCipher, err := chacha20poly1305.NewX(keyHash[:])
	if err != nil {
		jww.FATAL.Panicf("Could not init XChaCha20Poly1305 mode: %+v", err)
	}

	return chaCipher
}

// argonParams contains the cost parameters used by Argon2.
type argonParams struct {
	Time    uint32 // Number of passes over the memory
	Memory  uint32 // Amount of memory used in KiB
	Threads uint8  // Number of threads used
}

// defaultParams returns the recommended general purposes parameters.
func defaultParams() argonParams {
	return argonParams{
		Time:    1,
		Memory:  64 * 1024, // ~64 MB
		Threads: 4,
	}
}

// deriveKey derives a key from a user supplied password and a salt via the
// Argon2 algorithm.
func deriveKey(password string, salt []byte, params argonParams) []byte {
	return argon2.IDKey([]byte(password), salt,
		params.Time, params.Memory, params.Threads, keyLen)
}

// makeSalt generates a salt of the correct length for key generation.
func makeSalt(csprng io.Reader) ([]byte, error) {
	b := make([]byte, saltLen)
	size, err := csprng.Read(b)
	if err != nil {
		return nil, errors.Errorf(readSaltErr, err)
	} else if size != saltLen {
		return nil, errors.Errorf(saltNumBytesErr, saltLen, size)
	}

	return b, nil
}
