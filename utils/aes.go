package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// ErrInvalidPadding PKCS7 패딩 오류
var ErrInvalidPadding = errors.New("invalid padding")

// EncryptAESCBC AES-CBC + PKCS7
func EncryptAESCBC(key, iv, plaintext []byte) ([]byte, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	return EncryptAESCBCNoPadding(key, iv, padded)
}

// DecryptAESCBC AES-CBC + PKCS7
func DecryptAESCBC(key, iv, ciphertext []byte) ([]byte, error) {
	plain, err := DecryptAESCBCNoPadding(key, iv, ciphertext)
	if err != nil {
		return nil, err
	}
	return pkcs7Unpad(plain, aes.BlockSize)
}

// EncryptAESCBCNoPadding 블록 크기 배수 입력 전용
func EncryptAESCBCNoPadding(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return nil, errors.New("invalid block size")
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

// DecryptAESCBCNoPadding 블록 크기 배수 입력 전용
func DecryptAESCBCNoPadding(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.New("invalid block size")
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
