package services

import (
	"encoding/base64"
	"errors"

	"powerauthserver/models"
	"powerauthserver/utils"
)

var errMissingDBEncryptionKey = errors.New("master db encryption key is not configured")

// ServerKeyConverter 서버 개인키를 DB 저장 형식으로 변환한다 (AES_HMAC 또는 평문)
type ServerKeyConverter struct {
	masterKey []byte
}

// NewServerKeyConverter masterKey 가 비어 있으면 NO_ENCRYPTION 으로 저장한다
func NewServerKeyConverter(masterKey []byte) *ServerKeyConverter {
	return &ServerKeyConverter{masterKey: masterKey}
}

// ToDB 저장값과 암호화 모드. 저장값은 base64(iv || ciphertext)
func (c *ServerKeyConverter) ToDB(privateKey []byte, userID, activationID string) (string, models.EncryptionMode, error) {
	if len(c.masterKey) == 0 {
		return base64.StdEncoding.EncodeToString(privateKey), models.EncryptionModeNone, nil
	}
	iv, err := utils.RandomBytes(16)
	if err != nil {
		return "", "", err
	}
	encrypted, err := utils.EncryptAESCBC(c.secretKey(userID, activationID), iv, privateKey)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(utils.ConcatBytes(iv, encrypted)), models.EncryptionModeAESHMAC, nil
}

// FromDB 저장값을 개인키 바이트로 복원
func (c *ServerKeyConverter) FromDB(value string, mode models.EncryptionMode, userID, activationID string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, wrapError(CodeInvalidKeyFormat, err)
	}
	switch mode {
	case models.EncryptionModeNone, "":
		return raw, nil
	case models.EncryptionModeAESHMAC:
		if len(c.masterKey) == 0 {
			return nil, wrapError(CodeGenericCryptographyError, errMissingDBEncryptionKey)
		}
		if len(raw) < 32 {
			return nil, newError(CodeInvalidKeyFormat)
		}
		plain, err := utils.DecryptAESCBC(c.secretKey(userID, activationID), raw[:16], raw[16:])
		if err != nil {
			return nil, wrapError(CodeDecryptionFailed, err)
		}
		return plain, nil
	}
	return nil, wrapError(CodeGenericCryptographyError, errors.New("unsupported encryption mode: "+string(mode)))
}

func (c *ServerKeyConverter) secretKey(userID, activationID string) []byte {
	return utils.DeriveSecretKeyHmac(c.masterKey, []byte(userID+"&"+activationID))
}
