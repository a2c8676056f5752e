package services

import (
	"crypto/ecdsa"
	"encoding/base64"

	"powerauthserver/models"
	"powerauthserver/utils"
)

// activationKeys 활성화의 서버 개인키와 디바이스 공개키
type activationKeys struct {
	serverPrivate *ecdsa.PrivateKey
	devicePublic  *ecdsa.PublicKey
}

// loadActivationKeys 서버 개인키 복호화 후 디바이스 공개키와 함께 반환
func loadActivationKeys(conv *ServerKeyConverter, a *models.Activation) (activationKeys, error) {
	priv, err := loadServerPrivateKey(conv, a)
	if err != nil {
		return activationKeys{}, err
	}
	pubBytes, err := base64.StdEncoding.DecodeString(a.DevicePublicKey)
	if err != nil {
		return activationKeys{}, wrapError(CodeInvalidKeyFormat, err)
	}
	pub, err := utils.BytesToPublicKey(pubBytes)
	if err != nil {
		return activationKeys{}, wrapError(CodeInvalidKeyFormat, err)
	}
	return activationKeys{serverPrivate: priv, devicePublic: pub}, nil
}

func loadServerPrivateKey(conv *ServerKeyConverter, a *models.Activation) (*ecdsa.PrivateKey, error) {
	raw, err := conv.FromDB(a.ServerPrivateKey, a.ServerPrivateKeyEncryption, a.UserID, a.ActivationID)
	if err != nil {
		return nil, err
	}
	priv, err := utils.BytesToPrivateKey(raw)
	if err != nil {
		return nil, wrapError(CodeInvalidKeyFormat, err)
	}
	return priv, nil
}

// masterSecret ECDH 결과를 16바이트로 축약한 마스터 비밀키
func (k activationKeys) masterSecret() ([]byte, error) {
	shared, err := utils.SharedSecret(k.serverPrivate, k.devicePublic)
	if err != nil {
		return nil, wrapError(CodeGenericCryptographyError, err)
	}
	return utils.MasterSecretKey(shared), nil
}

// transportKey KDF(master, 1000)
func (k activationKeys) transportKey() ([]byte, error) {
	master, err := k.masterSecret()
	if err != nil {
		return nil, err
	}
	key, err := utils.TransportKey(master)
	if err != nil {
		return nil, wrapError(CodeGenericCryptographyError, err)
	}
	return key, nil
}

// loadMasterPrivateKey base64 마스터 개인키 파싱
func loadMasterPrivateKey(kp *models.MasterKeyPair) (*ecdsa.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(kp.PrivateKey)
	if err != nil {
		return nil, wrapError(CodeIncorrectMasterServerKeyPair, err)
	}
	priv, err := utils.BytesToPrivateKey(raw)
	if err != nil {
		return nil, wrapError(CodeIncorrectMasterServerKeyPair, err)
	}
	return priv, nil
}

// decodeBase64 빈 문자열은 nil
func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
