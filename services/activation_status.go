package services

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"powerauthserver/models"
	"powerauthserver/utils"
)

const (
	statusBlobMagic      uint32 = 0xDEC0DED1
	statusBlobSize              = 32
	currentCryptoVersion        = 3
)

// statusBlobInfo 암호화 전 상태 blob 필드
type statusBlobInfo struct {
	status            models.ActivationStatus
	currentVersion    byte
	upgradeVersion    byte
	failedAttempts    byte
	maxFailedAttempts byte
	lookahead         byte
	counterByte       byte
	ctrDataHash       []byte
}

// bytes 32바이트 직렬화. challenge 가 있으면 예약 영역을 난수로 채운다
func (b statusBlobInfo) bytes(withRandomPadding bool) ([]byte, error) {
	out := make([]byte, statusBlobSize)
	binary.BigEndian.PutUint32(out[0:4], statusBlobMagic)
	out[4] = b.status.Byte()
	out[5] = b.currentVersion
	out[6] = b.upgradeVersion
	if withRandomPadding {
		pad, err := utils.RandomBytes(5)
		if err != nil {
			return nil, err
		}
		copy(out[7:12], pad)
	}
	out[12] = b.counterByte
	out[13] = b.failedAttempts
	out[14] = b.maxFailedAttempts
	out[15] = b.lookahead
	copy(out[16:32], b.ctrDataHash)
	return out, nil
}

// newStatusBlobInfo 활성화 레코드로부터 blob 필드 구성
func newStatusBlobInfo(a *models.Activation, transportKey []byte, lookahead int) (statusBlobInfo, error) {
	info := statusBlobInfo{
		status:            a.Status,
		currentVersion:    byte(a.Version),
		upgradeVersion:    currentCryptoVersion,
		failedAttempts:    byte(a.FailedAttempts),
		maxFailedAttempts: byte(a.MaxFailedAttempts),
		lookahead:         byte(lookahead),
		counterByte:       byte(a.Counter),
		ctrDataHash:       make([]byte, 16),
	}
	if a.CtrData != "" {
		ctrData, err := decodeBase64(a.CtrData)
		if err != nil {
			return statusBlobInfo{}, wrapError(CodeGenericCryptographyError, err)
		}
		hashKey, err := utils.DeriveSecretKey(transportKey, utils.KeyIndexStatusBlob)
		if err != nil {
			return statusBlobInfo{}, wrapError(CodeGenericCryptographyError, err)
		}
		info.ctrDataHash = utils.DeriveSecretKeyHmac(hashKey, ctrData)
	}
	return info, nil
}

// encryptStatusBlob AES-CBC(transportKey) 로 암호화.
// challenge 가 없으면 zero IV, 있으면 IV = KDF_INTERNAL(KDF(transport, 3000), challenge || nonce)
func encryptStatusBlob(info statusBlobInfo, transportKey, challenge, nonce []byte) ([]byte, error) {
	plain, err := info.bytes(challenge != nil)
	if err != nil {
		return nil, wrapError(CodeGenericCryptographyError, err)
	}
	iv := make([]byte, 16)
	if challenge != nil {
		ivKey, err := utils.DeriveSecretKey(transportKey, utils.KeyIndexTransportIV)
		if err != nil {
			return nil, wrapError(CodeGenericCryptographyError, err)
		}
		iv = utils.DeriveSecretKeyHmac(ivKey, utils.ConcatBytes(challenge, nonce))
	}
	encrypted, err := utils.EncryptAESCBCNoPadding(transportKey, iv, plain)
	if err != nil {
		return nil, wrapError(CodeGenericCryptographyError, err)
	}
	return encrypted, nil
}

// activationFingerprint 디바이스 공개키 지문 (8자리 십진수).
// v3 는 디바이스 키, 활성화 ID, 서버 키를 모두 포함한다
func activationFingerprint(version int, device, server *ecdsa.PublicKey, activationID string) (string, error) {
	deviceX := utils.PublicKeyToBytes(device)[1:]
	var data []byte
	switch version {
	case 2:
		data = deviceX
	case 3:
		data = utils.ConcatBytes(deviceX, []byte(activationID), utils.PublicKeyToBytes(server)[1:])
	default:
		return "", newError(CodeActivationIncorrectState)
	}
	sum := sha256.Sum256(data)
	n := binary.BigEndian.Uint32(sum[28:]) & 0x7FFFFFFF
	return fmt.Sprintf("%08d", n%100000000), nil
}
