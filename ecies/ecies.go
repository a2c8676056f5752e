// Package ecies implements the ECDH based envelope encryption used for
// request and response payloads between the device and the server.
package ecies

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"encoding/binary"
	"errors"
	"fmt"

	"powerauthserver/utils"
)

// SharedInfo1 용도별 KDF 구분자
type SharedInfo1 string

const (
	SharedInfo1ApplicationScopeGeneric SharedInfo1 = "/pa/generic/application"
	SharedInfo1ActivationScopeGeneric  SharedInfo1 = "/pa/generic/activation"
	SharedInfo1ActivationLayer2        SharedInfo1 = "/pa/activation"
	SharedInfo1ConfirmRecoveryCode     SharedInfo1 = "/pa/recovery/confirm"
)

// Protocol versions with distinct envelope rules.
const (
	Version30 = "3.0"
	Version31 = "3.1"
	Version32 = "3.2"
)

const (
	envelopeKeyLength = 48
	nonceLength       = 16
)

var (
	// ErrDecryptionFailed 복호화 실패 원인은 구분하지 않는다
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrInvalidParameters nonce/timestamp 가 버전 규칙에 맞지 않음
	ErrInvalidParameters = errors.New("invalid encryption parameters")
)

// Cryptogram 암호화된 페이로드
type Cryptogram struct {
	EphemeralPublicKey []byte
	Mac                []byte
	EncryptedData      []byte
}

// Parameters 버전별 부가 파라미터
type Parameters struct {
	Nonce []byte
	// Timestamp unix milliseconds, 0 이면 없음
	Timestamp      int64
	AssociatedData []byte
}

// EnvelopeKey X9.63 KDF 결과를 암호화/MAC/IV 키로 분할한 값
type EnvelopeKey struct {
	EncKey             []byte
	MacKey             []byte
	IvKey              []byte
	EphemeralPublicKey []byte
}

// Bytes enc ‖ mac ‖ iv
func (k EnvelopeKey) Bytes() []byte {
	return utils.ConcatBytes(k.EncKey, k.MacKey, k.IvKey)
}

// EnvelopeKeyFromBytes Bytes 의 역변환
func EnvelopeKeyFromBytes(b, ephemeralPublicKey []byte) (EnvelopeKey, error) {
	if len(b) != envelopeKeyLength {
		return EnvelopeKey{}, ErrInvalidParameters
	}
	return EnvelopeKey{
		EncKey:             b[0:16],
		MacKey:             b[16:32],
		IvKey:              b[32:48],
		EphemeralPublicKey: ephemeralPublicKey,
	}, nil
}

// DeriveEnvelopeKey envelope = KDF_X9.63(shared, sharedInfo1 ‖ ephemeral, 48)
func DeriveEnvelopeKey(sharedSecret []byte, sharedInfo1 SharedInfo1, ephemeralPublicKey []byte) EnvelopeKey {
	info := utils.ConcatBytes([]byte(sharedInfo1), ephemeralPublicKey)
	derived := utils.KDFX963(sharedSecret, info, envelopeKeyLength)
	key, _ := EnvelopeKeyFromBytes(derived, ephemeralPublicKey)
	return key
}

// ApplicationSharedInfo2 application scope: SHA256(appSecret)
func ApplicationSharedInfo2(applicationSecret string) []byte {
	return utils.SHA256([]byte(applicationSecret))
}

// ActivationSharedInfo2 activation scope: HMAC(transportKey, appSecret)
func ActivationSharedInfo2(transportKey []byte, applicationSecret string) []byte {
	return utils.HmacSHA256(transportKey, []byte(applicationSecret))
}

// AssociatedData 3.2 부가 데이터 (version, appKey[, activationId]) 길이 접두 인코딩
func AssociatedData(version, applicationKey, activationID string) []byte {
	if version != Version32 {
		return nil
	}
	parts := [][]byte{[]byte(version), []byte(applicationKey)}
	if activationID != "" {
		parts = append(parts, []byte(activationID))
	}
	return lengthPrefixed(parts...)
}

// ValidateParameters 버전별 nonce/timestamp 필수 여부 검사
func ValidateParameters(version string, p Parameters) error {
	switch version {
	case Version30:
		return nil
	case Version31:
		if len(p.Nonce) != nonceLength {
			return fmt.Errorf("%w: nonce required", ErrInvalidParameters)
		}
		return nil
	case Version32:
		if len(p.Nonce) != nonceLength || p.Timestamp <= 0 {
			return fmt.Errorf("%w: nonce and timestamp required", ErrInvalidParameters)
		}
		return nil
	}
	return fmt.Errorf("%w: unsupported version %s", ErrInvalidParameters, version)
}

func lengthPrefixed(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(p)))
		out = append(out, l[:]...)
		out = append(out, p...)
	}
	return out
}

func deriveIV(version string, ivKey, nonce []byte) []byte {
	if version == Version30 {
		return make([]byte, 16)
	}
	return utils.DeriveSecretKeyHmac(ivKey, nonce)
}

func macInfo(version string, sharedInfo2 []byte, key EnvelopeKey, p Parameters) []byte {
	if version != Version32 {
		return sharedInfo2
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(p.Timestamp))
	return utils.ConcatBytes(sharedInfo2, lengthPrefixed(p.Nonce, ts, key.EphemeralPublicKey, p.AssociatedData))
}

func seal(version string, key EnvelopeKey, sharedInfo2, plaintext []byte, p Parameters) (Cryptogram, error) {
	encrypted, err := utils.EncryptAESCBC(key.EncKey, deriveIV(version, key.IvKey, p.Nonce), plaintext)
	if err != nil {
		return Cryptogram{}, err
	}
	mac := utils.HmacSHA256(key.MacKey, utils.ConcatBytes(encrypted, macInfo(version, sharedInfo2, key, p)))
	return Cryptogram{Mac: mac, EncryptedData: encrypted}, nil
}

func open(version string, key EnvelopeKey, sharedInfo2 []byte, c Cryptogram, p Parameters) ([]byte, error) {
	if len(c.EncryptedData) == 0 || len(c.Mac) == 0 {
		return nil, ErrDecryptionFailed
	}
	expected := utils.HmacSHA256(key.MacKey, utils.ConcatBytes(c.EncryptedData, macInfo(version, sharedInfo2, key, p)))
	if !hmac.Equal(expected, c.Mac) {
		return nil, ErrDecryptionFailed
	}
	plain, err := utils.DecryptAESCBC(key.EncKey, deriveIV(version, key.IvKey, p.Nonce), c.EncryptedData)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

func newNonce(version string) ([]byte, error) {
	if version == Version30 {
		return nil, nil
	}
	return utils.RandomBytes(nonceLength)
}

func nowMillis(version string) int64 {
	if version != Version32 {
		return 0
	}
	return utils.NowMillis()
}

// Decryptor 서버 측: 요청 복호화 후 같은 envelope 로 응답 암호화
type Decryptor struct {
	privateKey   *ecdsa.PrivateKey
	sharedInfo1  SharedInfo1
	sharedInfo2  []byte
	version      string
	envelope     *EnvelopeKey
	requestNonce []byte
}

// NewDecryptor 개인키 기반 복호화기
func NewDecryptor(privateKey *ecdsa.PrivateKey, sharedInfo1 SharedInfo1, sharedInfo2 []byte, version string) *Decryptor {
	return &Decryptor{
		privateKey:  privateKey,
		sharedInfo1: sharedInfo1,
		sharedInfo2: sharedInfo2,
		version:     version,
	}
}

// NewDecryptorFromEnvelope 이미 파생된 envelope 키로 복호화기 생성
func NewDecryptorFromEnvelope(key EnvelopeKey, sharedInfo2 []byte, version string) *Decryptor {
	return &Decryptor{
		sharedInfo2: sharedInfo2,
		version:     version,
		envelope:    &key,
	}
}

// Version 프로토콜 버전
func (d *Decryptor) Version() string {
	return d.version
}

// SharedInfo2 MAC 바인딩 값
func (d *Decryptor) SharedInfo2() []byte {
	return d.sharedInfo2
}

// DeriveEnvelope 임시 공개키로부터 envelope 키 파생 (요청 복호화 없이)
func (d *Decryptor) DeriveEnvelope(ephemeralPublicKey []byte) (EnvelopeKey, error) {
	if d.privateKey == nil {
		if d.envelope == nil {
			return EnvelopeKey{}, ErrDecryptionFailed
		}
		return *d.envelope, nil
	}
	pub, err := utils.BytesToPublicKey(ephemeralPublicKey)
	if err != nil {
		return EnvelopeKey{}, ErrDecryptionFailed
	}
	shared, err := utils.SharedSecret(d.privateKey, pub)
	if err != nil {
		return EnvelopeKey{}, ErrDecryptionFailed
	}
	key := DeriveEnvelopeKey(shared, d.sharedInfo1, ephemeralPublicKey)
	d.envelope = &key
	return key, nil
}

// DecryptRequest 요청 복호화
func (d *Decryptor) DecryptRequest(c Cryptogram, p Parameters) ([]byte, error) {
	if err := ValidateParameters(d.version, p); err != nil {
		return nil, ErrDecryptionFailed
	}
	key, err := d.DeriveEnvelope(c.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	plain, err := open(d.version, key, d.sharedInfo2, c, p)
	if err != nil {
		return nil, err
	}
	d.requestNonce = p.Nonce
	return plain, nil
}

// EncryptResponse 응답 암호화. 3.1 은 요청 nonce 재사용, 3.2 는 새 nonce/timestamp 발급
func (d *Decryptor) EncryptResponse(plaintext, associatedData []byte) (Cryptogram, Parameters, error) {
	if d.envelope == nil {
		return Cryptogram{}, Parameters{}, errors.New("request was not decrypted")
	}
	p := Parameters{AssociatedData: associatedData}
	switch d.version {
	case Version31:
		p.Nonce = d.requestNonce
	case Version32:
		nonce, err := newNonce(d.version)
		if err != nil {
			return Cryptogram{}, Parameters{}, err
		}
		p.Nonce = nonce
		p.Timestamp = nowMillis(d.version)
	}
	c, err := seal(d.version, *d.envelope, d.sharedInfo2, plaintext, p)
	return c, p, err
}

// Encryptor 클라이언트 측 암호화기 (테스트 및 서버 간 호출용)
type Encryptor struct {
	publicKey   *ecdsa.PublicKey
	sharedInfo1 SharedInfo1
	sharedInfo2 []byte
	version     string
	envelope    *EnvelopeKey
	request     Parameters
}

// NewEncryptor 수신자 공개키 기반 암호화기
func NewEncryptor(publicKey *ecdsa.PublicKey, sharedInfo1 SharedInfo1, sharedInfo2 []byte, version string) *Encryptor {
	return &Encryptor{
		publicKey:   publicKey,
		sharedInfo1: sharedInfo1,
		sharedInfo2: sharedInfo2,
		version:     version,
	}
}

// EncryptRequest 새 임시 키쌍으로 요청 암호화
func (e *Encryptor) EncryptRequest(plaintext, associatedData []byte) (Cryptogram, Parameters, error) {
	ephemeral, err := utils.GenerateKeyPair()
	if err != nil {
		return Cryptogram{}, Parameters{}, err
	}
	shared, err := utils.SharedSecret(ephemeral, e.publicKey)
	if err != nil {
		return Cryptogram{}, Parameters{}, err
	}
	ephemeralBytes := utils.PublicKeyToBytes(&ephemeral.PublicKey)
	key := DeriveEnvelopeKey(shared, e.sharedInfo1, ephemeralBytes)
	e.envelope = &key

	nonce, err := newNonce(e.version)
	if err != nil {
		return Cryptogram{}, Parameters{}, err
	}
	p := Parameters{Nonce: nonce, Timestamp: nowMillis(e.version), AssociatedData: associatedData}
	e.request = p

	c, err := seal(e.version, key, e.sharedInfo2, plaintext, p)
	if err != nil {
		return Cryptogram{}, Parameters{}, err
	}
	c.EphemeralPublicKey = ephemeralBytes
	return c, p, nil
}

// DecryptResponse 응답 복호화
func (e *Encryptor) DecryptResponse(c Cryptogram, p Parameters) ([]byte, error) {
	if e.envelope == nil {
		return nil, ErrDecryptionFailed
	}
	if e.version == Version31 && p.Nonce == nil {
		p.Nonce = e.request.Nonce
	}
	return open(e.version, *e.envelope, e.sharedInfo2, c, p)
}
