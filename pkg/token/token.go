package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// SessionPayload 定义了需要被签名的表单会话数据。
// 它在 GET /api/forms/:alias 的响应中下发，并在提交表单时原样带回。
type SessionPayload struct {
	FormID  string `json:"f"`
	Session string `json:"s"`
}

// Signer 使用HMAC-SHA256对会话载荷签名。
type Signer struct {
	secretKey []byte
}

// NewSigner 使用给定的密钥创建签名器。
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("签名密钥不能为空")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{secretKey: key}, nil
}

// NewRandomSigner 生成一个密码学安全的32字节随机密钥并创建签名器。
// 进程重启后，之前签发的签名全部失效。
func NewRandomSigner() (*Signer, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("无法生成安全的密钥: %w", err)
	}
	return &Signer{secretKey: key}, nil
}

func (s *Signer) mac(payload SessionPayload) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.New("无法序列化会话载荷")
	}
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(payloadBytes)
	return mac.Sum(nil), nil
}

// Sign 为一个会话载荷生成Base64编码的HMAC签名。
func (s *Signer) Sign(payload SessionPayload) (string, error) {
	signature, err := s.mac(payload)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// Verify 验证一个载荷和签名是否匹配。
func (s *Signer) Verify(payload SessionPayload, signatureB64 string) bool {
	expected, err := s.mac(payload)
	if err != nil {
		return false
	}
	actual, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	// 时间恒定的比较，防止时序攻击
	return hmac.Equal(expected, actual)
}
