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

// secretKey 是服务器在启动时生成的32字节密钥。
var secretKey []byte

// ReadingPayload 定义了需要被签名的数据结构。
// 它在创建牌阵的响应中被签名下发，并在后续的翻牌/解读请求中被校验，
// 确保客户端操作的是由本服务器签发的会话。
type ReadingPayload struct {
	ReadingID string `json:"r"`
	IssuedAt  int64  `json:"t"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// GenerateReadingSignature 为一个给定的ReadingPayload生成HMAC签名。
// 返回签名的Base64编码字符串。
func GenerateReadingSignature(payload ReadingPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化Token payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateReadingSignature 验证一个给定的payload和签名是否匹配。
func ValidateReadingSignature(payload ReadingPayload, signatureB64 string) bool {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)

	actualSignature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	// 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
