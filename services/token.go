package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "catalog/errors"

	"github.com/dgrijalva/jwt-go"
)

// Identity là người gọi lấy từ token
type Identity struct {
	UserID string
	Role   string
}

// TokenParser đọc userinfo trong JWT; secret rỗng thì chỉ giải mã payload (token đã được gateway xác thực)
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse lấy userID và role từ token
func (p *TokenParser) Parse(tokenString string) (*Identity, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, invalidToken("Invalid token", nil)
	}

	var claims jwt.MapClaims
	if len(p.secret) > 0 {
		parsed := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, parsed, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return p.secret, nil
		})
		if err != nil || !token.Valid {
			return nil, invalidToken("Token signature is invalid", err)
		}
		claims = parsed
	} else {
		// Giải mã phần payload của token
		payload, err := jwt.DecodeSegment(parts[1])
		if err != nil {
			return nil, invalidToken("Cannot decode token", err)
		}
		claims = jwt.MapClaims{}
		if err := json.Unmarshal(payload, &claims); err != nil {
			return nil, invalidToken("Cannot parse token", err)
		}
	}

	userInfo, ok := claims["userinfo"].(map[string]interface{})
	if !ok {
		return nil, invalidToken("Token has no user info", nil)
	}

	var userID string
	switch v := userInfo["userid"].(type) {
	case string:
		userID = v
	case float64:
		userID = strconv.FormatInt(int64(v), 10)
	}
	if userID == "" {
		return nil, invalidToken("Token has no user id", nil)
	}

	role, _ := userInfo["role"].(string)
	if role == "" {
		return nil, invalidToken("Token has no role", nil)
	}

	return &Identity{UserID: userID, Role: role}, nil
}

func invalidToken(msg string, err error) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.KindUnauthorized, apperrors.ErrCodeInvalidToken, msg, err)
}
