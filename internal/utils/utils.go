package utils

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/scoreplay/promo-backend/internal/config"
)

// claimCodeAlphabet avoids ambiguous characters (0/O, 1/I/L) so codes
// survive being read over a counter or a phone line.
const claimCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ClaimCodeLength is the number of alphabet characters in a claim code
// (format XXXX-XXXX-XXXX). 31^12 possibilities make blind guessing
// impractical.
const ClaimCodeLength = 12

// GenerateClaimCode returns a cryptographically random single-use claim
// code. Bytes at or above the largest multiple of the alphabet size are
// rejected and redrawn, so every character is equally likely. Uniqueness
// is not guaranteed here; the winners collection's unique index is the
// authority and callers retry on collision.
func GenerateClaimCode() (string, error) {
	const limit = 256 - 256%len(claimCodeAlphabet)

	code := make([]byte, 0, ClaimCodeLength+2)
	buf := make([]byte, ClaimCodeLength*2)
	picked := 0
	for picked < ClaimCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			if picked > 0 && picked%4 == 0 {
				code = append(code, '-')
			}
			code = append(code, claimCodeAlphabet[int(b)%len(claimCodeAlphabet)])
			picked++
			if picked == ClaimCodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// RandomSeed draws a non-negative int64 from the system CSPRNG, used to
// seed the draw selection RNG and recorded on the draw for forensics.
func RandomSeed() (int64, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return 0, err
	}
	seed := int64(binary.BigEndian.Uint64(raw[:]) & (1<<63 - 1))
	return seed, nil
}

// GenerateJWT issues an operator bearer token
func GenerateJWT(userID, email, role string, cfg *config.Config) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   expiresAt.Unix(),
	})

	tokenString, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateJWT parses and validates an operator bearer token
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
