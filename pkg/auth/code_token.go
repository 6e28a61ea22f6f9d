package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/crypt"
)

// ErrCodeMismatch is returned when the emailed code does not match the token.
var ErrCodeMismatch = errors.New("auth: code mismatch")

// Code token purposes.
const (
	PurposeActivation = "activation"
	PurposeReset      = "reset"
)

// CodeTTL bounds activation and password-reset tokens.
const CodeTTL = 5 * time.Minute

type codeClaims struct {
	Purpose string `json:"purpose"`
	Sealed  string `json:"sealed"`
	jwt.RegisteredClaims
}

type sealedBody struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

// IssueCodeToken binds data to a random 4-digit code. Both are sealed with
// AES-GCM inside a JWT signed with ACTIVATION_SECRET, so the client can hold
// the token without being able to read the code or the data.
func IssueCodeToken(purpose string, data interface{}) (token, code string, err error) {
	code, err = randomCode()
	if err != nil {
		return "", "", err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", "", fmt.Errorf("auth: marshal code payload: %w", err)
	}
	sealed, err := crypt.EncryptJSON(sealedBody{Code: code, Data: raw})
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	claims := codeClaims{
		Purpose: purpose,
		Sealed:  sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(CodeTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.ActivationSecret()))
	if err != nil {
		return "", "", err
	}
	return token, code, nil
}

// VerifyCodeToken checks signature, expiry, purpose and code, then decodes
// the sealed data into dest.
func VerifyCodeToken(token, purpose, code string, dest interface{}) error {
	parsed, err := jwt.ParseWithClaims(token, &codeClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return []byte(config.ActivationSecret()), nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*codeClaims)
	if !ok || !parsed.Valid || claims.Purpose != purpose {
		return ErrInvalidToken
	}

	var body sealedBody
	if err := crypt.DecryptJSON(claims.Sealed, &body); err != nil {
		return ErrInvalidToken
	}
	if !crypt.Equal(body.Code, code) {
		return ErrCodeMismatch
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(body.Data, dest)
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("auth: random code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}
