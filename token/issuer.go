// Package token issues and validates the three JWT kinds used by the
// engine: access, verify_email, and reset_password. Tokens are stateless;
// revocation and stamp checks happen in the caller.
package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind is the purpose a token was minted for, carried in the "action"
// claim. A token of one kind is never accepted where another is expected.
type Kind string

const (
	// KindAccess authenticates API requests.
	KindAccess Kind = "access"
	// KindVerifyEmail proves control of a registered email address.
	KindVerifyEmail Kind = "verify_email"
	// KindResetPassword authorizes a password reset.
	KindResetPassword Kind = "reset_password"
)

// SigningMethod selects the JWT signature algorithm.
type SigningMethod string

const (
	// MethodHS256 signs with a shared secret.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrInvalid covers malformed tokens, bad signatures, wrong kinds, and
	// future-dated tokens. Callers must not leak which case applied.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired reports a well-formed, correctly signed token past expiry.
	ErrExpired = errors.New("token expired")
)

// Claims is the private claim set. Subject carries the account ID; Action
// carries the kind. Email appears on access and verification tokens, Stamp
// on access and reset tokens.
type Claims struct {
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
	Stamp  string `json:"security_stamp,omitempty"`
	jwt.RegisteredClaims
}

// Kind returns the claim set's token kind.
func (c *Claims) Kind() Kind {
	return Kind(c.Action)
}

// AccountID returns the subject claim.
func (c *Claims) AccountID() string {
	return c.Subject
}

// Config carries signing material and per-kind TTLs.
type Config struct {
	Issuer          string
	AccessTTL       time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	SigningMethod   SigningMethod
	SigningKey      []byte
	VerifyKey       []byte
	Leeway          time.Duration
}

// Issuer mints and validates tokens. Safe for concurrent use.
type Issuer struct {
	config Config
	now    func() time.Time
}

// NewIssuer validates cfg and returns an issuer. HS256 keys must be at
// least 32 bytes; Ed25519 keys may be raw or PEM encoded.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessTTL <= 0 || cfg.VerificationTTL <= 0 || cfg.ResetTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.SigningKey) < 32 {
			return nil, errors.New("hs256 requires a signing key of at least 32 bytes")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.SigningKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.VerifyKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Issuer{config: cfg, now: time.Now}, nil
}

// IssueAccess mints an access token binding the account, its email, and
// its current security stamp.
func (i *Issuer) IssueAccess(accountID, email, stamp string) (string, time.Time, error) {
	return i.issue(KindAccess, accountID, email, stamp, i.config.AccessTTL)
}

// IssueVerification mints an email verification token.
func (i *Issuer) IssueVerification(accountID, email string) (string, time.Time, error) {
	return i.issue(KindVerifyEmail, accountID, email, "", i.config.VerificationTTL)
}

// IssueReset mints a password reset token bound to the account's current
// security stamp so it dies when the stamp rotates.
func (i *Issuer) IssueReset(accountID, stamp string) (string, time.Time, error) {
	return i.issue(KindResetPassword, accountID, "", stamp, i.config.ResetTTL)
}

func (i *Issuer) issue(kind Kind, accountID, email, stamp string, ttl time.Duration) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, errors.New("accountID must not be empty")
	}

	now := i.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Action: string(kind),
		Email:  email,
		Stamp:  stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    i.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(i.method(), claims)

	key, err := i.signKey()
	if err != nil {
		return "", time.Time{}, err
	}

	signed, err := tok.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Parse validates signature, expiry, issuer, and kind. Every rejection
// except expiry collapses to [ErrInvalid].
func (i *Issuer) Parse(tokenStr string, expect Kind) (*Claims, error) {
	claims, err := i.parse(tokenStr, false)
	if err != nil {
		return nil, err
	}

	if claims.Kind() != expect || claims.Subject == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}

// ParseAny verifies the signature but tolerates expiry and kind. Logout
// uses it to read the claims of a token that may already be past expiry.
func (i *Issuer) ParseAny(tokenStr string) (*Claims, error) {
	return i.parse(tokenStr, true)
}

// ExpiresAt returns the expiry of a signed token without enforcing it.
func (i *Issuer) ExpiresAt(tokenStr string) (time.Time, error) {
	claims, err := i.parse(tokenStr, true)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

func (i *Issuer) parse(tokenStr string, skipValidation bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method().Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}
	if i.config.Issuer != "" && !skipValidation {
		options = append(options, jwt.WithIssuer(i.config.Issuer))
	}
	if skipValidation {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != i.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return i.verifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || (!skipValidation && !tok.Valid) {
		return nil, ErrInvalid
	}

	return claims, nil
}

func (i *Issuer) method() jwt.SigningMethod {
	switch i.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (i *Issuer) signKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(i.config.SigningKey)
	default:
		return i.config.SigningKey, nil
	}
}

func (i *Issuer) verifyKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(i.config.VerifyKey)
	default:
		return i.config.SigningKey, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
