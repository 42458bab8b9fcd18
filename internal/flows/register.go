package flows

import (
	"context"
	"strings"
)

// RegisterFailureKind classifies registration failures for root-level
// mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureValidation
	RegisterFailureDuplicate
	RegisterFailureWeakPassword
	RegisterFailureHash
	RegisterFailureStore
	RegisterFailureIssueToken
)

// RegisterRequest is the caller-supplied registration input.
type RegisterRequest struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// RegisterResult carries the created account or failure metadata.
type RegisterResult struct {
	Failure           RegisterFailureKind
	Err               error
	Account           *AccountRecord
	VerificationToken string
}

// RegisterDeps captures registration flow dependencies.
type RegisterDeps struct {
	EmailExists       func(ctx context.Context, email string) (bool, error)
	HashPassword      func(plaintext string) (string, error)
	IsWeakPassword    func(err error) bool
	CreateAccount     func(ctx context.Context, req RegisterRequest, passwordHash string) (*AccountRecord, error)
	IssueVerification func(accountID, email string) (string, error)
	SendVerification  func(accountID, email, token string)
}

// RunRegister creates a pending account and hands its verification token
// to the notifier. The account cannot log in until verified.
func RunRegister(ctx context.Context, req RegisterRequest, deps RegisterDeps) RegisterResult {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		return RegisterResult{Failure: RegisterFailureValidation}
	}

	exists, err := deps.EmailExists(ctx, req.Email)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureStore, Err: err}
	}
	if exists {
		return RegisterResult{Failure: RegisterFailureDuplicate}
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		if deps.IsWeakPassword != nil && deps.IsWeakPassword(err) {
			return RegisterResult{Failure: RegisterFailureWeakPassword, Err: err}
		}
		return RegisterResult{Failure: RegisterFailureHash, Err: err}
	}

	account, err := deps.CreateAccount(ctx, req, hash)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureStore, Err: err}
	}

	verification, err := deps.IssueVerification(account.ID, account.Email)
	if err != nil {
		return RegisterResult{Failure: RegisterFailureIssueToken, Err: err, Account: account}
	}

	if deps.SendVerification != nil {
		deps.SendVerification(account.ID, account.Email, verification)
	}

	return RegisterResult{Account: account, VerificationToken: verification}
}
