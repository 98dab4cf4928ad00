package user

import (
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/persistence"
	sport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/security"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/usecase"
)

// Defaults for Config
const (
	DefaultStartingBalance  int64 = 10000
	DefaultTransactionLimit       = 50
)

// Config tunes the user use case
type Config struct {
	StartingBalance  int64 // cents granted when a nickname is first used
	TransactionLimit int   // entries returned by ListTransactions
}

// UserUseCase implements the user business logic
type UserUseCase struct {
	uow          persistence.UnitOfWork
	ledger       usecase.WalletLedger
	verifier     sport.CredentialVerifier
	tokens       sport.TokenIssuer // nil disables session tokens
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.UserUseCase = (*UserUseCase)(nil)

// NewUserUseCase creates a new user use case instance
func NewUserUseCase(
	uow persistence.UnitOfWork,
	ledger usecase.WalletLedger,
	verifier sport.CredentialVerifier,
	tokens sport.TokenIssuer,
	config Config,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UserUseCase {
	if config.StartingBalance < 0 {
		config.StartingBalance = 0
	}
	if config.TransactionLimit <= 0 {
		config.TransactionLimit = DefaultTransactionLimit
	}
	return &UserUseCase{
		uow:          uow,
		ledger:       ledger,
		verifier:     verifier,
		tokens:       tokens,
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}
