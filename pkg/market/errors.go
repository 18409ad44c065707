package market

import "errors"

// Validation rejections.
var (
	ErrInvalidEmail      = errors.New("invalid email: must contain '@'")
	ErrInvalidPhone      = errors.New("invalid phone: must be digits only")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInvalidItem       = errors.New("item quantity and price must not be negative")
	ErrInvalidQuantity   = errors.New("requested quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrDuplicateItem     = errors.New("item id already exists in inventory")
	ErrDuplicateID       = errors.New("id already exists")
	ErrInvalidID         = errors.New("id must be positive")
)

// Not-found errors.
var (
	ErrBuyerNotFound  = errors.New("buyer not found")
	ErrSellerNotFound = errors.New("seller not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrOrderNotFound  = errors.New("order not found")
)

// Policy rejections.
var (
	ErrNoAccount            = errors.New("no bank account linked")
	ErrAccountExists        = errors.New("bank account already exists")
	ErrAccountDormant       = errors.New("account is dormant")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrAlreadySeller        = errors.New("buyer is already a seller")
	ErrSellerAccountMissing = errors.New("seller has no bank account to receive payment")
	ErrInvalidTransition    = errors.New("invalid transaction status transition")
)
