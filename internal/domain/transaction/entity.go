package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the merchant category a purchase is booked under
type Category string

const (
	CategoryGroceries      Category = "Groceries"
	CategoryShopping       Category = "Shopping"
	CategoryRestaurants    Category = "Restaurants"
	CategoryTravel         Category = "Travel"
	CategoryEntertainment  Category = "Entertainment"
	CategoryUtilities      Category = "Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryGas            Category = "Gas"
	CategoryElectronics    Category = "Electronics"
	CategoryJewelry        Category = "Jewelry"
	CategoryCryptocurrency Category = "Cryptocurrency"
	CategoryGaming         Category = "Gaming"
	CategoryOther          Category = "Other"
)

// Categories lists every accepted category
var Categories = []Category{
	CategoryGroceries,
	CategoryShopping,
	CategoryRestaurants,
	CategoryTravel,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryGas,
	CategoryElectronics,
	CategoryJewelry,
	CategoryCryptocurrency,
	CategoryGaming,
	CategoryOther,
}

// highRiskCategories are categories commonly used to cash out stolen cards
var highRiskCategories = map[Category]bool{
	CategoryCryptocurrency: true,
	CategoryJewelry:        true,
	CategoryElectronics:    true,
	CategoryGaming:         true,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsHighRisk reports whether c belongs to the high-risk set
func (c Category) IsHighRisk() bool {
	return highRiskCategories[c]
}

// UnknownLocation is what the location resolver reports when it cannot place a transaction
const UnknownLocation = "Unknown"

// Transaction is a single card payment submitted for authorization.
// The scoring engine treats it as immutable; only the caller writes the
// verdict fields after a decision has been made.
type Transaction struct {
	// Identity
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Payment details
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	TimeOfDay int             `json:"time_of_day"` // 0-23
	DayOfWeek int             `json:"day_of_week"` // 0-6, Sunday = 0
	Merchant  string          `json:"merchant"`
	Category  Category        `json:"category"`

	// Opaque identifiers from the card network and fingerprinting service
	CardID   string `json:"card_id"`
	DeviceID string `json:"device_id"`
	Location string `json:"location"`

	// Same-user transactions in the trailing 24h, supplied by the caller
	Velocity int `json:"velocity"`

	// Verdict, written by the caller
	FraudProbability *decimal.Decimal `json:"fraud_probability,omitempty"`
	IsFraud          bool             `json:"is_fraud"`
	RiskLevel        string           `json:"risk_level,omitempty"`
	FraudReasons     []string         `json:"fraud_reasons,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewTransaction creates a transaction and derives the calendar fields from its timestamp
func NewTransaction(userID uuid.UUID, amount decimal.Decimal, timestamp time.Time, merchant string, category Category) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Timestamp: timestamp,
		TimeOfDay: timestamp.Hour(),
		DayOfWeek: int(timestamp.Weekday()),
		Merchant:  merchant,
		Category:  category,
		CreatedAt: time.Now(),
	}
}

// IsUnresolvedLocation reports whether location is empty or the resolver's "Unknown" marker
func IsUnresolvedLocation(location string) bool {
	location = strings.TrimSpace(location)
	return location == "" || strings.EqualFold(location, UnknownLocation)
}

// HasUnresolvedLocation reports whether the location service could not place the transaction
func (t *Transaction) HasUnresolvedLocation() bool {
	return IsUnresolvedLocation(t.Location)
}

// ApplyVerdict records the outcome of fraud scoring on the transaction
func (t *Transaction) ApplyVerdict(isFraud bool, probability decimal.Decimal, riskLevel string, reasons []string) {
	t.IsFraud = isFraud
	t.FraudProbability = &probability
	t.RiskLevel = riskLevel
	t.FraudReasons = reasons
}

// Validate performs basic validation on the transaction
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}
