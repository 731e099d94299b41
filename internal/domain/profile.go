// Package domain defines the entities shared across the budget pipeline.
package domain

// TransportMode selects how the household commutes.
type TransportMode string

const (
	TransportCar    TransportMode = "car"
	TransportPublic TransportMode = "public"
)

// CarType identifies the fuel-efficiency class of the household vehicle.
type CarType string

const (
	CarSedan  CarType = "sedan"
	CarSUV    CarType = "suv"
	CarTruck  CarType = "truck"
	CarHybrid CarType = "hybrid"
	CarEV     CarType = "ev"
)

// Pets records which animals live in the household.
type Pets struct {
	Dog bool `json:"dog"`
	Cat bool `json:"cat"`
}

// Lifestyle holds discretionary monthly spend.
type Lifestyle struct {
	Gym       float64 `json:"gym"`
	Streaming float64 `json:"streaming"`
	Music     float64 `json:"music"`
	Other     float64 `json:"other"`
}

// UserProfile is the durable description of one household. The JSON layout
// mirrors the persisted budget blob; historical records may omit any field,
// so zero values must be tolerated everywhere except where ValidateProfile
// enforces otherwise.
type UserProfile struct {
	CountryCode string  `json:"countryCode"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
	Currency    string  `json:"currency"`
	Unit        string  `json:"unit"`

	Income float64 `json:"income"`
	Rent   float64 `json:"rent"`

	Adults int  `json:"adults"`
	Kids   int  `json:"kids"`
	Pets   Pets `json:"pets"`

	TransportMode   TransportMode `json:"transportMode"`
	CarType         CarType       `json:"carType,omitempty"`
	CommuteDistance float64       `json:"commuteDistance"`

	Internet     bool    `json:"internet"`
	InternetCost float64 `json:"internetCost"`
	MobileCost   float64 `json:"mobileCost"`
	MobileCount  int     `json:"mobileCount"`
	Loans        float64 `json:"loans"`

	Lifestyle    Lifestyle `json:"lifestyle"`
	GroceryItems []string  `json:"groceryItems,omitempty"`

	SavingsTarget float64 `json:"savingsTarget"`
	SavingsMonths int     `json:"savingsMonths"`
}

// HasCoordinates reports whether the profile carries a usable geolocation.
func (p *UserProfile) HasCoordinates() bool {
	return p.Lat != 0 || p.Lon != 0
}

// BudgetRecord is the persisted blob for one user: the profile plus the
// estimates attached by the last computation. Estimates may be nil for
// records saved before the first computation ran.
type BudgetRecord struct {
	Profile   UserProfile      `json:"data"`
	Estimates *BudgetBreakdown `json:"estimates,omitempty"`
}

// StoredUser pairs a persisted budget record with its owner.
type StoredUser struct {
	UserID         int64
	Email          string
	TelegramChatID int64
	Record         BudgetRecord
}
