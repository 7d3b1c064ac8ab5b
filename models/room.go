package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Room types accepted by the API.
const (
	RoomTypeIndividual = "individual"
	RoomTypeDouble     = "double"
	RoomTypeSuite      = "suite"
)

// Nightly rate bounds for a room.
var (
	MinPricePerNight = decimal.NewFromInt(50)
	MaxPricePerNight = decimal.NewFromInt(1000)
)

func init() {
	// prices and totals are plain JSON numbers for the frontend
	decimal.MarshalJSONWithoutQuotes = true
}

type Room struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Number        int             `gorm:"column:number;uniqueIndex;not null" json:"number"`
	Type          string          `gorm:"column:type;size:20;not null" json:"type"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	PricePerNight decimal.Decimal `gorm:"column:price_per_night;type:decimal(10,2);not null" json:"price_per_night"`

	// Availability is false while exactly one active reservation holds the room.
	Availability bool `gorm:"column:availability;not null" json:"availability"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeRoomType lower-cases t and reports whether it is a known room type.
func NormalizeRoomType(t string) (string, bool) {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case RoomTypeIndividual, RoomTypeDouble, RoomTypeSuite:
		return t, true
	}
	return t, false
}

// PriceInRange reports whether p is within [MinPricePerNight, MaxPricePerNight].
func PriceInRange(p decimal.Decimal) bool {
	return p.GreaterThanOrEqual(MinPricePerNight) && p.LessThanOrEqual(MaxPricePerNight)
}
