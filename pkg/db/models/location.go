package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// Location is one directory record owned by a tenant.
//
// The seven weekday columns and SpecialHours hold text in the opening-hours
// mini-language, normalized to canonical form on write.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_locations_tenant_store_code" json:"tenant_id"`
	StoreCode string    `gorm:"column:store_code;not null;uniqueIndex:idx_locations_tenant_store_code" json:"store_code"`

	BusinessName         string         `gorm:"column:business_name;not null" json:"business_name"`
	PrimaryCategory      string         `gorm:"column:primary_category;not null" json:"primary_category"`
	AdditionalCategories pq.StringArray `gorm:"column:additional_categories;type:text[]" json:"additional_categories"`

	AddressLine1  string  `gorm:"column:address_line1;not null" json:"address_line1"`
	AddressLine2  *string `gorm:"column:address_line2" json:"address_line2,omitempty"`
	AddressLine3  *string `gorm:"column:address_line3" json:"address_line3,omitempty"`
	AddressLine4  *string `gorm:"column:address_line4" json:"address_line4,omitempty"`
	AddressLine5  *string `gorm:"column:address_line5" json:"address_line5,omitempty"`
	City          *string `gorm:"column:city" json:"city,omitempty"`
	StateProvince *string `gorm:"column:state_province" json:"state_province,omitempty"`
	PostalCode    *string `gorm:"column:postal_code" json:"postal_code,omitempty"`
	District      *string `gorm:"column:district" json:"district,omitempty"`
	CountryCode   string  `gorm:"column:country_code;not null" json:"country_code"`

	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	Phone          *string `gorm:"column:phone" json:"phone,omitempty"`
	SecondaryPhone *string `gorm:"column:secondary_phone" json:"secondary_phone,omitempty"`
	Website        *string `gorm:"column:website" json:"website,omitempty"`

	OpeningDate *time.Time `gorm:"column:opening_date;type:date" json:"opening_date,omitempty"`

	MondayHours    string `gorm:"column:monday_hours;not null;default:''" json:"monday_hours"`
	TuesdayHours   string `gorm:"column:tuesday_hours;not null;default:''" json:"tuesday_hours"`
	WednesdayHours string `gorm:"column:wednesday_hours;not null;default:''" json:"wednesday_hours"`
	ThursdayHours  string `gorm:"column:thursday_hours;not null;default:''" json:"thursday_hours"`
	FridayHours    string `gorm:"column:friday_hours;not null;default:''" json:"friday_hours"`
	SaturdayHours  string `gorm:"column:saturday_hours;not null;default:''" json:"saturday_hours"`
	SundayHours    string `gorm:"column:sunday_hours;not null;default:''" json:"sunday_hours"`
	SpecialHours   string `gorm:"column:special_hours;not null;default:''" json:"special_hours"`

	MenuURL        *string `gorm:"column:menu_url" json:"menu_url,omitempty"`
	OrderAheadURL  *string `gorm:"column:order_ahead_url" json:"order_ahead_url,omitempty"`
	ReservationURL *string `gorm:"column:reservation_url" json:"reservation_url,omitempty"`
	BookingURL     *string `gorm:"column:booking_url" json:"booking_url,omitempty"`

	FacebookURL  *string `gorm:"column:facebook_url" json:"facebook_url,omitempty"`
	InstagramURL *string `gorm:"column:instagram_url" json:"instagram_url,omitempty"`
	XURL         *string `gorm:"column:x_url" json:"x_url,omitempty"`
	YoutubeURL   *string `gorm:"column:youtube_url" json:"youtube_url,omitempty"`
	PinterestURL *string `gorm:"column:pinterest_url" json:"pinterest_url,omitempty"`

	Description       string               `gorm:"column:description;not null;default:''" json:"description"`
	TemporarilyClosed bool                 `gorm:"column:temporarily_closed;not null;default:false" json:"temporarily_closed"`
	ExternalPending   bool                 `gorm:"column:external_pending;not null;default:false" json:"external_pending"`
	Status            enums.LocationStatus `gorm:"column:status;type:location_status;not null;default:'pending'" json:"status"`
	ServiceIDs        pq.StringArray       `gorm:"column:service_ids;type:text[]" json:"service_ids"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name.
func (Location) TableName() string {
	return "locations"
}
