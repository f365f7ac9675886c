package locations

import (
	"time"

	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/internal/lifecycle"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// LocationDTO exposes one location record in API responses, together with its
// derived lifecycle classification.
type LocationDTO struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	StoreCode string    `json:"store_code"`

	BusinessName         string   `json:"business_name"`
	PrimaryCategory      string   `json:"primary_category"`
	AdditionalCategories []string `json:"additional_categories,omitempty"`

	AddressLine1  string  `json:"address_line1"`
	AddressLine2  *string `json:"address_line2,omitempty"`
	AddressLine3  *string `json:"address_line3,omitempty"`
	AddressLine4  *string `json:"address_line4,omitempty"`
	AddressLine5  *string `json:"address_line5,omitempty"`
	City          *string `json:"city,omitempty"`
	StateProvince *string `json:"state_province,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	District      *string `json:"district,omitempty"`
	CountryCode   string  `json:"country_code"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Phone          *string `json:"phone,omitempty"`
	SecondaryPhone *string `json:"secondary_phone,omitempty"`
	Website        *string `json:"website,omitempty"`

	OpeningDate *time.Time `json:"opening_date,omitempty"`

	MondayHours    string `json:"monday_hours"`
	TuesdayHours   string `json:"tuesday_hours"`
	WednesdayHours string `json:"wednesday_hours"`
	ThursdayHours  string `json:"thursday_hours"`
	FridayHours    string `json:"friday_hours"`
	SaturdayHours  string `json:"saturday_hours"`
	SundayHours    string `json:"sunday_hours"`
	SpecialHours   string `json:"special_hours"`

	MenuURL        *string `json:"menu_url,omitempty"`
	OrderAheadURL  *string `json:"order_ahead_url,omitempty"`
	ReservationURL *string `json:"reservation_url,omitempty"`
	BookingURL     *string `json:"booking_url,omitempty"`

	FacebookURL  *string `json:"facebook_url,omitempty"`
	InstagramURL *string `json:"instagram_url,omitempty"`
	XURL         *string `json:"x_url,omitempty"`
	YoutubeURL   *string `json:"youtube_url,omitempty"`
	PinterestURL *string `json:"pinterest_url,omitempty"`

	Description       string               `json:"description"`
	TemporarilyClosed bool                 `json:"temporarily_closed"`
	ExternalPending   bool                 `json:"external_pending"`
	Status            enums.LocationStatus `json:"status"`
	ServiceIDs        []string             `json:"service_ids,omitempty"`

	Lifecycle lifecycle.Classification `json:"lifecycle"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps a persisted record into a DTO, deriving its lifecycle bucket.
func FromModel(m *models.Location, now time.Time, newWindow time.Duration) *LocationDTO {
	if m == nil {
		return nil
	}

	return &LocationDTO{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		StoreCode:            m.StoreCode,
		BusinessName:         m.BusinessName,
		PrimaryCategory:      m.PrimaryCategory,
		AdditionalCategories: m.AdditionalCategories,
		AddressLine1:         m.AddressLine1,
		AddressLine2:         m.AddressLine2,
		AddressLine3:         m.AddressLine3,
		AddressLine4:         m.AddressLine4,
		AddressLine5:         m.AddressLine5,
		City:                 m.City,
		StateProvince:        m.StateProvince,
		PostalCode:           m.PostalCode,
		District:             m.District,
		CountryCode:          m.CountryCode,
		Latitude:             m.Latitude,
		Longitude:            m.Longitude,
		Phone:                m.Phone,
		SecondaryPhone:       m.SecondaryPhone,
		Website:              m.Website,
		OpeningDate:          m.OpeningDate,
		MondayHours:          m.MondayHours,
		TuesdayHours:         m.TuesdayHours,
		WednesdayHours:       m.WednesdayHours,
		ThursdayHours:        m.ThursdayHours,
		FridayHours:          m.FridayHours,
		SaturdayHours:        m.SaturdayHours,
		SundayHours:          m.SundayHours,
		SpecialHours:         m.SpecialHours,
		MenuURL:              m.MenuURL,
		OrderAheadURL:        m.OrderAheadURL,
		ReservationURL:       m.ReservationURL,
		BookingURL:           m.BookingURL,
		FacebookURL:          m.FacebookURL,
		InstagramURL:         m.InstagramURL,
		XURL:                 m.XURL,
		YoutubeURL:           m.YoutubeURL,
		PinterestURL:         m.PinterestURL,
		Description:          m.Description,
		TemporarilyClosed:    m.TemporarilyClosed,
		ExternalPending:      m.ExternalPending,
		Status:               m.Status,
		ServiceIDs:           m.ServiceIDs,
		Lifecycle:            lifecycle.ClassifyWithWindow(m, now, newWindow),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// CreateLocationInput holds creation-time data for a new record. Only the
// store code must be present at creation; everything else may arrive later,
// with validation reporting what is still missing.
type CreateLocationInput struct {
	StoreCode string `json:"store_code" validate:"required"`

	BusinessName         string   `json:"business_name"`
	PrimaryCategory      string   `json:"primary_category"`
	AdditionalCategories []string `json:"additional_categories"`

	AddressLine1  string  `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	AddressLine3  *string `json:"address_line3"`
	AddressLine4  *string `json:"address_line4"`
	AddressLine5  *string `json:"address_line5"`
	City          *string `json:"city"`
	StateProvince *string `json:"state_province"`
	PostalCode    *string `json:"postal_code"`
	District      *string `json:"district"`
	CountryCode   string  `json:"country_code"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Phone          *string `json:"phone"`
	SecondaryPhone *string `json:"secondary_phone"`
	Website        *string `json:"website"`

	OpeningDate *time.Time `json:"opening_date"`

	MondayHours    string `json:"monday_hours"`
	TuesdayHours   string `json:"tuesday_hours"`
	WednesdayHours string `json:"wednesday_hours"`
	ThursdayHours  string `json:"thursday_hours"`
	FridayHours    string `json:"friday_hours"`
	SaturdayHours  string `json:"saturday_hours"`
	SundayHours    string `json:"sunday_hours"`
	SpecialHours   string `json:"special_hours"`

	MenuURL        *string `json:"menu_url"`
	OrderAheadURL  *string `json:"order_ahead_url"`
	ReservationURL *string `json:"reservation_url"`
	BookingURL     *string `json:"booking_url"`

	FacebookURL  *string `json:"facebook_url"`
	InstagramURL *string `json:"instagram_url"`
	XURL         *string `json:"x_url"`
	YoutubeURL   *string `json:"youtube_url"`
	PinterestURL *string `json:"pinterest_url"`

	Description       string   `json:"description"`
	TemporarilyClosed bool     `json:"temporarily_closed"`
	ServiceIDs        []string `json:"service_ids"`
}

// ToModel prepares the GORM model from creation input.
func (c CreateLocationInput) ToModel(tenantID uuid.UUID) *models.Location {
	return &models.Location{
		TenantID:             tenantID,
		StoreCode:            c.StoreCode,
		BusinessName:         c.BusinessName,
		PrimaryCategory:      c.PrimaryCategory,
		AdditionalCategories: c.AdditionalCategories,
		AddressLine1:         c.AddressLine1,
		AddressLine2:         c.AddressLine2,
		AddressLine3:         c.AddressLine3,
		AddressLine4:         c.AddressLine4,
		AddressLine5:         c.AddressLine5,
		City:                 c.City,
		StateProvince:        c.StateProvince,
		PostalCode:           c.PostalCode,
		District:             c.District,
		CountryCode:          c.CountryCode,
		Latitude:             c.Latitude,
		Longitude:            c.Longitude,
		Phone:                c.Phone,
		SecondaryPhone:       c.SecondaryPhone,
		Website:              c.Website,
		OpeningDate:          c.OpeningDate,
		MondayHours:          c.MondayHours,
		TuesdayHours:         c.TuesdayHours,
		WednesdayHours:       c.WednesdayHours,
		ThursdayHours:        c.ThursdayHours,
		FridayHours:          c.FridayHours,
		SaturdayHours:        c.SaturdayHours,
		SundayHours:          c.SundayHours,
		SpecialHours:         c.SpecialHours,
		MenuURL:              c.MenuURL,
		OrderAheadURL:        c.OrderAheadURL,
		ReservationURL:       c.ReservationURL,
		BookingURL:           c.BookingURL,
		FacebookURL:          c.FacebookURL,
		InstagramURL:         c.InstagramURL,
		XURL:                 c.XURL,
		YoutubeURL:           c.YoutubeURL,
		PinterestURL:         c.PinterestURL,
		Description:          c.Description,
		TemporarilyClosed:    c.TemporarilyClosed,
		ServiceIDs:           c.ServiceIDs,
		Status:               enums.LocationStatusPending,
	}
}

// UpdateLocationInput captures a partial update. Nil pointers leave the field
// untouched; pointers to zero values clear it.
type UpdateLocationInput struct {
	StoreCode *string `json:"store_code"`

	BusinessName         *string   `json:"business_name"`
	PrimaryCategory      *string   `json:"primary_category"`
	AdditionalCategories *[]string `json:"additional_categories"`

	AddressLine1  *string `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	AddressLine3  *string `json:"address_line3"`
	AddressLine4  *string `json:"address_line4"`
	AddressLine5  *string `json:"address_line5"`
	City          *string `json:"city"`
	StateProvince *string `json:"state_province"`
	PostalCode    *string `json:"postal_code"`
	District      *string `json:"district"`
	CountryCode   *string `json:"country_code"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Phone          *string `json:"phone"`
	SecondaryPhone *string `json:"secondary_phone"`
	Website        *string `json:"website"`

	OpeningDate *time.Time `json:"opening_date"`

	MondayHours    *string `json:"monday_hours"`
	TuesdayHours   *string `json:"tuesday_hours"`
	WednesdayHours *string `json:"wednesday_hours"`
	ThursdayHours  *string `json:"thursday_hours"`
	FridayHours    *string `json:"friday_hours"`
	SaturdayHours  *string `json:"saturday_hours"`
	SundayHours    *string `json:"sunday_hours"`
	SpecialHours   *string `json:"special_hours"`

	MenuURL        *string `json:"menu_url"`
	OrderAheadURL  *string `json:"order_ahead_url"`
	ReservationURL *string `json:"reservation_url"`
	BookingURL     *string `json:"booking_url"`

	FacebookURL  *string `json:"facebook_url"`
	InstagramURL *string `json:"instagram_url"`
	XURL         *string `json:"x_url"`
	YoutubeURL   *string `json:"youtube_url"`
	PinterestURL *string `json:"pinterest_url"`

	Description       *string               `json:"description"`
	TemporarilyClosed *bool                 `json:"temporarily_closed"`
	ExternalPending   *bool                 `json:"external_pending"`
	Status            *enums.LocationStatus `json:"status"`
	ServiceIDs        *[]string             `json:"service_ids"`
}
