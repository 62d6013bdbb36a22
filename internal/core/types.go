package core

// VehicleIdentity is the reconciled year/make/model/trim of a vehicle
type VehicleIdentity struct {
	Year  *int    `json:"year"`
	Make  *string `json:"make"`
	Model *string `json:"model"`
	Trim  *string `json:"trim"`
}

// Complete reports whether year, make and model are all known.
func (v VehicleIdentity) Complete() bool {
	return v.Year != nil && v.Make != nil && v.Model != nil
}

// EngineSpec summarizes the engine of a decoded vehicle
type EngineSpec struct {
	DisplacementLiters *float64 `json:"displacement_l"`
	Cylinders          *int     `json:"cylinders"`
	Horsepower         *int     `json:"hp"`
	FuelType           *string  `json:"fuel_type"`
}

// EconomySource identifies where fuel economy figures came from
type EconomySource string

const (
	EconomySourceCarQuery EconomySource = "carquery"
	EconomySourceNone     EconomySource = "none"
)

// EconomyProfile holds fuel consumption in both metric and imperial units.
// The MPG fields are only ever set through NewEconomyProfile.
type EconomyProfile struct {
	CityL100km    *float64      `json:"city_l_per_100km"`
	HighwayL100km *float64      `json:"highway_l_per_100km"`
	MixedL100km   *float64      `json:"mixed_l_per_100km"`
	CityMpg       *float64      `json:"city_mpg"`
	HighwayMpg    *float64      `json:"highway_mpg"`
	MixedMpg      *float64      `json:"mixed_mpg"`
	Source        EconomySource `json:"source"`
	TrimUsed      *string       `json:"trim_used,omitempty"`
}

// NewEconomyProfile builds an EconomyProfile from L/100km figures, deriving MPG.
func NewEconomyProfile(source EconomySource, city, highway, mixed *float64, trimUsed *string) EconomyProfile {
	return EconomyProfile{
		CityL100km:    city,
		HighwayL100km: highway,
		MixedL100km:   mixed,
		CityMpg:       LitersPer100kmToMpg(city),
		HighwayMpg:    LitersPer100kmToMpg(highway),
		MixedMpg:      LitersPer100kmToMpg(mixed),
		Source:        source,
		TrimUsed:      trimUsed,
	}
}

// EmptyEconomy is the neutral economy profile used when no source answered.
func EmptyEconomy() EconomyProfile {
	return EconomyProfile{Source: EconomySourceNone}
}

// SafetySource identifies where a safety rating came from
type SafetySource string

const (
	SafetySourceNHTSA SafetySource = "nhtsa"
	SafetySourceNone  SafetySource = "none"
)

// SafetyRating is an overall crash-test star rating in [1,5]
type SafetyRating struct {
	Stars  *int         `json:"stars"`
	Source SafetySource `json:"source"`
}

// CarProfile is the canonical reconciled view of a single VIN
type CarProfile struct {
	VIN string `json:"vin"`
	VehicleIdentity
	BodyType *string        `json:"type"`
	Origin   *string        `json:"origin"`
	Engine   EngineSpec     `json:"engine"`
	Economy  EconomyProfile `json:"economy"`
	Safety   SafetyRating   `json:"safety"`
}

// Listing is one canonical for-sale vehicle record
type Listing struct {
	ID            string   `json:"id"`
	VIN           *string  `json:"vin,omitempty"`
	Year          int      `json:"year"`
	Make          string   `json:"make"`
	Model         string   `json:"model"`
	Trim          *string  `json:"trim,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	MileageMiles  *float64 `json:"mileage,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	FuelType      *string  `json:"fuel_type,omitempty"`
	BodyStyle     *string  `json:"body_style,omitempty"`
	CityMpg       *float64 `json:"city_mpg,omitempty"`
	HighwayMpg    *float64 `json:"highway_mpg,omitempty"`
	SafetyRating  *float64 `json:"safety_rating,omitempty"`
	SourceURL     *string  `json:"listing_url,omitempty"`
	Provider      string   `json:"provider"`
}

// SearchCriteria is a loosely specified shopping intent. Nil means no constraint.
type SearchCriteria struct {
	Budget           *float64 `json:"budget,omitempty"`
	MaxDistanceMiles *float64 `json:"max_distance,omitempty"`
	BodyStyle        *string  `json:"body_style,omitempty"`
	FuelType         *string  `json:"fuel_type,omitempty"`
	Make             *string  `json:"make,omitempty"`

	// Model and MinYear narrow the listing source query only; they are not scored.
	Model   *string `json:"model,omitempty"`
	MinYear *int    `json:"min_year,omitempty"`
}

// ListingQuery is what the listing source collaborator is asked for
type ListingQuery struct {
	Budget    *float64
	MinYear   *int
	Make      *string
	Model     *string
	BodyStyle *string
	Limit     int
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
