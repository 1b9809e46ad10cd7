package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Region string

const (
	RegionEurope        Region = "Europe"
	RegionAsia          Region = "Asia"
	RegionAfrica        Region = "Africa"
	RegionNorthAmerica  Region = "North America"
	RegionSouthAmerica  Region = "South America"
	RegionAustralia     Region = "Australia"
	RegionAntarctica    Region = "Antarctica"
	RegionUncategorized Region = "Uncategorized"
)

// Regions lists every region a post may be tagged with.
var Regions = []Region{
	RegionEurope,
	RegionAsia,
	RegionAfrica,
	RegionNorthAmerica,
	RegionSouthAmerica,
	RegionAustralia,
	RegionAntarctica,
	RegionUncategorized,
}

func (r Region) Valid() bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

type Location struct {
	Country string `json:"country" bson:"country"`
	City    string `json:"city" bson:"city"`
	Region  Region `json:"region" bson:"region"`
}

type Post struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title      string             `json:"title" bson:"title"`
	Summary    string             `json:"summary" bson:"summary"`
	ImageURL   string             `json:"imageUrl" bson:"image_url"`
	Categories []string           `json:"categories" bson:"categories"`
	Location   Location           `json:"location" bson:"location"`
	Author     primitive.ObjectID `json:"author" bson:"author"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updated_at"`

	// AuthorUsername is resolved on read and never stored.
	AuthorUsername string `json:"authorUsername,omitempty" bson:"-"`
}

// PostFilter narrows a listing. Empty fields impose no constraint; set fields
// are exact matches ANDed together.
type PostFilter struct {
	Region   Region
	Country  string
	Category string
	Author   primitive.ObjectID
}

// PostUpdate holds the fields of a partial post update. A nil field is left
// untouched.
type PostUpdate struct {
	Title      *string
	Summary    *string
	ImageURL   *string
	Categories *[]string
	Country    *string
	City       *string
	Region     *Region
}

// Apply copies the set fields of u onto p.
func (u PostUpdate) Apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Summary != nil {
		p.Summary = *u.Summary
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Categories != nil {
		p.Categories = *u.Categories
	}
	if u.Country != nil {
		p.Location.Country = *u.Country
	}
	if u.City != nil {
		p.Location.City = *u.City
	}
	if u.Region != nil {
		p.Location.Region = *u.Region
	}
}

type CountryCount struct {
	Country string `json:"country" bson:"_id"`
	Count   int    `json:"count" bson:"count"`
}

type RegionCount struct {
	Region Region `json:"region" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

// MapData is the aggregation summary behind the world map view.
type MapData struct {
	CountryCounts []CountryCount `json:"countryCounts"`
	RegionCounts  []RegionCount  `json:"regionCounts"`
}
