package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleFarmer = "farmer"
	RoleVet    = "vet"
)

// LivestockCount tracks herd size and vaccination coverage for one species.
// Vaccinated must never exceed Total; that is checked before any write.
type LivestockCount struct {
	Total      int `bson:"total" json:"total"`
	Vaccinated int `bson:"vaccinated" json:"vaccinated"`
}

// Livestock holds per-species counts for the four species the app tracks.
type Livestock struct {
	Pigs    LivestockCount `bson:"pigs" json:"pigs"`
	Poultry LivestockCount `bson:"poultry" json:"poultry"`
	Cattle  LivestockCount `bson:"cattle" json:"cattle"`
	Goats   LivestockCount `bson:"goats" json:"goats"`
}

// FarmData is the nested farm state owned by a farmer account.
type FarmData struct {
	TotalAcres float64   `bson:"totalAcres" json:"totalAcres"`
	Livestock  Livestock `bson:"livestock" json:"livestock"`
}

// Documents holds object-storage paths for a vet's uploaded proofs.
type Documents struct {
	License string `bson:"license,omitempty" json:"license,omitempty"`
	Degree  string `bson:"degree,omitempty" json:"degree,omitempty"`
	IDProof string `bson:"idProof,omitempty" json:"idProof,omitempty"`
}

// User is the single account record for both farmers and vets. Password
// carries the bcrypt hash and is excluded from JSON marshalling.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	Address       string             `bson:"address" json:"address"`
	AadhaarNumber string             `bson:"aadhaarNumber" json:"aadhaarNumber"`
	Village       string             `bson:"village" json:"village"`
	Password      string             `bson:"password" json:"-"`
	Role          string             `bson:"role" json:"role"`
	ProfileImage  string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`

	// Farmer fields.
	FarmSize      string   `bson:"farmSize,omitempty" json:"farmSize,omitempty"`
	LivestockType string   `bson:"livestockType,omitempty" json:"livestockType,omitempty"`
	FarmData      FarmData `bson:"farmData" json:"farmData"`

	// Vet fields. licenseNumber is omitempty so the sparse unique index
	// never sees an empty string from farmer records.
	Qualification  string    `bson:"qualification,omitempty" json:"qualification,omitempty"`
	Specialization string    `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Experience     string    `bson:"experience,omitempty" json:"experience,omitempty"`
	LicenseNumber  string    `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`
	Organization   string    `bson:"organization,omitempty" json:"organization,omitempty"`
	IsApproved     bool      `bson:"isApproved" json:"isApproved"`
	Documents      Documents `bson:"documents,omitempty" json:"documents,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"-"`
}

// Sanitized returns a copy safe to hand to callers: the password hash is
// cleared in addition to being json-skipped.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
