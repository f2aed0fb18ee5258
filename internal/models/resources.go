package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert is a disease or biosecurity notice attached to a farm.
type Alert struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Farm     primitive.ObjectID `bson:"farm,omitempty" json:"farm,omitempty"`
	Message  string             `bson:"message" json:"message" validate:"required"`
	Severity string             `bson:"severity" json:"severity" validate:"required,oneof=low medium high"`
	Date     time.Time          `bson:"date" json:"date"`
}

// Sensor is a named reading recorded against a farm.
type Sensor struct {
	Name  string `bson:"name" json:"name"`
	Value string `bson:"value" json:"value"`
}

// Farm is a registered farm site.
type Farm struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Location  string             `bson:"location" json:"location"`
	Type      string             `bson:"type" json:"type" validate:"required,oneof=poultry pig"`
	Size      float64            `bson:"size" json:"size" validate:"gte=0"`
	Sensors   []Sensor           `bson:"sensors,omitempty" json:"sensors,omitempty"`
	Owner     primitive.ObjectID `bson:"owner,omitempty" json:"owner,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Compliance is one checklist item recorded for a farm.
type Compliance struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Farm   primitive.ObjectID `bson:"farm,omitempty" json:"farm,omitempty"`
	Check  string             `bson:"check" json:"check" validate:"required"`
	Status string             `bson:"status" json:"status"`
	Date   time.Time          `bson:"date" json:"date"`
}

// Feedback is a free-text message submitted by a user.
type Feedback struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User    primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	Message string             `bson:"message" json:"message" validate:"required"`
	Date    time.Time          `bson:"date" json:"date"`
}
