package mechanics

import (
	"workshop-backend/internal/bsonx"
	"workshop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ListLimit = 50

	placeholderName = "Unknown Mechanic"
)

// View is the directory entry returned to clients.
type View struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Available bool   `json:"available"`
	CreatedAt string `json:"createdAt"`
}

// FromDocument rebuilds a directory entry, substituting defaults for absent fields.
func FromDocument(doc bson.M) View {
	v := View{Name: placeholderName, Available: true}
	v.ID, _ = bsonx.ID(doc)
	if name, ok := bsonx.String(doc, "name"); ok && name != "" {
		v.Name = name
	}
	v.Email, _ = bsonx.String(doc, "email")
	v.Phone, _ = bsonx.String(doc, "phone")
	v.Specialty, _ = bsonx.String(doc, "specialty")
	if available, ok := bsonx.Bool(doc, "available"); ok {
		v.Available = available
	}
	v.CreatedAt, _ = bsonx.Time(doc, "createdAt")
	return v
}

// MechanicFromDocument builds the stored mechanic used for booking. Fields
// of the wrong type fall back like FromDocument; only a non-ObjectID _id
// makes the document unusable.
func MechanicFromDocument(doc bson.M) (models.Mechanic, bool) {
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok {
		return models.Mechanic{}, false
	}
	v := FromDocument(doc)
	return models.Mechanic{
		ID:        id,
		Name:      v.Name,
		Email:     v.Email,
		Phone:     v.Phone,
		Specialty: v.Specialty,
		Available: v.Available,
	}, true
}
