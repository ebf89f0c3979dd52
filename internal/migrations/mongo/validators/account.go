package validators

import "go.mongodb.org/mongo-driver/bson"

var AccountValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "email", "password", "role", "vendorStatus", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"email": bson.M{
				"bsonType": "string",
				"pattern":  `^[^A-Z\s]+@[^A-Z\s]+$`,
			},
			"password": bson.M{
				"bsonType":  "string",
				"minLength": 20,
			},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"customer", "vendor", "admin", "super-admin"},
			},
			"vendorStatus": bson.M{
				"bsonType": "string",
				"enum":     []string{"not-vendor", "pending", "approved", "rejected"},
			},
			"vendorProfile": objectIDHex,
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
