package validators

import "go.mongodb.org/mongo-driver/bson"

var VendorProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user", "companyName", "isApproved", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"user": objectIDHex,
			"companyName": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},
			"services": bson.M{
				"bsonType": "array",
				"maxItems": 8,
				"items": bson.M{
					"bsonType": "string",
					"enum":     []string{"Venue", "Catering", "Decor", "Photography", "Music", "Entertainment", "Makeup", "Other"},
				},
			},
			"priceRange": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"min": bson.M{"bsonType": "number", "minimum": 0},
					"max": bson.M{"bsonType": "number", "minimum": 0},
				},
			},
			"rating": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"average": bson.M{"bsonType": "number", "minimum": 0, "maximum": 5},
					"count":   bson.M{"bsonType": "number", "minimum": 0},
				},
			},
			"bookingPolicy": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"advancePercentage": bson.M{"bsonType": "number", "minimum": 0, "maximum": 100},
				},
			},
			"isApproved": bson.M{
				"bsonType": "bool",
			},
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
