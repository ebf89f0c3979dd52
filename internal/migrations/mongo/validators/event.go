package validators

import "go.mongodb.org/mongo-driver/bson"

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user", "name", "type", "date", "status", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"user": objectIDHex,
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},
			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"Wedding", "Birthday", "Corporate", "Engagement", "Other"},
			},
			"date": bson.M{
				"bsonType": "date",
			},
			"guests": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},
			"budget": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"total": bson.M{"bsonType": "number", "minimum": 0},
					"spent": bson.M{"bsonType": "number", "minimum": 0},
				},
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"planning", "active", "completed", "cancelled"},
			},
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
