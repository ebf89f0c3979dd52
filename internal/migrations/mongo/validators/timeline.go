package validators

import "go.mongodb.org/mongo-driver/bson"

var TimelineItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user", "title", "time", "category", "status", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"user": objectIDHex,
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]\d|2[0-3]):[0-5]\d$`,
			},
			"category": bson.M{
				"bsonType": "string",
				"enum":     []string{"Ceremony", "Catering", "Photography", "Music", "General", "Logistics"},
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "completed"},
			},
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
