package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer",
			"vendor",
			"serviceType",
			"date",
			"status",
			"paymentStatus",
			"price",
			"createdAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"customer": objectIDHex,
			"vendor":   objectIDHex,
			"event":    objectIDHex,

			"serviceType": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"accepted",
					"rejected",
					"completed",
					"cancelled",
				},
			},

			"paymentStatus": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "paid", "failed"},
			},

			"transactionId": bson.M{
				"bsonType": "string",
				"pattern":  `^TXN_\d+_[A-Z0-9]+$`,
			},

			"paidAt": bson.M{
				"bsonType": "date",
			},

			"price": bson.M{
				"bsonType": "number",
				"minimum":  0,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
