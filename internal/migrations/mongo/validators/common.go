package validators

import "go.mongodb.org/mongo-driver/bson"

// References to other documents are stored as 24 character hex strings.
var objectIDHex = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}
