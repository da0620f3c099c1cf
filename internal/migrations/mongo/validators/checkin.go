package validators

import "go.mongodb.org/mongo-driver/bson"

var CheckInValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"participant_id",
			"session_id",
			"check_in_time",
			"method",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"participant_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"session_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"check_in_time": bson.M{
				"bsonType": "date",
			},

			"method": bson.M{
				"enum": []string{"qr_scan", "manual"},
			},

			"is_late": bson.M{
				"bsonType": "bool",
			},

			"recorded_by": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
