package validators

import "go.mongodb.org/mongo-driver/bson"

var SessionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"start_time",
			"end_time",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"scheduled", "open", "ended", "closed", "cancelled"},
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  10000,
			},

			"capacity_enforced": bson.M{
				"bsonType": "bool",
			},

			"requires_registration": bson.M{
				"bsonType": "bool",
			},

			"check_ins_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"auto_end": bson.M{
				"bsonType": "bool",
			},

			"auto_open_minutes_before": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  1440,
			},

			"auto_end_grace_minutes": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  1440,
			},

			"late_threshold_minutes": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  1440,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
