package validators

import "go.mongodb.org/mongo-driver/bson"

var BusValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"bus_number",
			"total_seats",
			"seats_per_row",
			"price",
			"departure",
			"arrival",
			"seat_set",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"bus_number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 20,
			},

			"total_seats": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  200,
			},

			"seats_per_row": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  10,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"departure": bson.M{
				"bsonType": "object",
				"required": []string{"location", "time"},
				"properties": bson.M{
					"location": bson.M{"bsonType": "string"},
					"time":     bson.M{"bsonType": "date"},
				},
			},

			"arrival": bson.M{
				"bsonType": "object",
				"required": []string{"location", "time"},
				"properties": bson.M{
					"location": bson.M{"bsonType": "string"},
					"time":     bson.M{"bsonType": "date"},
				},
			},

			"amenities": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
					"enum":     []string{"waterbottle", "charger", "wifi"},
				},
			},

			"bus_type": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
					"enum":     []string{"ac", "non-ac", "sleeper"},
				},
			},

			"seat_set": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"seat_number"},
					"properties": bson.M{
						"seat_number": bson.M{
							"bsonType":  "string",
							"minLength": 2,
						},
						"booked": bson.M{
							"bsonType": []string{"object", "null"},
							"properties": bson.M{
								"owner":        bson.M{"bsonType": "string"},
								"booking_date": bson.M{"bsonType": "date"},
								"journey_date": bson.M{"bsonType": "date"},
							},
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
