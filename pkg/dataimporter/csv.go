package dataimporter

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AvigateGroup/avigate-app-sub000/pkg/database"
	"github.com/AvigateGroup/avigate-app-sub000/pkg/transit"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// csvLocation is one row of a curated locations file
type csvLocation struct {
	Identifier string  `csv:"identifier"`
	Name       string  `csv:"name"`
	City       string  `csv:"city"`
	State      string  `csv:"state"`
	Latitude   float64 `csv:"latitude"`
	Longitude  float64 `csv:"longitude"`
	Landmarks  string  `csv:"landmarks"`
}

// csvSegment is one row of a curated segments file. Transport modes and
// landmark names are pipe separated within their column.
type csvSegment struct {
	Identifier     string  `csv:"identifier"`
	Name           string  `csv:"name"`
	StartLocation  string  `csv:"start_location"`
	EndLocation    string  `csv:"end_location"`
	DistanceMeters float64 `csv:"distance_meters"`
	DurationMins   int     `csv:"duration_mins"`
	FareMin        float64 `csv:"fare_min"`
	FareMax        float64 `csv:"fare_max"`
	FareCurrency   string  `csv:"fare_currency"`
	TransportModes string  `csv:"transport_modes"`
	Bidirectional  bool    `csv:"bidirectional"`
	Instructions   string  `csv:"instructions"`
}

func init() {
	// Curated files occasionally have rows with trailing columns missing
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})
}

func ImportLocationsFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var records []csvLocation
	if err := gocsv.Unmarshal(file, &records); err != nil {
		return err
	}

	locationsCollection := database.GetCollection("locations")
	now := time.Now()

	for _, record := range records {
		location := transit.Location{
			PrimaryIdentifier: record.Identifier,

			Name:  record.Name,
			City:  record.City,
			State: record.State,

			Geo: transit.NewGeography(record.Latitude, record.Longitude),

			Landmarks: splitColumn(record.Landmarks),

			ModificationDateTime: now,
		}

		opts := options.Update().SetUpsert(true)
		_, err := locationsCollection.UpdateOne(context.Background(),
			bson.M{"primaryidentifier": location.PrimaryIdentifier},
			bson.M{"$set": location}, opts)
		if err != nil {
			log.Error().Err(err).Str("location", location.PrimaryIdentifier).Msg("Failed to upsert location")
		}
	}

	log.Info().Int("count", len(records)).Str("file", path).Msg("Imported locations")

	return nil
}

func ImportSegmentsFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var records []csvSegment
	if err := gocsv.Unmarshal(file, &records); err != nil {
		return err
	}

	segmentsCollection := database.GetCollection("segments")
	now := time.Now()

	for _, record := range records {
		segment := transit.Segment{
			PrimaryIdentifier: record.Identifier,

			Name: record.Name,

			StartLocationRef: record.StartLocation,
			EndLocationRef:   record.EndLocation,

			DistanceMeters:  record.DistanceMeters,
			DurationSeconds: record.DurationMins * 60,

			Fare: transit.FareRange{
				Minimum:  record.FareMin,
				Maximum:  record.FareMax,
				Currency: record.FareCurrency,
			},

			TransportModes: parseTransportModes(record.TransportModes),

			Bidirectional: record.Bidirectional,

			Instructions: record.Instructions,

			ModificationDateTime: now,
		}

		opts := options.Update().SetUpsert(true)
		_, err := segmentsCollection.UpdateOne(context.Background(),
			bson.M{"primaryidentifier": segment.PrimaryIdentifier},
			bson.M{"$set": segment}, opts)
		if err != nil {
			log.Error().Err(err).Str("segment", segment.PrimaryIdentifier).Msg("Failed to upsert segment")
		}
	}

	log.Info().Int("count", len(records)).Str("file", path).Msg("Imported segments")

	return nil
}

func splitColumn(value string) []string {
	if value == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(value, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	return parts
}

func parseTransportModes(value string) []transit.TransportMode {
	var modes []transit.TransportMode
	for _, part := range splitColumn(value) {
		modes = append(modes, transit.TransportMode(strings.ToUpper(part)))
	}

	return modes
}
