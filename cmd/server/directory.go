package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"punchcard/internal/attendance"
	"punchcard/internal/beacon"
	"punchcard/internal/geo"
)

// directoryFile is the on-disk site layout: geofences, beacons, and the
// user-to-geofence assignments.
type directoryFile struct {
	Geofences   []geo.Geofence      `json:"geofences"`
	Beacons     []beacon.Beacon     `json:"beacons"`
	Assignments map[string][]string `json:"assignments"`
}

// loadDirectory reads the site layout from the given JSON file. An empty
// path yields an empty directory, which rejects every location check.
func loadDirectory(path string, log *slog.Logger) (*attendance.StaticDirectory, error) {
	if path == "" {
		log.Warn("no directory file configured, all location checks will fail")
		return attendance.NewStaticDirectory(nil, nil, nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}

	var file directoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}

	log.Info("loaded site directory",
		"geofences", len(file.Geofences),
		"beacons", len(file.Beacons),
		"assignments", len(file.Assignments),
	)
	return attendance.NewStaticDirectory(file.Geofences, file.Beacons, file.Assignments), nil
}
