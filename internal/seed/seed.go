// Package seed bundles the default weekly timetable and availability rules.
package seed

import _ "embed"

// Timetable is the bundled weekly timetable in day-block format.
//
//go:embed timetable.txt
var Timetable []byte

// Rules is the bundled availability rules document.
//
//go:embed rules.yaml
var Rules []byte
