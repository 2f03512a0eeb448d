package sleep

import "strings"

// Stage is a canonical sleep stage label as the staging export emits it.
type Stage string

const (
	StageWake  Stage = "WAKE"
	StageREM   Stage = "REM"
	StageLight Stage = "Light"
	StageDeep  Stage = "Deep"
)

// stageTableVersion tracks revisions of the label mapping below. Bump it when
// Fitbit renames levels so the catalog records which table produced a run.
const stageTableVersion = 2

// stageTable maps every Fitbit level label observed so far onto the canonical
// stage set. Fitbit has renamed these across export generations (classic
// sessions use asleep/restless/awake, stages sessions use
// wake/light/deep/rem, short wakes surface as "short"); keeping the aliases
// here means a future rename is a data update, not pipeline surgery.
var stageTable = map[string]Stage{
	"wake":     StageWake,
	"awake":    StageWake,
	"restless": StageWake,
	"short":    StageWake,
	"rem":      StageREM,
	"light":    StageLight,
	"asleep":   StageLight,
	"deep":     StageDeep,
}

// TableVersion reports the current stage mapping revision.
func TableVersion() int {
	return stageTableVersion
}

// Normalize maps a Fitbit level label onto its canonical stage. The second
// return is false for labels the table does not know.
func Normalize(level string) (Stage, bool) {
	stage, ok := stageTable[strings.ToLower(strings.TrimSpace(level))]
	return stage, ok
}
