package pipeline

import "fmt"

// Stage is a step of a run. Stages are reached strictly in order.
type Stage int

const (
	StageInit Stage = iota
	StageExtracted
	StageTransformed
	StageCSVWritten
	StageDBConnected
	StageDBLoaded
	StageQueried
	StageClosed
)

var stageNames = [...]string{
	StageInit:        "init",
	StageExtracted:   "extracted",
	StageTransformed: "transformed",
	StageCSVWritten:  "csv-written",
	StageDBConnected: "db-connected",
	StageDBLoaded:    "db-loaded",
	StageQueried:     "queried",
	StageClosed:      "closed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Progress messages written as each stage completes.
const (
	msgStart       = "Preliminaries complete. Initiating ETL process"
	msgExtracted   = "Data extraction complete. Initiating Transformation process"
	msgTransformed = "Data transformation complete. Initiating Loading process"
	msgCSVWritten  = "Data saved to CSV file"
	msgConnected   = "SQL Connection initiated"
	msgLoaded      = "Data loaded to Database as a table, Executing queries"
	msgQueried     = "Process Complete"
	msgClosed      = "Server Connection closed"
)

// StageError reports where a run failed: the stage it was trying to reach,
// or StageInit when the run could not start.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
