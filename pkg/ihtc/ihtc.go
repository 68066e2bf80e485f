// Package ihtc reads nurse-to-room assignment instances in the IHTC-2024 NRA folder layout:
//
//	<root>/<name>/instance_info.json
//	<root>/<name>/nurse_shifts.csv
//	<root>/<name>/occupied_room_shifts.csv
package ihtc

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

const (
	InfoFile   = "instance_info.json"
	NursesFile = "nurse_shifts.csv"
	RoomsFile  = "occupied_room_shifts.csv"
)

var nurseFields = []string{"nurse_id", "skill_level", "global_shift", "max_load"}

var roomFields = []string{"room_id", "global_shift", "max_skill_required", "total_room_workload"}

// Dataset is a parsed instance folder
type Dataset struct {
	// Name is the folder name, e.g. "i01"
	Name string

	Input instance.Input

	// NurseRows and RoomRows count the data rows read from each file
	NurseRows int
	RoomRows  int
}

type instanceInfo struct {
	Weights struct {
		Skill    *float64 `json:"S2_room_nurse_skill"`
		Workload *float64 `json:"S4_nurse_excessive_workload"`
	} `json:"weights"`
}

// Load reads the instance folder dir
func Load(dir string) (*Dataset, error) {
	weights, err := loadWeights(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, err
	}

	nursesFile, err := os.Open(filepath.Join(dir, NursesFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open nurses file: %w", err)
	}
	defer nursesFile.Close()

	roomsFile, err := os.Open(filepath.Join(dir, RoomsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open rooms file: %w", err)
	}
	defer roomsFile.Close()

	dataset, err := Parse(weights, nursesFile, roomsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse instance %s: %w", filepath.Base(dir), err)
	}
	dataset.Name = filepath.Base(dir)

	return dataset, nil
}

// Parse builds the instance input from already opened files.
//
// Availability of a shift is every nurse listed for it in the nurses file, in file
// order, restricted to shifts that have occupied rooms. A nurse's skill level is
// taken from its first row. Repeated (room, shift) rows become separate tasks that
// share the values of the last such row.
func Parse(weights instance.Weights, nurses, rooms io.Reader) (*Dataset, error) {
	nurseRows, err := readTable(nurses, nurseFields)
	if err != nil {
		return nil, fmt.Errorf("failed to read nurses: %w", err)
	}
	roomRows, err := readTable(rooms, roomFields)
	if err != nil {
		return nil, fmt.Errorf("failed to read rooms: %w", err)
	}

	in := instance.Input{
		Skill:         make(map[string]int),
		Capacity:      make(map[instance.NurseShift]float64),
		Availability:  make(map[string][]string),
		RequiredSkill: make(map[instance.Task]int),
		Workload:      make(map[instance.Task]float64),
		Weights:       weights,
	}

	// Rooms first, to know which shifts need nurses
	occupied := make(map[string]bool)
	for _, row := range roomRows {
		task := instance.Task{Room: row.get("room_id"), Shift: row.get("global_shift")}
		if task.Room == "" || task.Shift == "" {
			return nil, fmt.Errorf("line %d: room_id and global_shift are required", row.line)
		}

		required, err := row.intField("max_skill_required")
		if err != nil {
			return nil, err
		}
		workload, err := row.floatField("total_room_workload")
		if err != nil {
			return nil, err
		}

		in.Tasks = append(in.Tasks, task)
		in.RequiredSkill[task] = required
		in.Workload[task] = workload
		occupied[task.Shift] = true
	}

	for _, row := range nurseRows {
		nurse := row.get("nurse_id")
		shift := row.get("global_shift")
		if nurse == "" || shift == "" {
			return nil, fmt.Errorf("line %d: nurse_id and global_shift are required", row.line)
		}

		skill, err := row.intField("skill_level")
		if err != nil {
			return nil, err
		}
		maxLoad, err := row.floatField("max_load")
		if err != nil {
			return nil, err
		}

		if _, ok := in.Skill[nurse]; !ok {
			in.Skill[nurse] = skill
		}
		in.Capacity[instance.NurseShift{Nurse: nurse, Shift: shift}] = maxLoad

		if occupied[shift] && !slices.Contains(in.Availability[shift], nurse) {
			in.Availability[shift] = append(in.Availability[shift], nurse)
		}
	}

	return &Dataset{
		Input:     in,
		NurseRows: len(nurseRows),
		RoomRows:  len(roomRows),
	}, nil
}

func loadWeights(path string) (instance.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return instance.Weights{}, fmt.Errorf("failed to read instance info: %w", err)
	}

	var info instanceInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return instance.Weights{}, fmt.Errorf("failed to parse instance info: %w", err)
	}

	if info.Weights.Skill == nil {
		return instance.Weights{}, fmt.Errorf("instance info is missing weights.S2_room_nurse_skill")
	}
	if info.Weights.Workload == nil {
		return instance.Weights{}, fmt.Errorf("instance info is missing weights.S4_nurse_excessive_workload")
	}

	return instance.Weights{Skill: *info.Weights.Skill, Workload: *info.Weights.Workload}, nil
}

// row is one data line with its header-resolved field positions
type row struct {
	line   int
	cells  []string
	fields map[string]int
}

func (r row) get(field string) string {
	index, ok := r.fields[field]
	if !ok || index >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[index])
}

func (r row) intField(field string) (int, error) {
	raw := r.get(field)
	value, err := strconv.Atoi(raw)
	if err != nil {
		// Exports sometimes write integral columns as floats
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("line %d: invalid %s %q", r.line, field, raw)
		}
		value = int(f)
	}
	return value, nil
}

func (r row) floatField(field string) (float64, error) {
	raw := r.get(field)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q", r.line, field, raw)
	}
	return value, nil
}

// readTable reads a CSV with a header row, resolving the required fields by name.
// Extra columns are ignored and blank lines skipped.
func readTable(r io.Reader, required []string) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int, len(required))
	for _, field := range required {
		index := slices.IndexFunc(header, func(cell string) bool {
			return strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")) == field
		})
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	var rows []row
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(cells) == 1 && strings.TrimSpace(cells[0]) == "" {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row{line: line, cells: cells, fields: fieldIndexes})
	}

	return rows, nil
}

// ListInstances returns the names of root's subfolders that contain an instance info
// file, sorted by name
func ListInstances(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read instances directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), InfoFile)); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}

	slices.Sort(names)
	return names, nil
}
