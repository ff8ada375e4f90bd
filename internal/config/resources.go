package config

import (
	"encoding/json"
	"fmt"
	"log"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

const (
	ResourceTypeProgram = "QDB Program"
	ResourceTypeExpert  = "Compliance Expert"
)

type resourceFile struct {
	Programs []json.RawMessage `json:"qdb_programs"`
	Experts  []json.RawMessage `json:"compliance_experts"`
}

type programEntry struct {
	Name        string   `json:"program_name"`
	FocusAreas  []string `json:"focus_areas"`
	Eligibility string   `json:"eligibility"`
}

type expertEntry struct {
	Name           string   `json:"name"`
	Specialization []string `json:"specialization"`
	Contact        string   `json:"contact"`
}

// LoadDirectory reads the resource directory from path, or the embedded
// default when path is empty.
func LoadDirectory(path string) (compliance.Directory, error) {
	data, err := readOrDefault(path, "defaults/resources.json")
	if err != nil {
		return nil, err
	}

	dir, err := ParseDirectory(data)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Resource directory loaded (%d entries)\n", len(dir))
	return dir, nil
}

// ParseDirectory decodes the resource directory. Entries that do not have
// the expected shape are skipped; only an unreadable document is an error.
func ParseDirectory(data []byte) (compliance.Directory, error) {
	var file resourceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse resource directory: %w", err)
	}

	dir := make(compliance.Directory, 0, len(file.Programs)+len(file.Experts))
	skipped := 0

	for _, raw := range file.Programs {
		var p programEntry
		if err := json.Unmarshal(raw, &p); err != nil || p.Name == "" {
			skipped++
			continue
		}
		dir = append(dir, compliance.Resource{
			Type:    ResourceTypeProgram,
			Name:    p.Name,
			Contact: p.Eligibility,
			Tags:    p.FocusAreas,
		})
	}

	for _, raw := range file.Experts {
		var e expertEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.Name == "" {
			skipped++
			continue
		}
		dir = append(dir, compliance.Resource{
			Type:    ResourceTypeExpert,
			Name:    e.Name,
			Contact: e.Contact,
			Tags:    e.Specialization,
		})
	}

	if skipped > 0 {
		log.Printf("⚠️  Skipped %d malformed resource entries\n", skipped)
	}
	return dir, nil
}
