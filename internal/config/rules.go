package config

import (
	"embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

//go:embed defaults/rules.yaml defaults/resources.json
var defaultsFS embed.FS

type ruleSetFile struct {
	Sections []struct {
		Name   string  `yaml:"name"`
		Budget float64 `yaml:"budget"`
	} `yaml:"sections"`
	Checks     []compliance.Check    `yaml:"checks"`
	Thresholds compliance.Thresholds `yaml:"thresholds"`
}

// LoadRuleSet reads the rule set from path, or the embedded default when
// path is empty.
func LoadRuleSet(path string) (*compliance.RuleSet, error) {
	data, err := readOrDefault(path, "defaults/rules.yaml")
	if err != nil {
		return nil, err
	}

	rules, err := ParseRuleSet(data)
	if err != nil {
		return nil, err
	}

	source := path
	if source == "" {
		source = "embedded defaults"
	}
	log.Printf("✅ Rule set loaded from %s (%d checks, %d sections)\n", source, len(rules.Checks), len(rules.Sections))
	return rules, nil
}

// ParseRuleSet decodes and validates a YAML rule set.
func ParseRuleSet(data []byte) (*compliance.RuleSet, error) {
	var file ruleSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule set: %w", err)
	}

	sections := make(compliance.SectionWeights, len(file.Sections))
	for _, s := range file.Sections {
		if s.Name == "" {
			return nil, fmt.Errorf("section without a name")
		}
		if s.Budget < 0 {
			return nil, fmt.Errorf("section %q has negative budget %v", s.Name, s.Budget)
		}
		if _, dup := sections[s.Name]; dup {
			return nil, fmt.Errorf("section %q declared twice", s.Name)
		}
		sections[s.Name] = s.Budget
	}

	seen := make(map[string]bool, len(file.Checks))
	for _, c := range file.Checks {
		if c.Name == "" {
			return nil, fmt.Errorf("check without a name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("check %q declared twice", c.Name)
		}
		seen[c.Name] = true
		if c.Section != "" {
			if _, ok := sections[c.Section]; !ok {
				log.Printf("⚠️  Check %q references unknown section %q; it will carry no weight\n", c.Name, c.Section)
			}
		}
	}

	if file.Thresholds.DefaultMinimumCapital < 0 {
		return nil, fmt.Errorf("default minimum capital cannot be negative")
	}
	for category, minimum := range file.Thresholds.MinimumCapital {
		if minimum < 0 {
			return nil, fmt.Errorf("minimum capital for %q cannot be negative", category)
		}
	}

	return &compliance.RuleSet{
		Checks:     compliance.CheckTable(file.Checks),
		Sections:   sections,
		Thresholds: file.Thresholds,
	}, nil
}

func readOrDefault(path, embedded string) ([]byte, error) {
	if path == "" {
		data, err := defaultsFS.ReadFile(embedded)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded %s: %w", embedded, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
