package compliance

// Resource is an entry of the remediation directory: a funding program or
// a compliance expert.
type Resource struct {
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Contact string   `json:"contact"`
	Tags    []string `json:"-"`
}

// HasTag reports whether the resource is tagged with topic.
func (r Resource) HasTag(topic string) bool {
	for _, t := range r.Tags {
		if t == topic {
			return true
		}
	}
	return false
}

// Directory is the static resource directory.
type Directory []Resource

// Recommendation joins one gap to the resources that address it.
type Recommendation struct {
	Gap       string     `json:"gap"`
	Resources []Resource `json:"resources"`
}

// Recommend maps every failed check to the directory entries tagged with the
// check's remediation topic. Gaps without a topic, or unknown to the rule
// table, are kept with an empty resource list.
func Recommend(failed []string, table CheckTable, dir Directory) []Recommendation {
	recs := make([]Recommendation, 0, len(failed))
	for _, gap := range failed {
		rec := Recommendation{Gap: gap, Resources: []Resource{}}
		if check, ok := table.Lookup(gap); ok && check.ResourceTopic != "" {
			for _, r := range dir {
				if r.HasTag(check.ResourceTopic) {
					rec.Resources = append(rec.Resources, r)
				}
			}
		}
		recs = append(recs, rec)
	}
	return recs
}
