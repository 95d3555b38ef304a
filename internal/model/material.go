package model

import "strings"

// MaterialLine is one line of a bill of materials. Quantity and UnitPrice
// are kept as the raw strings the form submitted; parsing and clamping
// happen in the costing package so a malformed value degrades to 0 instead
// of failing the whole record.
type MaterialLine struct {
	Description string `json:"descripcion"`
	Quantity    string `json:"cantidad"`
	UnitPrice   string `json:"precio"`
}

// FilterMaterials drops lines with an empty description. Lines with a
// description but empty quantity/price are kept and cost 0.
func FilterMaterials(lines []MaterialLine) []MaterialLine {
	filtered := make([]MaterialLine, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.Description) == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered
}
