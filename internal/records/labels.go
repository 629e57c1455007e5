package records

import "fmt"

// labelTable is the closed code -> action word mapping used by label sheets.
var labelTable = [...]string{
	0: "walk",
	1: "fall",
	2: "fallen",
	3: "sit_down",
	4: "sitting",
	5: "lie_down",
	6: "lying",
	7: "stand_up",
	8: "standing",
	9: "other",
}

// Label pairs a code with its text.
type Label struct {
	Code int
	Text string
}

// LabelText maps a code to its action word.
func LabelText(code int) (string, error) {
	if code < 0 || code >= len(labelTable) {
		return "", fmt.Errorf("unmapped label code %d", code)
	}
	return labelTable[code], nil
}

// Labels lists the full table in code order.
func Labels() []Label {
	out := make([]Label, len(labelTable))
	for i, text := range labelTable {
		out[i] = Label{Code: i, Text: text}
	}
	return out
}
