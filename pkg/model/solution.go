package model

// Solution is the structured answer produced by the generation flow.
// StepByStepGuide and Explanation are self-contained HTML fragments,
// Formula is plain text and must never be interpreted as markup.
// Fields may be empty strings; presence and type are what the flow enforces.
type Solution struct {
	StepByStepGuide string `json:"stepByStepGuide"`
	Formula         string `json:"formula"`
	Explanation     string `json:"explanation"`
}
