package model

// Condition names the input modality of a discovery request.
type Condition string

const (
	ConditionVoice   Condition = "voice"
	ConditionText    Condition = "text"
	ConditionSliders Condition = "sliders"
)

// AudioFeatures carries the four slider values of a slider-based request.
type AudioFeatures struct {
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Danceability float64 `json:"danceability"`
	Tempo        float64 `json:"tempo"`
}

// Validate checks the declared slider ranges. It must pass before any
// network call is issued on behalf of the request.
func (f AudioFeatures) Validate() error {
	if f.Energy < 0 || f.Energy > 1 {
		return &ValidationError{Field: "energy", Reason: "must be between 0 and 1"}
	}
	if f.Valence < 0 || f.Valence > 1 {
		return &ValidationError{Field: "valence", Reason: "must be between 0 and 1"}
	}
	if f.Danceability < 0 || f.Danceability > 1 {
		return &ValidationError{Field: "danceability", Reason: "must be between 0 and 1"}
	}
	if f.Tempo < 60 || f.Tempo > 200 {
		return &ValidationError{Field: "tempo", Reason: "must be between 60 and 200 BPM"}
	}
	return nil
}
