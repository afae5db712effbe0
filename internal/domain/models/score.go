package models

// ScoreRecord is one scored (word, artifact) pair. Normalized is the raw
// similarity rescaled to [0,100] using the run's observed min/max; it is
// filled in only after every record of the run exists.
type ScoreRecord struct {
	Word       string  `json:"word" msgpack:"word"`
	ImagePath  string  `json:"image_path" msgpack:"image_path"`
	Raw        float64 `json:"raw" msgpack:"raw"`
	Normalized float64 `json:"normalized" msgpack:"normalized"`
}
