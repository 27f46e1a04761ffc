package options

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// GameName is the key under which a player file holds this world's options.
const GameName = "Brotato"

// PlayerFile is a single player's settings file.
//
//	name: Player1
//	game: Brotato
//	Brotato:
//	  num_victories: 10
//	  starting_characters: random_characters
type PlayerFile struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Game        string  `yaml:"game" json:"game"`
	Options     Options `yaml:"Brotato" json:"options"`
}

// Load reads the player file at path and returns it validated.
func Load(path string) (*PlayerFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("options: open %q: %w", path, err)
	}
	defer f.Close()

	pf, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("options: parse %q: %w", path, err)
	}
	return pf, nil
}

// LoadFromReader decodes a player file from r. Options that are not present
// keep their defaults; unknown keys are rejected.
func LoadFromReader(r io.Reader) (*PlayerFile, error) {
	pf := &PlayerFile{Options: Defaults()}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(pf); err != nil {
		return nil, fmt.Errorf("options: decode yaml: %w", err)
	}
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return pf, nil
}

// DecodeJSON decodes an options object sent over the API. Options that are
// not present keep their defaults; unknown keys are rejected, as in player
// files.
func DecodeJSON(data []byte) (Options, error) {
	o := Defaults()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		return Options{}, fmt.Errorf("options: decode json: %w", err)
	}
	if dec.More() {
		return Options{}, errors.New("options: decode json: trailing data after options object")
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate checks the file header and every option bound.
func (pf *PlayerFile) Validate() error {
	var errs []error
	if pf.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if pf.Game != GameName {
		errs = append(errs, fmt.Errorf("game %q is not %q", pf.Game, GameName))
	}
	if err := pf.Options.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Marshal renders the player file back to YAML.
func (pf *PlayerFile) Marshal() ([]byte, error) {
	return yaml.Marshal(pf)
}
