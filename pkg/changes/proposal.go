package changes

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

// DecodeProposal converts the loose payload a completion collaborator
// produces into a typed ChangeSet. Numbers arriving as strings or
// integers are tolerated (weakly typed input); unknown keys are
// ignored, matching the permissive persistence posture.
func DecodeProposal(p ports.Proposal) (ChangeSet, error) {
	var cs ChangeSet

	if p.Flows != nil {
		links := make([]domain.Link, 0, len(p.Flows))
		for i, raw := range p.Flows {
			var pl linkPayload
			if err := decodeLoose(raw, &pl); err != nil {
				return ChangeSet{}, fmt.Errorf("flows[%d]: %w", i, err)
			}
			links = append(links, pl.toLink())
		}
		cs.Links = &links
	}

	if len(p.Nodes) > 0 {
		cs.Nodes = make(map[string]NodeChange, len(p.Nodes))
		for id, raw := range p.Nodes {
			var ch NodeChange
			if err := decodeLoose(raw, &ch); err != nil {
				return ChangeSet{}, fmt.Errorf("nodes[%s]: %w", id, err)
			}
			cs.Nodes[domain.DeriveID(id)] = ch
		}
	}

	if len(p.Settings) > 0 {
		var ch SettingsChange
		if err := decodeLoose(p.Settings, &ch); err != nil {
			return ChangeSet{}, fmt.Errorf("settings: %w", err)
		}
		cs.Settings = &ch
	}

	return cs, nil
}

// linkPayload mirrors domain.Link for loose decoding. Proposals may
// name nodes by display name instead of ID; toLink normalizes.
type linkPayload struct {
	Source          string  `mapstructure:"source"`
	Target          string  `mapstructure:"target"`
	Value           float64 `mapstructure:"value"`
	PreviousValue   float64 `mapstructure:"previous_value"`
	ComparisonLabel string  `mapstructure:"comparison_label"`
	Color           string  `mapstructure:"color"`
	Opacity         float64 `mapstructure:"opacity"`
}

func (p linkPayload) toLink() domain.Link {
	return domain.Link{
		Source:          domain.DeriveID(p.Source),
		Target:          domain.DeriveID(p.Target),
		Value:           p.Value,
		PreviousValue:   p.PreviousValue,
		ComparisonLabel: p.ComparisonLabel,
		Color:           p.Color,
		Opacity:         p.Opacity,
	}
}

func decodeLoose(input any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
