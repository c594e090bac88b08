package main

import (
	"gopkg.in/yaml.v3"

	tllerrors "github.com/Diego2la/tll/errors"
)

// GraphConfig is the on-disk shape of a tllctl run: an ordered list of
// channel URLs to construct and open, in the same curl.Parse syntax
// accepted by registry.Context.Channel.
type GraphConfig struct {
	Channels []ChannelSpec `yaml:"channels"`
}

type ChannelSpec struct {
	URL string `yaml:"url"`
}

func loadGraph(raw []byte) (*GraphConfig, error) {
	var g GraphConfig
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, tllerrors.Wrap(tllerrors.InvalidArgument, "tllctl", "loadGraph", err, "parsing channel graph")
	}
	if len(g.Channels) == 0 {
		return nil, tllerrors.New(tllerrors.InvalidArgument, "tllctl", "loadGraph", "channel graph defines no channels")
	}
	return &g, nil
}
