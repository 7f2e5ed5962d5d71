package blocks

// builtinKinds lists every imperative block kind shipped with the core
// (spec.md §8's worked scenarios exercise adc/dac, gain, pot, delay,
// low_pass and the feedback path between them). Declarative ATL-template
// kinds are registered separately by whatever loads the template set; they
// satisfy the same Kind interface and slot into the same Registry.
func builtinKinds() []Kind {
	return []Kind{
		&adcIn{channel: "ADCL"},
		&adcIn{channel: "ADCR"},
		&dacOut{channel: "DACL"},
		&dacOut{channel: "DACR"},
		&gain{},
		&pot{},
		&delay{},
		&lowPass{},
		&lfo{},
	}
}
